package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFile is where every command writes its logs; the TUI owns the terminal.
const LogFile = "mr-games.log"

var (
	Log       *zap.SugaredLogger
	ZapLogger *zap.Logger // Expose the raw zap Logger
)

func init() {
	// Usable before InitLogger runs, e.g. from package tests.
	ZapLogger = zap.NewNop()
	Log = ZapLogger.Sugar()
}

func InitLogger() {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		NameKey:          "N",
		CallerKey:        "",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "M",
		StacktraceKey:    "S",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: "  ",
	}

	logFile, err := os.OpenFile(LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("can't open log file: %v", err)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)

	ZapLogger = zap.New(core)
	Log = ZapLogger.Sugar()
	Log.Info("Logger initialized, logging to " + LogFile)
}

// Named returns a child logger tagged with a component name.
func Named(name string) *zap.SugaredLogger {
	return Log.Named(name)
}

func Sync() {
	if ZapLogger != nil {
		_ = ZapLogger.Sync() // flushes buffer, if any
	}
}
