package cmd

import (
	"mr-games/config"
	"mr-games/logger"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string) config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}
	logger.Log.Infow("Configuration loaded",
		zap.String("api", cfg.GamesAPIURL),
		zap.Bool("admin_enabled", cfg.AdminPassword != ""),
		zap.Duration("request_timeout", cfg.RequestTimeout()),
	)
	return cfg
}
