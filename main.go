package main

import (
	"go.uber.org/automaxprocs/maxprocs"

	"mr-games/cmd"
	"mr-games/logger"
)

func main() {
	logger.InitLogger()
	defer logger.Sync()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Log.Debugf)); err != nil {
		logger.Log.Warnw("Failed to set GOMAXPROCS", "error", err)
	}
	cmd.Execute()
}
