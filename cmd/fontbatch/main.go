package main

import (
	"os"

	"go.uber.org/zap"

	"fontbatch/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Error("fontbatch exited with an error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
