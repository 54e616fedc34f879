package main

import (
	"fmt"

	"github.com/fastygo/taskflow/internal/config"
	pgInfra "github.com/fastygo/taskflow/internal/infrastructure/postgres"
	"github.com/fastygo/taskflow/pkg/logger"
)

func runMigrate(direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer zapLogger.Sync()

	return pgInfra.Migrate(cfg, direction, zapLogger)
}
