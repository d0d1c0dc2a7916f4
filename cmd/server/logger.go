package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vishalcoc44/Ai-Battlefield/internal/config"
)

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(config.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	var cfg zap.Config
	switch config.LogFormat() {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (valid options: json, console)", config.LogFormat())
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
