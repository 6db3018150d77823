package main

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
func newLogger(level, format string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = atomicLevel

	return cfg.Build()
}
