package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLocal       = "local"
	envDevelopment = "development"
	envProduction  = "production"
)

// New creates a zap logger configured for the given environment.
// Local and development environments get a human-readable console encoder
// with debug level; production gets JSON at info level.
func New(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case envLocal, envDevelopment:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case envProduction:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		// Logging must never prevent startup
		return zap.NewNop()
	}

	return log
}
