package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	// Env selects the encoder: "production" (JSON) or "development" (console).
	Env string `yaml:"env" env:"LOG_ENV" env-default:"production"`
	// LogRequests enables the per-request HTTP log line.
	LogRequests bool `yaml:"log_requests" env:"LOG_REQUESTS" env-default:"true"`
}

func New(cfg *Config) (*zap.Logger, error) {
	var zcfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Env)) {
	case "", "production", "prod":
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "development", "dev", "local":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log env %q", cfg.Env)
	}

	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
