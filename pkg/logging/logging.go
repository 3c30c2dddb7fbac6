package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/canopy-network/flightsurety/pkg/utils"
)

// New builds the process logger from LOG_LEVEL and LOG_ENCODING. Every entry
// carries the service name. An unknown level falls back to info.
func New(service string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(utils.Env("LOG_LEVEL", "debug"))
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = utils.Env("LOG_ENCODING", "json")
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Development = level == zapcore.DebugLevel
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.String("service", service)), nil
}
