package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/academia/backend/core"
)

// NewZap builds the process logger: JSON at info level in production, coloured console at debug level otherwise.
// Test mode only reports errors.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	var cfg zap.Config

	if conf.Debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if conf.TestMode {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	lg, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return lg.With(zap.String("app", conf.AppName), zap.String("env", conf.Env)), nil
}
