package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pageza/foodgram/backend/config"
)

// New builds the application logger. Production gets JSON output at info
// level, every other environment a colored console logger at debug level.
func New(env config.Environment) (*zap.Logger, error) {
	if env.IsProduction() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// Must is New for process entry points where a logger failure is fatal.
func Must(env config.Environment) *zap.Logger {
	log, err := New(env)
	if err != nil {
		panic(err)
	}
	return log
}
