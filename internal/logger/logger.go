package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Debug bool

	// OutputPaths overrides where entries are written. Defaults to stderr.
	OutputPaths []string

	// Fields are attached to every entry.
	Fields map[string]string
}

// New builds a logger: a console encoder at debug level when Debug is set,
// JSON at info level otherwise.
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if len(cfg.OutputPaths) > 0 {
		zapConfig.OutputPaths = cfg.OutputPaths
	}

	log, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if len(cfg.Fields) > 0 {
		fields := make([]zap.Field, 0, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields = append(fields, zap.String(k, v))
		}
		log = log.With(fields...)
	}
	return log, nil
}
