// Package logging builds the process logger and adapts it to the
// logging surface the rest of the program consumes.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openpress/backend/auth"
)

// New builds a production zap logger at the given level and returns it
// wrapped in the auth.Logger surface.
func New(level string) (auth.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &zapAdapter{sugar: logger.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() auth.Logger {
	return &zapAdapter{sugar: zap.NewNop().Sugar()}
}

type zapAdapter struct {
	sugar *zap.SugaredLogger
}

func (l *zapAdapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapAdapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapAdapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapAdapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
