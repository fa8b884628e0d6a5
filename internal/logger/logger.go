package logger

import (
  "go.uber.org/zap"
)

// Logger wraps a sugared zap logger so every component can derive its own
// tagged logger with With("service", "...") and log with key/value pairs.
type Logger struct {
  s *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
  var cfg zap.Config
  if mode == "production" {
    cfg = zap.NewProductionConfig()
  } else {
    cfg = zap.NewDevelopmentConfig()
  }
  z, err := cfg.Build(zap.AddCallerSkip(1))
  if err != nil {
    return nil, err
  }
  return &Logger{s: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
  return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
  return &Logger{s: l.s.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
  l.s.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
  l.s.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
  l.s.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
  l.s.Errorw(msg, keysAndValues...)
}

func (l *Logger) Sync() error {
  return l.s.Sync()
}
