package log

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewSlogProvider(nil)
)

// SetProvider replaces the process-wide logger provider. A nil provider
// restores the slog default.
func SetProvider(p LoggerProvider) {
	if p == nil {
		p = NewSlogProvider(nil)
	}
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetProvider returns the active provider.
func GetProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

// GetLogger returns the default logger of the active provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a logger tagged with ComponentKey=name.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// SlogProvider serves loggers backed by a *slog.Logger.
type SlogProvider struct {
	base  *slog.Logger
	level *atomic.Int64
}

// NewSlogProvider wraps base. A nil base means slog.Default() at call time,
// so a later slog.SetDefault is picked up.
func NewSlogProvider(base *slog.Logger) *SlogProvider {
	lvl := &atomic.Int64{}
	lvl.Store(int64(LevelDebug))
	return &SlogProvider{base: base, level: lvl}
}

func (p *SlogProvider) logger() *slog.Logger {
	if p.base != nil {
		return p.base
	}
	return slog.Default()
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{l: p.logger(), min: p.level}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.logger().With(ComponentKey, name), min: p.level}
}

// SetLevel implements LoggerProvider.SetLevel. The handler's own level still
// applies; this can only raise the threshold.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Store(int64(level))
}

type slogLogger struct {
	l   *slog.Logger
	min *atomic.Int64
}

func (s *slogLogger) log(level Level, msg string, fields ...any) {
	ctx := context.Background()
	if !s.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, slog.Level(level), msg, fields...)
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.log(LevelDebug, msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.log(LevelInfo, msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.log(LevelWarn, msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.log(LevelError, msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...), min: s.min}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return level >= Level(s.min.Load()) && s.l.Enabled(ctx, slog.Level(level))
}
