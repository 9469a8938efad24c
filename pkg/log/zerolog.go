package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"

	scerrors "github.com/YuminosukeSato/scorecast/pkg/errors"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger creates a logger writing to w. format is "console" for
// human readable output or "json".
func NewZerologLogger(w io.Writer, format string, level Level) *ZerologLogger {
	out := w
	if format == "console" {
		_, isFile := w.(*os.File)
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !isFile}
	}
	zl := zerolog.New(out).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Zerolog exposes the underlying zerolog.Logger.
func (z *ZerologLogger) Zerolog() zerolog.Logger {
	return z.zl
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		e = e.Fields(flatten(fields))
	}
	e.Msg(msg)
}

// flatten expands slog.Attr arguments into key/value pairs.
func flatten(fields []any) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		if a, ok := f.(slog.Attr); ok {
			out = append(out, a.Key, a.Value.Any())
			continue
		}
		out = append(out, f)
	}
	return out
}

func (z *ZerologLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{zl: z.zl.With().Fields(flatten(fields)).Logger()}
}

func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.zl.GetLevel()
}

// ZerologProvider implements LoggerProvider with a shared ZerologLogger.
type ZerologProvider struct {
	logger *ZerologLogger
}

// NewZerologProvider returns a provider serving logger.
func NewZerologProvider(logger *ZerologLogger) *ZerologProvider {
	return &ZerologProvider{logger: logger}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.logger = &ZerologLogger{zl: p.logger.zl.Level(toZerologLevel(level))}
}

// InstallWarningSink routes errors.Warn through l. Warnings that implement
// zerolog.LogObjectMarshaler keep their structured fields when l is a
// ZerologLogger. Passing nil uninstalls the sink.
func InstallWarningSink(l Logger) {
	if l == nil {
		scerrors.SetZerologWarnFunc(nil)
		return
	}
	scerrors.SetZerologWarnFunc(func(w error) {
		if zl, ok := l.(*ZerologLogger); ok {
			e := zl.zl.Warn()
			if m, ok := w.(zerolog.LogObjectMarshaler); ok {
				e = e.EmbedObject(m)
			}
			e.Msg(w.Error())
			return
		}
		l.Warn(w.Error(), "warning.type", fmt.Sprintf("%T", w))
	})
}
