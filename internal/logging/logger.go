package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Logger struct {
	level  Level
	logger *slog.Logger
}

func parseLevel(levelStr string) Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// NewLogger writes colored human-readable lines to stderr.
func NewLogger(levelStr string) *Logger {
	level := parseLevel(levelStr)
	h := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level.slog(),
		TimeFormat: time.DateTime,
	})
	return &Logger{level: level, logger: slog.New(h)}
}

// NewLoggerWithWriter writes one JSON object per line to w.
func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	level := parseLevel(levelStr)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level.slog(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
	return &Logger{level: level, logger: slog.New(h)}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{level: l.level, logger: l.logger.With(slog.String("component", name))}
}

// Slog exposes the underlying structured logger.
func (l *Logger) Slog() *slog.Logger { return l.logger }

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), slog.Bool("fatal", true))
	os.Exit(1)
}

func (l *Logger) Debugw(msg string, fields map[string]any) { l.logw(slog.LevelDebug, msg, fields) }
func (l *Logger) Infow(msg string, fields map[string]any)  { l.logw(slog.LevelInfo, msg, fields) }
func (l *Logger) Warnw(msg string, fields map[string]any)  { l.logw(slog.LevelWarn, msg, fields) }
func (l *Logger) Errorw(msg string, fields map[string]any) { l.logw(slog.LevelError, msg, fields) }

func (l *Logger) logw(level slog.Level, msg string, fields map[string]any) {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
