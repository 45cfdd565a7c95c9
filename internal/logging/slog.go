package logging

import (
	"context"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKeys never have their values written, whatever the backend.
var sensitiveKeys = map[string]struct{}{
	"password":   {},
	"credential": {},
	"secret":     {},
	"key":        {},
	"token":      {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// SlogLogger adapts *slog.Logger to Logger. Values logged under a sensitive
// key are replaced with "[REDACTED]".
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(redactArgs(args)...)}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, msg, redactArgs(args)...)
}

// redactArgs copies args, masking the value of every sensitive pair. It
// understands both loose key-value pairs and slog.Attr entries.
func redactArgs(args []any) []any {
	out := make([]any, len(args))
	copy(out, args)

	for i := 0; i < len(out); {
		switch v := out[i].(type) {
		case slog.Attr:
			if isSensitive(v.Key) {
				out[i] = slog.String(v.Key, redacted)
			}
			i++
		case string:
			if i+1 < len(out) && isSensitive(v) {
				out[i+1] = redacted
			}
			i += 2
		default:
			i += 2
		}
	}
	return out
}
