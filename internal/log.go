package internal

import (
	"context"
	"log/slog"
)

// LevelTrace is used for per-transaction register logging.
const LevelTrace slog.Level = slog.LevelDebug - 2

func LogEnabled(l *slog.Logger, lvl slog.Level) bool {
	return l != nil && l.Handler().Enabled(context.Background(), lvl)
}

// LogAttrs is the helper used by all package loggers. A nil logger discards the record.
func LogAttrs(l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if l != nil {
		l.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

// SlogReg returns a slog.Attr for a 16-bit register value or address
// without formatting it to a string.
func SlogReg(key string, v uint16) slog.Attr {
	return slog.Uint64(key, uint64(v))
}
