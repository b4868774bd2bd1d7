package phy

import (
	"log/slog"

	"github.com/soypat/rtlphy/internal"
)

type logger struct {
	log *slog.Logger
}

func (l logger) logenabled(lvl slog.Level) bool {
	return internal.LogEnabled(l.log, lvl)
}

func (l logger) logattrs(lvl slog.Level, msg string, attrs ...slog.Attr) {
	internal.LogAttrs(l.log, lvl, msg, attrs...)
}

func (l logger) info(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelInfo, msg, attrs...)
}

func (l logger) debug(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelDebug, msg, attrs...)
}

func (l logger) trace(msg string, attrs ...slog.Attr) {
	l.logattrs(internal.LevelTrace, msg, attrs...)
}

func (l logger) logerr(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelError, msg, attrs...)
}
