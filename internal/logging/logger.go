// Package logging provides the small embeddable slog wrapper shared by the
// conn and listener packages, in the style of the teacher repository's
// per-type "logger" embed.
package logging

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug for per-segment tracing that would
// otherwise be too noisy even for debug builds.
const LevelTrace = slog.LevelDebug - 4

// Logger is embedded by value in ControlBlock-like types. Its zero value is
// silent (all log calls are no-ops) so tests need not configure a logger.
type Logger struct {
	Log *slog.Logger
}

func (l *Logger) enabled(lvl slog.Level) bool {
	return l.Log != nil && l.Log.Handler().Enabled(context.Background(), lvl)
}

func (l *Logger) log(lvl slog.Level, msg string, attrs ...slog.Attr) {
	if !l.enabled(lvl) {
		return
	}
	l.Log.LogAttrs(context.Background(), lvl, msg, attrs...)
}

func (l *Logger) Debug(msg string, attrs ...slog.Attr) { l.log(slog.LevelDebug, msg, attrs...) }
func (l *Logger) Trace(msg string, attrs ...slog.Attr)  { l.log(LevelTrace, msg, attrs...) }
func (l *Logger) Info(msg string, attrs ...slog.Attr)   { l.log(slog.LevelInfo, msg, attrs...) }
func (l *Logger) Err(msg string, attrs ...slog.Attr)    { l.log(slog.LevelError, msg, attrs...) }

func (l *Logger) Enabled(lvl slog.Level) bool { return l.enabled(lvl) }
