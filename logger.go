package cellgrid

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/cellgrid/atlas"
)

// discard drops every record and reports every level as disabled, so
// log calls on the default logger never format their arguments.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var silent = slog.New(discard{})

var current atomic.Pointer[slog.Logger]

func init() { current.Store(silent) }

// SetLogger routes log output of cellgrid and package atlas to l.
// Nil restores the default, which logs nothing. It is safe to call while
// frames are being painted.
//
// Levels:
//   - [slog.LevelDebug]: a pass was retried (stale shapes, buffer growth,
//     atlas exhaustion)
//   - [slog.LevelInfo]: the atlas texture was recreated
//   - [slog.LevelWarn]: the atlas hit its maximum size and image
//     quality was lowered
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
	atlas.SetLogger(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}
