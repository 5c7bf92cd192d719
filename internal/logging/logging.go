// Package logging builds the process logger and carries it through contexts.
package logging

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a console logger writing to w at the named level. Unknown or
// empty level names fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !isTerminal(w)}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// WithComponent returns ctx carrying the context logger tagged with name.
func WithComponent(ctx context.Context, name string) context.Context {
	return zerolog.Ctx(ctx).With().Str("component", name).Logger().WithContext(ctx)
}

func isTerminal(w io.Writer) bool {
	type fd interface{ Fd() uintptr }
	f, ok := w.(fd)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
