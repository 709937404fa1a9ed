package command

import (
	"io"
	"log/slog"
	"os"
)

// logged carries the logging flags shared by every command.
type logged struct {
	Verbose bool `short:"v" long:"verbose" description:"Log debug details"`
	Quiet   bool `short:"q" long:"quiet" description:"Only log warnings and errors"`

	stderr io.Writer
}

func (l *logged) logger() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case l.Verbose:
		level = slog.LevelDebug
	case l.Quiet:
		level = slog.LevelWarn
	}
	w := l.stderr
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
