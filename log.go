package hxevent

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger. format is "console" or "json".
func NewLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}

	switch format {
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
