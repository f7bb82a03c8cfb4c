package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options controls where and how much the application logs.
type Options struct {
	// Debug lowers the level from info to debug.
	Debug bool
	// File, if set, receives the log instead of Fallback.
	File string
	// Fallback is used when File is empty. A nil Fallback discards output.
	Fallback io.Writer
}

// New builds the application logger. The returned close function releases the
// log file, if one was opened.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	out := opts.Fallback
	closeFn := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}
	if out == nil {
		return zerolog.Nop(), closeFn, nil
	}

	if opts.File == "" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log, closeFn, nil
}
