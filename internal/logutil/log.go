package logutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	loggerKey = key(1)
)

// WithLogger attaches logger to ctx, it is also visible to zerolog.Ctx so
// hlog handlers derive request loggers from it.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(context.WithValue(ctx, loggerKey, logger))
}

// GetOrDefault returns the most specific logger attached to ctx, a request
// logger installed by hlog wins over the one given to WithLogger.
func GetOrDefault(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	if v := ctx.Value(loggerKey); v != nil {
		return v.(zerolog.Logger)
	}
	return log.Logger
}

// New builds the process logger writing to out.
func New(out io.Writer, level, format string) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q, cause %w", level, err)
		}
	}
	switch strings.ToLower(format) {
	case "", FormatJSON:
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
