package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config represents logger configuration
type Config struct {
	Level   string // debug, info, warn, error, fatal
	Console bool   // human-readable stdout instead of JSON
	LogFile string // optional file path for logs
	Service string // attached to every entry as "service"
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{os.Stdout}

	var fileErr error
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, file)
		}
	}

	if cfg.Console {
		writers[0] = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Caller()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Error().Err(fileErr).Str("file", cfg.LogFile).Msg("Failed to open log file")
	}
	return fileErr
}

type contextKey string

// ContextKey is the key used to store logger in context
const ContextKey contextKey = "logger"

// FromContext returns the logger from context or the global logger
func FromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ContextKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

// WithContext returns a context with the logger attached
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ContextKey, l)
}

// With returns a context whose logger carries the extra string fields.
// Fields are given in key, value pairs.
func With(ctx context.Context, fields ...string) context.Context {
	lc := FromContext(ctx).With()
	for i := 0; i+1 < len(fields); i += 2 {
		lc = lc.Str(fields[i], fields[i+1])
	}
	l := lc.Logger()
	return WithContext(ctx, &l)
}
