package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var defaultLogger *slog.Logger

type Options struct {
	Env    string
	Level  string
	Format string
}

func Init(env string) {
	Setup(Options{Env: env})
}

// Setup installs the process logger. JSON is used in production or when
// asked for explicitly; otherwise the colored tint handler writes to stdout.
func Setup(opts Options) {
	lvl := slog.LevelDebug
	if opts.Env == "production" {
		lvl = slog.LevelInfo
	}
	if opts.Level != "" {
		lvl = ParseLevel(opts.Level)
	}

	json := opts.Env == "production" || opts.Format == "json"
	defaultLogger = slog.New(newHandler(os.Stdout, json, lvl))
	slog.SetDefault(defaultLogger)
}

func newHandler(w io.Writer, json bool, lvl slog.Level) slog.Handler {
	if json {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
