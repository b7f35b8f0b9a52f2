package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string    `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(raw string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return lvl, nil
}

// NewHandler builds the slog handler described by the configuration.
// verbose forces debug level.
func (l LoggingConfig) NewHandler(w io.Writer, verbose bool) slog.Handler {
	lvl, err := ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if LogFormat(strings.ToLower(string(l.Format))) == LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
