package config

import (
	"os"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// Validate checks a defaulted configuration.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ferrors.ConfigError("input directory is required").Build()
	}
	info, err := os.Stat(c.Input)
	if err != nil || !info.IsDir() {
		return ferrors.ConfigError("input directory not found").
			WithContext("input", c.Input).
			Build()
	}
	if c.Template != "" {
		if _, err := os.Stat(c.Template); err != nil {
			return ferrors.ConfigError("template not found").WithContext("template", c.Template).Build()
		}
	}
	if len(c.Releases) > 0 && c.ReleasesFile != "" {
		return ferrors.ConfigError("releases and releases_file are mutually exclusive").Build()
	}
	for i, r := range c.Releases {
		if r.Num == "" {
			return ferrors.ConfigError("release entry has no num").WithContext("index", i).Build()
		}
	}
	if c.Concurrency < 1 {
		return ferrors.ConfigError("concurrency must be at least 1").WithContext("concurrency", c.Concurrency).Build()
	}
	if c.NATS.ConnectRetries < 0 {
		return ferrors.ConfigError("nats.connect_retries cannot be negative").Build()
	}
	if c.NATS.URL != "" && strings.TrimSpace(c.NATS.Subject) == "" {
		return ferrors.ConfigError("nats.subject is required when nats.url is set").Build()
	}
	if c.Watch.RebuildInterval < 0 {
		return ferrors.ConfigError("watch.rebuild_interval must not be negative").Build()
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return ferrors.ConfigError(err.Error()).Build()
	}
	switch LogFormat(strings.ToLower(string(c.Logging.Format))) {
	case LogFormatText, LogFormatJSON:
	default:
		return ferrors.ConfigError("invalid log format").WithContext("format", c.Logging.Format).Build()
	}
	return nil
}
