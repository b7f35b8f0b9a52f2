package config

import (
	"path/filepath"
	"runtime"
	"time"

	"git.home.luguber.info/inful/apidoc/internal/versioning"
)

const (
	defaultOutput      = "out"
	defaultEditURLBase = "https://github.com/nodejs/node/edit/{branch}/doc/api/"
	defaultSubject     = "apidoc.pages"
	defaultDebounce    = 300 * time.Millisecond
	stateFileName      = ".apidoc-state.db"
)

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.Nav == "" && c.Input != "" {
		c.Nav = filepath.Join(c.Input, "index.md")
	}
	if c.AltDocsHost == "" {
		c.AltDocsHost = versioning.DefaultHost
	}
	if c.EditURLBase == "" {
		c.EditURLBase = defaultEditURLBase
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.State.Path == "" {
		c.State.Path = filepath.Join(c.Output, stateFileName)
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = defaultSubject
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = defaultDebounce
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}
