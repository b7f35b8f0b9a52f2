// Package config loads apidoc.yaml.
//
// Loading order: .env files (never overriding the process environment),
// ${VAR} expansion of the raw file, YAML decoding, defaults, path
// resolution against the config file's directory, validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/versioning"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "apidoc.yaml"

// Config is the complete apidoc configuration.
type Config struct {
	// Input is the directory holding the markdown sources.
	Input string `yaml:"input"`
	// Output is the directory the pages are written to.
	Output string `yaml:"output"`
	// Template is an HTML page template; empty uses the built-in one.
	Template string `yaml:"template,omitempty"`
	// Nav is the markdown index the global navigation is built from.
	Nav            string `yaml:"nav,omitempty"`
	ProductVersion string `yaml:"product_version"`

	Releases     []versioning.VersionEntry `yaml:"releases,omitempty"`
	ReleasesFile string                    `yaml:"releases_file,omitempty"`
	APILinks     string                    `yaml:"api_links,omitempty"`
	LinksMapper  string                    `yaml:"links_mapper,omitempty"`
	TypesFile    string                    `yaml:"types_file,omitempty"`

	AltDocsHost string `yaml:"alt_docs_host,omitempty"`
	// EditURLBase prefixes "<page>.md" in the edit link. "{branch}" is
	// replaced with EditBranch or the branch checked out in Input.
	EditURLBase string `yaml:"edit_url_base,omitempty"`
	EditBranch  string `yaml:"edit_branch,omitempty"`

	Concurrency int           `yaml:"concurrency,omitempty"`
	State       StateConfig   `yaml:"state,omitempty"`
	Metrics     MetricsConfig `yaml:"metrics,omitempty"`
	NATS        NATSConfig    `yaml:"nats,omitempty"`
	Watch       WatchConfig   `yaml:"watch,omitempty"`
	Logging     LoggingConfig `yaml:"logging,omitempty"`
}

// StateConfig configures the incremental build database.
type StateConfig struct {
	// Path of the SQLite database; "off" disables incremental builds.
	Path string `yaml:"path,omitempty"`
}

// Disabled reports whether incremental state is switched off.
func (s StateConfig) Disabled() bool { return s.Path == "off" }

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile is a node-exporter textfile written after each build.
	Textfile string `yaml:"textfile,omitempty"`
}

// NATSConfig configures page event publishing. Empty URL disables it.
type NATSConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	// ConnectRetries is how often a failed initial connect is retried.
	ConnectRetries int `yaml:"connect_retries,omitempty"`
}

// WatchConfig configures `apidoc watch`.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	// RebuildInterval schedules periodic full rebuilds; zero disables them.
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
}

// Load reads, expands, decodes, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", path).
				WithCause(err).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration YAML without defaults or validation. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
			UserAction().
			Build()
	}
	return &cfg, nil
}

// resolvePaths makes relative file settings relative to dir.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{
		&c.Input, &c.Output, &c.Template, &c.Nav, &c.ReleasesFile,
		&c.APILinks, &c.LinksMapper, &c.TypesFile, &c.Metrics.Textfile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	if c.State.Path != "" && !c.State.Disabled() && !filepath.IsAbs(c.State.Path) {
		c.State.Path = filepath.Join(dir, c.State.Path)
	}
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}

const exampleConfig = `# apidoc configuration
input: doc/api
output: out/doc/api
product_version: ${NODE_VERSION}

# template: doc/template.html
# nav: doc/api/index.md

releases:
  - num: "15.x"
  - num: "14.x"
    lts: true
  - num: "12.x"
    lts: true
# releases_file: doc/releases.yaml

api_links: out/apilinks.json
# links_mapper: tools/doc/links-mapper.json
# types_file: tools/doc/types.yaml

edit_url_base: https://github.com/nodejs/node/edit/{branch}/doc/api/
# edit_branch: main

concurrency: 4

state:
  path: out/.apidoc-state.db

# metrics:
#   textfile: /var/lib/node_exporter/apidoc.prom

# nats:
#   url: nats://localhost:4222
#   subject: apidoc.pages
#   connect_retries: 2

watch:
  debounce: 300ms
  # rebuild_interval: 1h

logging:
  level: info
  format: text
`

// String renders a compact summary for debug logs.
func (c *Config) String() string {
	return fmt.Sprintf("input=%s output=%s version=%s concurrency=%d", c.Input, c.Output, c.ProductVersion, c.Concurrency)
}
