// Package commands implements the apidoc command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/apidoc/internal/build"
	"git.home.luguber.info/inful/apidoc/internal/buildstate"
	"git.home.luguber.info/inful/apidoc/internal/config"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/metrics"
	"git.home.luguber.info/inful/apidoc/internal/notify"
	"git.home.luguber.info/inful/apidoc/internal/retry"
	"git.home.luguber.info/inful/apidoc/internal/site"
)

// Global is passed to every command's Run. A nil Logger is replaced by the
// logger the loaded configuration describes.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"apidoc.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render every page of the input directory"`
	TOC   TOCCmd   `cmd:"" name:"toc" help:"Print the table of contents of one page"`
	Watch WatchCmd `cmd:"" help:"Rebuild whenever the sources change"`
	Check CheckCmd `cmd:"" help:"Verify links and anchors between rendered pages"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; set up logging once. Commands that
// load a configuration refine it with the configured level and format.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration named by --config and installs the
// logger it describes.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if g.Logger == nil {
		logger := slog.New(cfg.Logging.NewHandler(os.Stderr, root.Verbose))
		slog.SetDefault(logger)
		g.Logger = logger
	}
	g.Logger.Debug("Configuration loaded", logfields.Path(root.Config), slog.String("config", cfg.String()))
	return cfg, nil
}

// session holds what stays open across builds: the state database, the
// metrics registry and the NATS connection.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	md        *markdown.Renderer
	state     *buildstate.Store
	registry  *prom.Registry
	recorder  metrics.Recorder
	publisher notify.Publisher
}

func openSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	s := &session{
		cfg:       cfg,
		logger:    logger,
		md:        markdown.NewRenderer(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
	}
	if !cfg.State.Disabled() {
		store, err := buildstate.Open(cfg.State.Path)
		if err != nil {
			return nil, err
		}
		s.state = store
	}
	if cfg.Metrics.Textfile != "" {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}
	if cfg.NATS.URL != "" {
		var pub *notify.NATSPublisher
		policy := retry.NewPolicy(retry.BackoffLinear, 0, 0, cfg.NATS.ConnectRetries)
		err := policy.Do(context.Background(), func() error {
			var err error
			pub, err = notify.Connect(cfg.NATS.URL, cfg.NATS.Subject, logger)
			return err
		})
		if err != nil {
			logger.Warn("Page events disabled", logfields.Error(err))
		} else {
			s.publisher = pub
		}
	}
	return s, nil
}

func (s *session) close() {
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("Failed to close NATS connection", logfields.Error(err))
	}
	if s.state != nil {
		if err := s.state.Close(); err != nil {
			s.logger.Warn("Failed to close state database", logfields.Error(err))
		}
	}
}

// build loads the site data fresh and runs one build.
func (s *session) build(ctx context.Context, force bool, output string) (*build.Report, error) {
	st, err := site.Load(s.cfg, s.md, s.logger)
	if err != nil {
		return nil, err
	}
	opts := []build.Option{
		build.WithRecorder(s.recorder),
		build.WithPublisher(s.publisher),
		build.WithLogger(s.logger),
		build.WithOutput(output),
	}
	if s.state != nil {
		opts = append(opts, build.WithState(s.state))
	}
	report, err := build.New(s.cfg, st, s.md, opts...).Build(ctx, force)

	if s.registry != nil {
		if werr := metrics.WriteTextfile(s.registry, s.cfg.Metrics.Textfile); werr != nil {
			s.logger.Warn("Failed to write metrics", logfields.Error(werr))
		}
	}
	return report, err
}
