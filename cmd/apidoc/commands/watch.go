package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/apidoc/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Force bool `short:"f" help:"Render every page on the first build"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(cfg, g.Logger)
	if err != nil {
		return err
	}
	defer s.close()

	paths := []string{cfg.Input, root.Config}
	for _, p := range []string{cfg.Template, cfg.Nav, cfg.ReleasesFile, cfg.APILinks, cfg.LinksMapper, cfg.TypesFile} {
		if p != "" && filepath.Dir(p) != cfg.Input {
			paths = append(paths, p)
		}
	}

	first := w.Force
	watcher := watch.New(func(ctx context.Context, reason string) error {
		force := first && reason == watch.ReasonStartup
		first = false
		report, err := s.build(ctx, force, "")
		if report != nil {
			printReport(g, report)
		}
		return err
	}, watch.Options{
		Paths:           existing(paths),
		Ignore:          []string{cfg.Output},
		Debounce:        cfg.Watch.Debounce,
		RebuildInterval: cfg.Watch.RebuildInterval,
		Logger:          g.Logger,
	})
	return watcher.Run(ctx)
}
