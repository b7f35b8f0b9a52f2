package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/apidoc/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Force  bool   `short:"f" help:"Render every page even when unchanged since the last build"`
	Output string `short:"o" help:"Output directory (overrides the configuration)" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
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

	report, err := s.build(ctx, b.Force, b.Output)
	if report != nil {
		printReport(g, report)
	}
	return err
}

func printReport(g *Global, r *build.Report) {
	_, _ = fmt.Fprintf(g.Out, "%d rendered, %d unchanged, %d failed in %s\n",
		r.Rendered, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond))
	for _, p := range r.Pages {
		if p.Status == build.PageFailed && p.Err != nil {
			_, _ = fmt.Fprintf(g.Out, "  %s: %v\n", p.Name, p.Err)
		}
	}
}
