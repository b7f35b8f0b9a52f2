package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/linkverify"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Dir string `arg:"" optional:"" help:"Directory of rendered pages (default: configured output)" type:"existingdir"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	dir := c.Dir
	if dir == "" {
		cfg, err := loadConfig(g, root)
		if err != nil {
			return err
		}
		dir = cfg.Output
	}

	report, err := linkverify.NewChecker(dir, g.logger()).Check(context.Background())
	if err != nil {
		return err
	}
	for _, b := range report.Broken {
		_, _ = fmt.Fprintf(g.Out, "%s: %s (%s)\n", b.Page, b.Href, b.Reason)
	}
	_, _ = fmt.Fprintf(g.Out, "%d pages, %d links (%d external), %d broken\n",
		report.Pages, report.Links, report.External, len(report.Broken))
	if !report.OK() {
		return ferrors.ValidationError("broken links found").
			WithContext("count", len(report.Broken)).
			Build()
	}
	return nil
}
