package commands

import (
	"fmt"
	"os"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/page"
	"git.home.luguber.info/inful/apidoc/internal/site"
)

// TOCCmd implements the 'toc' command.
type TOCCmd struct {
	File string `arg:"" help:"Markdown source" type:"existingfile"`
}

func (t *TOCCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	md := markdown.NewRenderer()
	st, err := site.Load(cfg, md, g.Logger)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(t.File)
	if err != nil {
		return ferrors.FileSystemError("read page source").
			WithCause(err).
			WithContext("path", t.File).
			Build()
	}
	res, err := page.NewAssembler(st, md, g.Logger).TOC(t.File, string(src))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, res.TOC)
	return nil
}
