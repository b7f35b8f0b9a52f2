// Package site loads the data shared by every page of a build: the page
// template, the global navigation, the link tables, the release list and the
// type resolver.
//
// A Site is built once before the first page is rendered and is never
// modified afterwards, so it can be shared by concurrent page renders.
package site

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/apidoc/internal/config"
	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/git"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/typelink"
	"git.home.luguber.info/inful/apidoc/internal/versioning"
)

//go:embed template.html
var defaultTemplate string

const defaultBranch = "main"

// Site is the immutable, process-wide data used by page renders.
type Site struct {
	Template       string
	GTOC           string
	ProductVersion string
	Releases       []versioning.VersionEntry
	AltDocsHost    string
	// EditURLBase has {branch} already filled in.
	EditURLBase string
	APILinks    map[string]string
	LinksMapper markdown.LinkMapper
	Types       *typelink.Resolver
}

// Load builds the Site for cfg.
func Load(cfg *config.Config, md *markdown.Renderer, logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Site{
		Template:       defaultTemplate,
		ProductVersion: cfg.ProductVersion,
		Releases:       cfg.Releases,
		AltDocsHost:    cfg.AltDocsHost,
		APILinks:       map[string]string{},
		LinksMapper:    markdown.LinkMapper{},
	}

	if cfg.Template != "" {
		data, err := os.ReadFile(cfg.Template)
		if err != nil {
			return nil, ferrors.TemplateError("read template").WithCause(err).
				WithContext("path", cfg.Template).
				Build()
		}
		s.Template = string(data)
	}

	if cfg.ReleasesFile != "" {
		releases, err := versioning.LoadReleases(cfg.ReleasesFile)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load releases").Build()
		}
		s.Releases = releases
	}

	if cfg.APILinks != "" {
		if err := readJSON(cfg.APILinks, &s.APILinks); err != nil {
			return nil, err
		}
	}
	if cfg.LinksMapper != "" {
		if err := readJSON(cfg.LinksMapper, &s.LinksMapper); err != nil {
			return nil, err
		}
	}

	var extraTypes map[string]string
	if cfg.TypesFile != "" {
		var err error
		if extraTypes, err = typelink.LoadTypes(cfg.TypesFile); err != nil {
			return nil, err
		}
	}
	types, err := typelink.NewResolver(extraTypes)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "build type resolver").Build()
	}
	s.Types = types

	branch := cfg.EditBranch
	if branch == "" && strings.Contains(cfg.EditURLBase, "{branch}") {
		branch = git.DetectBranch(cfg.Input, defaultBranch)
		logger.Debug("Detected edit branch", slog.String("branch", branch), logfields.Path(cfg.Input))
	}
	s.EditURLBase = strings.ReplaceAll(cfg.EditURLBase, "{branch}", branch)

	if cfg.Nav != "" {
		src, err := os.ReadFile(cfg.Nav)
		switch {
		case err == nil:
			if s.GTOC, err = BuildNav(string(src), md); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			logger.Warn("Navigation index not found; pages will have no global navigation", logfields.Path(cfg.Nav))
		default:
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read navigation index").
				WithContext("path", cfg.Nav).
				Build()
		}
	}
	return s, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "read link table").
			WithContext("path", path).
			Build()
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "decode link table").
			WithContext("path", path).
			Build()
	}
	return nil
}
