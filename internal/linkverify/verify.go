package linkverify

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
)

// Reasons a link is reported broken.
const (
	ReasonMissingPage   = "missing page"
	ReasonMissingAnchor = "missing anchor"
	ReasonInvalidURL    = "invalid url"
)

// BrokenLink is a link that does not resolve.
type BrokenLink struct {
	Page   string
	Href   string
	Text   string
	Reason string
}

// Report summarizes a check run.
type Report struct {
	Pages    int
	Links    int
	External int
	Broken   []BrokenLink
}

// OK reports whether every checked link resolved.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// Checker verifies the .html pages of one output directory. Only the
// directory's top level is considered; pages link to siblings.
type Checker struct {
	dir    string
	logger *slog.Logger
}

// NewChecker returns a Checker for dir. A nil logger uses slog.Default().
func NewChecker(dir string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{dir: dir, logger: logger}
}

// Check parses every page and verifies each local link. Links whose target
// is not a rendered page (stylesheets, images) must exist as files.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, ferrors.FileSystemError("read output directory").
			WithCause(err).
			WithContext("path", c.dir).
			Build()
	}

	docs := map[string]*Document{}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isPage(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := c.load(e.Name())
		if err != nil {
			return nil, err
		}
		docs[e.Name()] = doc
		names = append(names, e.Name())
	}
	sort.Strings(names)

	report := &Report{Pages: len(names)}
	for _, name := range names {
		for _, link := range docs[name].Links {
			report.Links++
			if isExternal(link.Href) {
				report.External++
				continue
			}
			if reason := c.resolve(name, link.Href, docs); reason != "" {
				report.Broken = append(report.Broken, BrokenLink{
					Page:   strings.TrimSuffix(name, ".html"),
					Href:   link.Href,
					Text:   link.Text,
					Reason: reason,
				})
				c.logger.Debug("Broken link",
					logfields.Page(name),
					logfields.URL(link.Href),
					slog.String("reason", reason))
			}
		}
	}
	return report, nil
}

func (c *Checker) load(name string) (*Document, error) {
	f, err := os.Open(filepath.Join(c.dir, name))
	if err != nil {
		return nil, ferrors.FileSystemError("failed to open HTML file").
			WithCause(err).
			WithContext("file", name).
			Build()
	}
	defer func() { _ = f.Close() }()

	doc, err := Extract(f)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, ce.WithContext("file", name)
		}
		return nil, err
	}
	return doc, nil
}

// resolve returns "" when href resolves from page, or the reason it does not.
func (c *Checker) resolve(page, href string, docs map[string]*Document) string {
	u, err := url.Parse(href)
	if err != nil {
		return ReasonInvalidURL
	}

	target := page
	if u.Path != "" {
		target = path.Clean(u.Path)
	}
	doc, ok := docs[target]
	if !ok {
		if isPage(target) {
			return ReasonMissingPage
		}
		if _, err := os.Stat(filepath.Join(c.dir, filepath.FromSlash(target))); err != nil {
			return ReasonMissingPage
		}
		return ""
	}
	if u.Fragment != "" && !doc.HasID(u.Fragment) {
		return ReasonMissingAnchor
	}
	return ""
}

func isPage(name string) bool {
	return strings.HasSuffix(name, ".html")
}
