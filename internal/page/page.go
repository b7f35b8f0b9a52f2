// Package page turns one markdown source into a finished HTML page.
//
// The passes run in a fixed order over a freshly lexed token stream: prose
// rewriting, the combined stability and metadata pass, link rewriting,
// anchors and table of contents, rendering, structural repair of the
// rendered body and finally template substitution. All per-page state lives
// in the ToHTML call; the Assembler only holds read-only site data.
package page

import (
	"log/slog"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/logfields"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/metadata"
	"git.home.luguber.info/inful/apidoc/internal/site"
	"git.home.luguber.info/inful/apidoc/internal/stability"
	"git.home.luguber.info/inful/apidoc/internal/textproc"
	"git.home.luguber.info/inful/apidoc/internal/toc"
	"git.home.luguber.info/inful/apidoc/internal/token"
	"git.home.luguber.info/inful/apidoc/internal/versioning"
)

// Page is a rendered page.
type Page struct {
	// Name is the source file name without extension, e.g. "fs".
	Name    string
	ID      string
	Section string
	HTML    string
	TOC     *toc.Result
	// Introduced is set when the source carries an introduced_in marker.
	Introduced *versioning.Introduced
}

// Assembler renders pages against shared site data. It is safe for
// concurrent use.
type Assembler struct {
	site     *site.Site
	md       *markdown.Renderer
	text     *textproc.Transformer
	metadata metadata.Renderer
	logger   *slog.Logger
}

// NewAssembler returns an Assembler. A nil logger uses slog.Default().
func NewAssembler(s *site.Site, md *markdown.Renderer, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	text := textproc.New(s.Types, logger)
	return &Assembler{
		site:     s,
		md:       md,
		text:     text,
		metadata: metadata.Renderer{Markdown: md, Transform: text.Transform},
		logger:   logger,
	}
}

// PageName strips directories and the .md extension from a source path.
func PageName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), ".md")
}

// Prepare runs every pass up to and including the table of contents and
// returns the annotated document. The section title is taken from the first
// heading before any rewriting.
func (a *Assembler) Prepare(name, src string) (*token.Document, *toc.Result, string, error) {
	doc, err := markdown.Lex(src)
	if err != nil {
		return nil, nil, "", ferrors.WrapError(err, ferrors.CategoryMarkdown, "lex markdown").
			WithContext("page", name).
			Build()
	}

	section := "Index"
	if h := doc.FirstHeading(); h != nil {
		section = h.Text
	}

	a.text.TransformDocument(doc, metadata.IsBlock)

	ann := stability.NewAnnotator(name)
	for _, t := range doc.Tokens {
		if t.Kind == token.HTML && metadata.IsBlock(t.Text) {
			html, err := a.metadata.RenderBlock(t.Text)
			if err != nil {
				return nil, nil, "", withPage(err, name)
			}
			t.Text = html
		}
		if err := ann.Observe(t); err != nil {
			return nil, nil, "", err
		}
	}

	markdown.RewriteLinks(doc, name, a.site.LinksMapper)

	res, err := toc.Build(doc, toc.Options{Filename: name, APILinks: a.site.APILinks, Markdown: a.md})
	if err != nil {
		return nil, nil, "", err
	}
	return doc, res, section, nil
}

// TOC renders only the standalone table of contents of a source.
func (a *Assembler) TOC(filename, src string) (*toc.Result, error) {
	name := PageName(filename)
	_, res, _, err := a.Prepare(name, textproc.PreprocessSource(src))
	return res, err
}

// ToHTML renders a complete page.
func (a *Assembler) ToHTML(filename, src string) (*Page, error) {
	name := PageName(filename)
	src = textproc.PreprocessSource(src)

	doc, res, section, err := a.Prepare(name, src)
	if err != nil {
		return nil, err
	}

	content, err := a.md.Render(doc)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryMarkdown, "render page").
			WithContext("page", name).
			Build()
	}
	body, err := ProcessContent(content)
	if err != nil {
		return nil, withPage(err, name)
	}

	id := site.PageID(name)
	html := a.site.Template
	html = strings.Replace(html, "__ID__", id, 1)
	html = strings.ReplaceAll(html, "__FILENAME__", name)
	html = strings.Replace(html, "__SECTION__", section, 1)
	html = strings.ReplaceAll(html, "__VERSION__", a.site.ProductVersion)
	html = strings.ReplaceAll(html, "__TOC__", res.TOC)
	html = strings.ReplaceAll(html, "__TOC_PICKER__", TOCPicker(res.Picker, id))
	html = strings.ReplaceAll(html, "__GTOC_PICKER__", GTOCPicker(a.site.GTOC, id))
	html = strings.ReplaceAll(html, "__GTOC__", site.HighlightNav(a.site.GTOC, id))
	html = strings.Replace(html, "__EDIT_ON_GITHUB__", EditLink(a.site.EditURLBase, name), 1)
	html = strings.Replace(html, "__CONTENT__", body, 1)

	p := &Page{Name: name, ID: id, Section: section, TOC: res}
	if created, ok := versioning.ParseIntroducedIn(src); ok {
		p.Introduced = &created
		html = strings.Replace(html, "__ALTDOCS__", versioning.AltDocs(name, created, a.site.Releases, a.site.AltDocsHost), 1)
	} else {
		a.logger.Warn("Failed to add alternative version links", logfields.Page(name))
		html = strings.Replace(html, "__ALTDOCS__", "", 1)
	}
	p.HTML = html
	return p, nil
}

func withPage(err error, name string) error {
	if ce, ok := ferrors.AsClassified(err); ok {
		return ce.WithContext("page", name)
	}
	return err
}
