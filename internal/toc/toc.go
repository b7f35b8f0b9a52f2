// Package toc assigns anchors to headings and builds the page's table of
// contents.
//
// Every heading gets two ids from independent namespaces: a primary slug
// compatible with GitHub's heading anchors, and a legacy alias over
// "<page>_<heading>" kept for old inbound links. The heading tokens are
// mutated in place with the rendered anchor markup.
package toc

import (
	"fmt"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/token"
)

const placeholder = "<!-- TOC -->"

var (
	deprecationHeading = regexp.MustCompile(`^DEP\d+:`)
	apiKindPrefix      = regexp.MustCompile(`^.*:\s+`)
	apiArguments       = regexp.MustCompile(`\(.*`)
)

// MarkdownRenderer renders a standalone markdown fragment to HTML.
type MarkdownRenderer interface {
	RenderMarkdown(src string) (string, error)
}

// Options configure a Build call.
type Options struct {
	// Filename is the page name without extension, e.g. "fs".
	Filename string
	// APILinks maps API names such as "fs.open" to source URLs.
	APILinks map[string]string
	Markdown MarkdownRenderer
}

// Entry is one table of contents line.
type Entry struct {
	Depth     int
	ID        string // anchor the entry links to
	LegacyID  string
	Text      string
	Stability string
}

// Result holds the rendered table of contents.
type Result struct {
	// TOC is the collapsible block placed at the top of the page.
	TOC string
	// Picker is the compact variant used by the page header.
	Picker  string
	Entries []Entry
}

// Build walks the headings of doc, assigns anchors and renders the table of
// contents. A heading more than one level deeper than its predecessor is an
// error; the first heading must be level 1.
func Build(doc *token.Document, opts Options) (*Result, error) {
	ids := NewIDCounter()
	legacyIDs := NewIDCounter()
	res := &Result{}
	var lines strings.Builder
	depth := 0

	for _, t := range doc.Tokens {
		if t.Kind != token.Heading {
			continue
		}
		if t.Depth-depth > 1 {
			return nil, ferrors.HeadingError("inappropriate heading level").
				WithContext("page", opts.Filename).
				WithContext("token", t.String()).
				Build()
		}
		depth = t.Depth

		text := strings.TrimSpace(t.Text)
		id := ids.Unique(Slug(text))
		legacyID := legacyIDs.Unique(LegacySlug(opts.Filename + "_" + text))

		target := id
		if deprecationHeading.MatchString(text) {
			t.AnchorOverride = ids.Unique(Slug(text[:strings.IndexByte(text, ':')]))
			target = t.AnchorOverride
		}

		lines.WriteString(strings.Repeat(" ", (depth-1)*2))
		if t.HasStability() {
			fmt.Fprintf(&lines, `* <span class="stability_%s">`, t.Stability)
		} else {
			lines.WriteString("* ")
		}
		fmt.Fprintf(&lines, `<a href="#%s">%s</a>`, target, text)
		if t.HasStability() {
			lines.WriteString("</span>")
		}
		lines.WriteByte('\n')

		t.Anchors = append(t.Anchors, anchors(opts, text, id, legacyID))
		res.Entries = append(res.Entries, Entry{
			Depth:     depth,
			ID:        target,
			LegacyID:  legacyID,
			Text:      text,
			Stability: t.Stability,
		})
	}

	if lines.Len() == 0 {
		res.TOC, res.Picker = placeholder, placeholder
		return res, nil
	}
	inner, err := opts.Markdown.RenderMarkdown(lines.String())
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryMarkdown, "render table of contents").
			WithContext("page", opts.Filename).
			Build()
	}
	res.TOC = `<details id="toc" open><summary>Table of contents</summary>` + inner + `</details>`
	res.Picker = `<div class="toc">` + inner + `</div>`
	return res, nil
}

// anchors renders the markup appended to a heading: the self link, the hidden
// legacy alias, the error code anchor on the errors page and the source link.
func anchors(opts Options, text, id, legacyID string) string {
	var b strings.Builder
	if api := APIName(text); opts.APILinks[api] != "" {
		fmt.Fprintf(&b, `<a class="srclink" href=%s>[src]</a>`, opts.APILinks[api])
	}
	fmt.Fprintf(&b, `<span><a class="mark" href="#%s" id="%s">#</a></span>`, id, id)
	fmt.Fprintf(&b, `<a aria-hidden="true" class="legacy" id="%s"></a>`, legacyID)
	if opts.Filename == "errors" && strings.HasPrefix(text, "ERR_") {
		fmt.Fprintf(&b, `<span><a class="mark" href="#%s" id="%s">#</a></span>`, text, text)
	}
	return b.String()
}

// APIName derives the API name a heading documents: "Class: fs.Dir" gives
// "fs.Dir" and "fs.open(path[, flags])" gives "fs.open".
func APIName(heading string) string {
	return apiArguments.ReplaceAllString(apiKindPrefix.ReplaceAllString(heading, ""), "")
}
