package site

import (
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// MarkdownRenderer renders a standalone markdown document.
type MarkdownRenderer interface {
	RenderMarkdown(src string) (string, error)
}

var (
	navMarkdownLink = regexp.MustCompile(`(?i)\(([^#?]+?)\.md\)`)
	navComment      = regexp.MustCompile(`(?ms)^<!--.*?-->`)
	navAnchor       = regexp.MustCompile(`<a href="(.*?)"`)
	nonWord         = regexp.MustCompile(`\W+`)
)

// PageID turns a page name into the id used in CSS classes and data
// attributes: every run of non-word characters becomes a hyphen.
func PageID(name string) string {
	return nonWord.ReplaceAllString(name, "-")
}

// BuildNav renders the global navigation from the API index markdown. Links
// to sibling .md files point at the rendered pages and every link gets a
// nav-<page id> class so the current page can be highlighted.
func BuildNav(indexMD string, md MarkdownRenderer) (string, error) {
	src := navMarkdownLink.ReplaceAllString(indexMD, "($1.html)")
	src = navComment.ReplaceAllString(src, "")

	html, err := md.RenderMarkdown(src)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryMarkdown, "render navigation").Build()
	}
	return navAnchor.ReplaceAllStringFunc(html, func(m string) string {
		href := navAnchor.FindStringSubmatch(m)[1]
		id := PageID(strings.Replace(href, ".html", "", 1))
		return `<a href="` + href + `" class="nav-` + id + `"`
	}), nil
}

// HighlightNav marks the navigation entry of page id as active.
func HighlightNav(gtoc, id string) string {
	return strings.Replace(gtoc, `class="nav-`+id+`"`, `class="nav-`+id+` active"`, 1)
}
