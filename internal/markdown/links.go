package markdown

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/apidoc/internal/token"
)

// LinkMapper maps a page name to reference-label overrides for that page.
// Labels are matched case-insensitively.
type LinkMapper map[string]map[string]string

var (
	schemePrefix   = regexp.MustCompile(`^[+a-zA-Z]+:`)
	localMarkdown  = regexp.MustCompile(`(?i)^([^#?]+)\.md(#.+)?$`)
	inlineLinkDest = regexp.MustCompile(`\]\(\s*<?([^)\s>]+)`)
	hrefAttr       = regexp.MustCompile(`href="([^"]*)"`)
)

// LocalHref rewrites a link to a sibling markdown page into a link to its
// rendered page: "fs.md#fs_stat" becomes "fs.html#fs_stat". Any other
// destination is returned unchanged.
func LocalHref(dest string) string {
	if schemePrefix.MatchString(dest) {
		return dest
	}
	m := localMarkdown.FindStringSubmatch(dest)
	if m == nil {
		return dest
	}
	return m[1] + ".html" + m[2]
}

// RewriteLinks applies page-specific reference overrides and local .md link
// rewriting to a lexed document.
func RewriteLinks(doc *token.Document, page string, mapper LinkMapper) {
	overrides := mapper[page]
	for i := range doc.References {
		ref := &doc.References[i]
		if url, ok := lookupOverride(overrides, ref.Label); ok {
			ref.Destination = url
		}
		ref.Destination = LocalHref(ref.Destination)
	}

	for _, t := range doc.Tokens {
		switch {
		case t.Kind == token.Raw || t.Kind == token.HTML:
			t.Text = replaceSubmatch(hrefAttr, t.Text, LocalHref)
		case t.Kind == token.Table:
			t.MapCells(func(cell string) string {
				return token.MapProse(cell, func(s string) string {
					return replaceSubmatch(inlineLinkDest, s, LocalHref)
				})
			})
		case t.IsProse() || t.Kind == token.Div:
			t.Text = token.MapProse(t.Text, func(s string) string {
				return replaceSubmatch(inlineLinkDest, s, LocalHref)
			})
		}
	}
}

func lookupOverride(overrides map[string]string, label string) (string, bool) {
	if len(overrides) == 0 {
		return "", false
	}
	if url, ok := overrides[label]; ok {
		return url, true
	}
	want := strings.ToLower(label)
	for k, url := range overrides {
		if strings.ToLower(k) == want {
			return url, true
		}
	}
	return "", false
}

// replaceSubmatch rewrites the first capture group of every match of re.
func replaceSubmatch(re *regexp.Regexp, s string, fn func(string) string) string {
	idx := re.FindAllStringSubmatchIndex(s, -1)
	if idx == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range idx {
		b.WriteString(s[last:m[2]])
		b.WriteString(fn(s[m[2]:m[3]]))
		last = m[3]
	}
	b.WriteString(s[last:])
	return b.String()
}
