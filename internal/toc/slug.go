package toc

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	punctuation     = regexp.MustCompile(`[^\w\- ]`)
	notAlphaNumeric = regexp.MustCompile(`[^a-z0-9]+`)
	edgeUnderscores = regexp.MustCompile(`^_+|_+$`)
	notAlphaStart   = regexp.MustCompile(`^[^a-z]`)
)

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Slug returns the GitHub-compatible anchor for a heading: lowercased, every
// character other than a word character, hyphen or space dropped, spaces
// turned into hyphens.
func Slug(text string) string {
	s := punctuation.ReplaceAllString(lower(text), "")
	return strings.ReplaceAll(s, " ", "-")
}

// LegacySlug returns the alias anchor kept so links into older docs still
// resolve: runs of characters outside [a-z0-9] become one underscore, edge
// underscores are trimmed and an underscore is prefixed when the result does
// not start with a letter.
func LegacySlug(text string) string {
	s := notAlphaNumeric.ReplaceAllString(lower(text), "_")
	s = edgeUnderscores.ReplaceAllString(s, "")
	if notAlphaStart.MatchString(s) {
		s = "_" + s
	}
	return s
}

// IDCounter deduplicates anchors within one namespace of one page. The
// first use of a slug is returned bare, later uses get _1, _2, ... in
// encounter order. A generated id never repeats an id already handed out,
// even when a heading's own slug looks like a suffixed one.
type IDCounter struct {
	last map[string]int
	used map[string]bool
}

// NewIDCounter returns an empty counter.
func NewIDCounter() *IDCounter {
	return &IDCounter{last: make(map[string]int), used: make(map[string]bool)}
}

// Unique returns slug or its next free suffixed form and records it.
func (c *IDCounter) Unique(slug string) string {
	n, seen := c.last[slug]
	if !seen && !c.used[slug] {
		c.last[slug] = 0
		c.used[slug] = true
		return slug
	}
	for {
		n++
		id := slug + "_" + strconv.Itoa(n)
		if !c.used[id] {
			c.last[slug] = n
			c.used[id] = true
			return id
		}
	}
}
