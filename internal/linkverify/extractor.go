// Package linkverify checks that links between rendered pages resolve: the
// target page exists and, when a fragment is given, carries an element with
// that id.
package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// Link is an extracted <a href> link.
type Link struct {
	Href string
	Text string
	// Line is the approximate element index in the document.
	Line int
}

// Document holds what a page offers (ids) and what it points at (links).
type Document struct {
	IDs   map[string]struct{}
	Links []*Link
}

// Extract parses an HTML document and collects its ids and anchor links.
func Extract(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "failed to parse HTML").Build()
	}

	doc := &Document{IDs: map[string]struct{}{}}
	var lineNum int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			lineNum++
			if id := getAttr(n, "id"); id != "" {
				doc.IDs[id] = struct{}{}
			}
			if n.Data == "a" {
				if href, ok := attr(n, "href"); ok {
					doc.Links = append(doc.Links, &Link{Href: href, Text: extractText(n), Line: lineNum})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc, nil
}

// HasID reports whether the document defines id.
func (d *Document) HasID(id string) bool {
	_, ok := d.IDs[id]
	return ok
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	v, _ := attr(n, key)
	return v
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}

// isExternal reports whether href leaves the site (has a scheme or host).
func isExternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme != "" || u.Host != ""
}
