// Package token defines the flat block token stream that flows through the
// page pipeline.
//
// The stream mirrors the block shapes of a classic markdown lexer: container
// blocks (blockquotes, lists, list items) are bracketed by start/end tokens and
// leaf blocks carry their inline markdown source in Text. Tokens are owned by a
// single page render and mutated in place by the transform passes.
package token

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Token.
type Kind int

const (
	Heading         Kind = iota // Heading carries Depth and inline Text
	Paragraph                   // Paragraph carries inline Text
	Text                        // Text is a tight list item's inline content
	BlockquoteStart             // BlockquoteStart opens a blockquote
	BlockquoteEnd               // BlockquoteEnd closes a blockquote
	ListStart                   // ListStart opens a list; see Ordered, Start, Loose
	ListEnd                     // ListEnd closes a list
	ListItemStart               // ListItemStart opens a list item
	ListItemEnd                 // ListItemEnd closes a list item
	Code                        // Code is a code block; Text is the literal code
	HTML                        // HTML is a raw HTML block
	HR                          // HR is a thematic break
	Div                         // Div is a styled block: Class plus inline Text
	Raw                         // Raw is a block already rendered to HTML by the lexer
	Table                       // Table carries Cells and Align
)

var kindNames = [...]string{
	Heading:         "heading",
	Paragraph:       "paragraph",
	Text:            "text",
	BlockquoteStart: "blockquote_start",
	BlockquoteEnd:   "blockquote_end",
	ListStart:       "list_start",
	ListEnd:         "list_end",
	ListItemStart:   "list_item_start",
	ListItemEnd:     "list_item_end",
	Code:            "code",
	HTML:            "html",
	HR:              "hr",
	Div:             "div",
	Raw:             "raw",
	Table:           "table",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one element of the block stream.
type Token struct {
	Kind Kind
	Text string

	// Heading fields.
	Depth          int
	Stability      string   // stability digit, empty when none was recorded
	AnchorOverride string   // heading id and TOC target in place of the slug
	Anchors        []string // rendered anchor fragments appended after the text

	// List fields.
	Ordered bool
	Start   int
	Loose   bool

	// Code fields.
	Lang string

	// Div fields.
	Class string

	// Table fields. Cells holds the inline source of every cell, row 0 is
	// the header row. Align has one entry per column: "", "left", "center"
	// or "right".
	Cells [][]string
	Align []string
}

// HasStability reports whether a stability level was recorded on the token.
func (t *Token) HasStability() bool { return t.Stability != "" }

// IsProse reports whether the token carries prose that text rewriting may touch.
func (t *Token) IsProse() bool {
	switch t.Kind {
	case Heading, Paragraph, Text, HTML:
		return t.Text != ""
	default:
		return false
	}
}

// MapCells replaces every table cell with fn applied to it.
func (t *Token) MapCells(fn func(string) string) {
	for _, row := range t.Cells {
		for i, cell := range row {
			row[i] = fn(cell)
		}
	}
}

// String renders a compact, unambiguous representation used in diagnostics.
func (t *Token) String() string {
	var b strings.Builder
	b.WriteString(`{"type":"`)
	b.WriteString(t.Kind.String())
	b.WriteByte('"')
	if t.Kind == Heading {
		fmt.Fprintf(&b, `,"depth":%d`, t.Depth)
	}
	if t.Text != "" {
		fmt.Fprintf(&b, `,"text":%q`, t.Text)
	}
	if t.Stability != "" {
		fmt.Fprintf(&b, `,"stability":%q`, t.Stability)
	}
	b.WriteByte('}')
	return b.String()
}

// Reference is a link reference definition captured by the lexer. Reference
// definitions are not part of the block stream but inline content resolves
// against them at render time.
type Reference struct {
	Label       string
	Destination string
	Title       string
}

// Document is a lexed page: its tokens plus the reference definitions.
type Document struct {
	Tokens     []*Token
	References []Reference
}

// FirstHeading returns the first heading token, or nil.
func (d *Document) FirstHeading() *Token {
	for _, t := range d.Tokens {
		if t.Kind == Heading {
			return t
		}
	}
	return nil
}

// Headings returns the heading tokens in document order.
func (d *Document) Headings() []*Token {
	var out []*Token
	for _, t := range d.Tokens {
		if t.Kind == Heading {
			out = append(out, t)
		}
	}
	return out
}
