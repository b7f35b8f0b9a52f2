package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "heading", Heading.String())
	assert.Equal(t, "blockquote_start", BlockquoteStart.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestTokenString_IncludesDepthAndText(t *testing.T) {
	tok := &Token{Kind: Heading, Depth: 4, Text: "Class: `fs.Dir`"}
	assert.Equal(t, "{\"type\":\"heading\",\"depth\":4,\"text\":\"Class: `fs.Dir`\"}", tok.String())
}

func TestIsProse(t *testing.T) {
	cases := []struct {
		tok  Token
		want bool
	}{
		{Token{Kind: Paragraph, Text: "x"}, true},
		{Token{Kind: Heading, Text: "x"}, true},
		{Token{Kind: Text, Text: "x"}, true},
		{Token{Kind: HTML, Text: "<b>"}, true},
		{Token{Kind: Code, Text: "open(2)"}, false},
		{Token{Kind: Raw, Text: "<table>"}, false},
		{Token{Kind: Paragraph}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.tok.IsProse(), tc.tok.String())
	}
}

func TestDocumentHeadings(t *testing.T) {
	doc := &Document{Tokens: []*Token{
		{Kind: Paragraph, Text: "intro"},
		{Kind: Heading, Depth: 1, Text: "File system"},
		{Kind: Heading, Depth: 2, Text: "Class: fs.Dir"},
	}}
	require.NotNil(t, doc.FirstHeading())
	assert.Equal(t, "File system", doc.FirstHeading().Text)
	assert.Len(t, doc.Headings(), 2)

	assert.Nil(t, (&Document{}).FirstHeading())
}

func TestMapProse_SkipsInlineCode(t *testing.T) {
	upper := func(s string) string { return "[" + s + "]" }

	assert.Equal(t, "[plain]", MapProse("plain", upper))
	assert.Equal(t, "[a ]`code`[ b]", MapProse("a `code` b", upper))
	assert.Equal(t, "[]`x`[]", MapProse("`x`", upper))
}
