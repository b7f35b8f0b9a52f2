// Package markdown adapts goldmark to the flat block token stream used by the
// page pipeline.
//
// Lex turns a markdown source into a token.Document, Renderer turns a
// (transformed) token.Document back into HTML. Inline content is kept as
// markdown source on the tokens and rendered on demand, resolving link
// references captured at lex time.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// newBlockMarkdown returns the full GFM converter used for lexing and for
// rendering standalone markdown (TOC lists, change descriptions, navigation).
func newBlockMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// newInlineMarkdown returns a converter that only knows paragraphs.
//
// Heading and paragraph text is rendered through it so that text such as
// "1. Foo" or "> bar" stays inline instead of opening a new block.
func newInlineMarkdown() goldmark.Markdown {
	p := parser.NewParser(
		parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
	)
	return goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}
