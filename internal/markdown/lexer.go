package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/apidoc/internal/token"
)

// Lex parses src and flattens its block structure into a token stream.
//
// GFM tables keep their cell source so prose rewriting reaches it. Other
// blocks without a token shape of their own are rendered immediately and
// carried as token.Raw.
func Lex(src string) (*token.Document, error) {
	source := []byte(src)
	md := newBlockMarkdown()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	l := &lexer{source: source, render: func(n gmast.Node) (string, error) {
		var buf bytes.Buffer
		if err := md.Renderer().Render(&buf, source, n); err != nil {
			return "", err
		}
		return buf.String(), nil
	}}
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		if err := l.block(c); err != nil {
			return nil, err
		}
	}

	doc := &token.Document{Tokens: l.tokens}
	for _, ref := range ctx.References() {
		doc.References = append(doc.References, token.Reference{
			Label:       string(ref.Label()),
			Destination: string(ref.Destination()),
			Title:       string(ref.Title()),
		})
	}
	return doc, nil
}

type lexer struct {
	source []byte
	tokens []*token.Token
	render func(gmast.Node) (string, error)
}

func (l *lexer) emit(t *token.Token) { l.tokens = append(l.tokens, t) }

func (l *lexer) block(n gmast.Node) error {
	switch node := n.(type) {
	case *gmast.Heading:
		l.emit(&token.Token{Kind: token.Heading, Depth: node.Level, Text: l.lines(node.Lines())})
	case *gmast.Paragraph:
		l.emit(&token.Token{Kind: token.Paragraph, Text: l.lines(node.Lines())})
	case *gmast.TextBlock:
		l.emit(&token.Token{Kind: token.Text, Text: l.lines(node.Lines())})
	case *gmast.Blockquote:
		l.emit(&token.Token{Kind: token.BlockquoteStart})
		if err := l.children(node); err != nil {
			return err
		}
		l.emit(&token.Token{Kind: token.BlockquoteEnd})
	case *gmast.List:
		l.emit(&token.Token{
			Kind:    token.ListStart,
			Ordered: node.IsOrdered(),
			Start:   node.Start,
			Loose:   !node.IsTight,
		})
		if err := l.children(node); err != nil {
			return err
		}
		l.emit(&token.Token{Kind: token.ListEnd, Ordered: node.IsOrdered()})
	case *gmast.ListItem:
		l.emit(&token.Token{Kind: token.ListItemStart})
		if err := l.children(node); err != nil {
			return err
		}
		l.emit(&token.Token{Kind: token.ListItemEnd})
	case *gmast.FencedCodeBlock:
		l.emit(&token.Token{
			Kind: token.Code,
			Lang: string(node.Language(l.source)),
			Text: strings.TrimSuffix(l.rawLines(node.Lines()), "\n"),
		})
	case *gmast.CodeBlock:
		l.emit(&token.Token{Kind: token.Code, Text: strings.TrimSuffix(l.rawLines(node.Lines()), "\n")})
	case *gmast.HTMLBlock:
		raw := l.rawLines(node.Lines())
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(l.source))
		}
		l.emit(&token.Token{Kind: token.HTML, Text: strings.TrimRight(raw, "\n")})
	case *gmast.ThematicBreak:
		l.emit(&token.Token{Kind: token.HR})
	case *extast.Table:
		l.emit(l.table(node))
	default:
		html, err := l.render(n)
		if err != nil {
			return err
		}
		l.emit(&token.Token{Kind: token.Raw, Text: html})
	}
	return nil
}

func (l *lexer) children(n gmast.Node) error {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := l.block(c); err != nil {
			return err
		}
	}
	return nil
}

func (l *lexer) table(n *extast.Table) *token.Token {
	t := &token.Token{Kind: token.Table}
	for _, a := range n.Alignments {
		align := ""
		if a != extast.AlignNone {
			align = a.String()
		}
		t.Align = append(t.Align, align)
	}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			// An escaped pipe inside a cell is a literal pipe.
			cells = append(cells, strings.ReplaceAll(l.lines(c.Lines()), `\|`, "|"))
		}
		t.Cells = append(t.Cells, cells)
	}
	return t
}

// lines joins the inline source of a leaf block without its trailing newline.
func (l *lexer) lines(segs *text.Segments) string {
	return strings.TrimRight(l.rawLines(segs), "\n")
}

func (l *lexer) rawLines(segs *text.Segments) string {
	var b strings.Builder
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(l.source))
	}
	return b.String()
}
