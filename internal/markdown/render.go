package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"git.home.luguber.info/inful/apidoc/internal/token"
)

// Renderer converts token streams and standalone markdown to HTML.
// A Renderer is safe for concurrent use.
type Renderer struct {
	block  goldmark.Markdown
	inline goldmark.Markdown
}

// NewRenderer returns a Renderer with GFM and raw HTML passthrough enabled.
func NewRenderer() *Renderer {
	return &Renderer{block: newBlockMarkdown(), inline: newInlineMarkdown()}
}

// RenderMarkdown converts a standalone markdown document to HTML.
func (r *Renderer) RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.block.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Inline renders a fragment of inline markdown without a paragraph wrapper.
func (r *Renderer) Inline(src string, refs []token.Reference) (string, error) {
	if src == "" {
		return "", nil
	}
	ctx := parser.NewContext()
	for _, ref := range refs {
		ctx.AddReference(parser.NewReference([]byte(ref.Label), []byte(ref.Destination), []byte(ref.Title)))
	}
	var buf bytes.Buffer
	if err := r.inline.Convert([]byte(src), &buf, parser.WithContext(ctx)); err != nil {
		return "", err
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	out = strings.TrimPrefix(out, "<p>")
	return strings.TrimSuffix(out, "</p>"), nil
}

// Render converts a token stream to HTML.
func (r *Renderer) Render(doc *token.Document) (string, error) {
	var b strings.Builder
	for i, t := range doc.Tokens {
		if err := r.renderToken(&b, doc, i, t); err != nil {
			return "", fmt.Errorf("render %s: %w", t.Kind, err)
		}
	}
	return b.String(), nil
}

func (r *Renderer) renderToken(b *strings.Builder, doc *token.Document, i int, t *token.Token) error {
	inline := func() (string, error) { return r.Inline(t.Text, doc.References) }

	switch t.Kind {
	case token.Heading:
		s, err := inline()
		if err != nil {
			return err
		}
		if t.AnchorOverride != "" {
			fmt.Fprintf(b, "<h%d id=\"%s\">", t.Depth, t.AnchorOverride)
		} else {
			fmt.Fprintf(b, "<h%d>", t.Depth)
		}
		fmt.Fprintf(b, "%s%s</h%d>\n", s, strings.Join(t.Anchors, ""), t.Depth)
	case token.Paragraph:
		s, err := inline()
		if err != nil {
			return err
		}
		b.WriteString("<p>" + s + "</p>\n")
	case token.Text:
		s, err := inline()
		if err != nil {
			return err
		}
		b.WriteString(s)
		// A tight item's text is followed by a newline only when another
		// block (usually a nested list) follows inside the same item.
		if i+1 < len(doc.Tokens) && doc.Tokens[i+1].Kind != token.ListItemEnd {
			b.WriteByte('\n')
		}
	case token.Div:
		s, err := inline()
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "<div class=\"%s\">%s</div>\n", t.Class, s)
	case token.BlockquoteStart:
		b.WriteString("<blockquote>\n")
	case token.BlockquoteEnd:
		b.WriteString("</blockquote>\n")
	case token.ListStart:
		switch {
		case !t.Ordered:
			b.WriteString("<ul>\n")
		case t.Start != 1:
			fmt.Fprintf(b, "<ol start=\"%d\">\n", t.Start)
		default:
			b.WriteString("<ol>\n")
		}
	case token.ListEnd:
		if t.Ordered {
			b.WriteString("</ol>\n")
		} else {
			b.WriteString("</ul>\n")
		}
	case token.ListItemStart:
		b.WriteString("<li>")
		if i+1 < len(doc.Tokens) && doc.Tokens[i+1].Kind != token.Text {
			b.WriteByte('\n')
		}
	case token.ListItemEnd:
		b.WriteString("</li>\n")
	case token.Code:
		if t.Lang != "" {
			fmt.Fprintf(b, "<pre><code class=\"language-%s\">", html.EscapeString(t.Lang))
		} else {
			b.WriteString("<pre><code>")
		}
		b.WriteString(html.EscapeString(t.Text))
		if t.Text != "" {
			b.WriteByte('\n')
		}
		b.WriteString("</code></pre>\n")
	case token.HTML:
		b.WriteString(t.Text)
		b.WriteByte('\n')
	case token.HR:
		b.WriteString("<hr>\n")
	case token.Raw:
		b.WriteString(t.Text)
	case token.Table:
		return r.renderTable(b, doc, t)
	default:
		return fmt.Errorf("unsupported token kind %s", t.Kind)
	}
	return nil
}

// renderTable writes a table the way goldmark's GFM table renderer does, with
// alignment as an inline style.
func (r *Renderer) renderTable(b *strings.Builder, doc *token.Document, t *token.Token) error {
	b.WriteString("<table>\n")
	for i, row := range t.Cells {
		tag := "td"
		switch i {
		case 0:
			tag = "th"
			b.WriteString("<thead>\n")
		case 1:
			b.WriteString("<tbody>\n")
		}
		b.WriteString("<tr>\n")
		for j, cell := range row {
			s, err := r.Inline(cell, doc.References)
			if err != nil {
				return err
			}
			b.WriteString("<" + tag)
			if j < len(t.Align) && t.Align[j] != "" {
				fmt.Fprintf(b, ` style="text-align:%s"`, t.Align[j])
			}
			fmt.Fprintf(b, ">%s</%s>\n", s, tag)
		}
		b.WriteString("</tr>\n")
		if i == 0 {
			b.WriteString("</thead>\n")
		}
	}
	if len(t.Cells) > 1 {
		b.WriteString("</tbody>\n")
	}
	b.WriteString("</table>\n")
	return nil
}
