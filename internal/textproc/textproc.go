// Package textproc rewrites prose fragments: man page references become
// links to the matching manual page and inline type signatures become links
// to the type's documentation.
//
// Only prose is touched. A fragment is split on literal backticks and the
// odd-indexed parts (inline code) are passed through byte for byte, so
// "`open(2)`" and "`{string}`" are never linked. Code blocks never reach the
// transformer at all.
package textproc

import (
	"log/slog"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/apidoc/internal/logfields"
	"git.home.luguber.info/inful/apidoc/internal/token"
)

// TypeLinker renders a brace-delimited type signature as HTML links.
type TypeLinker interface {
	Link(signature string) (string, error)
}

// bsdOnlySyscalls appear in the docs but only exist on BSD and macOS.
var bsdOnlySyscalls = map[string]bool{"lchmod": true}

var (
	manPage       = regexp.MustCompile(`(?m)(^|\s)([a-z.]+)\((\d)([a-z]?)\)`)
	typeSignature = regexp.MustCompile(`[_$]?\{(?:\.\.\.)?[a-zA-Z][a-zA-Z0-9_.\[\]<>| ]*\}`)
	escapedArray  = regexp.MustCompile(`\\\[\]`)
)

// Transformer applies the prose rewrites. It holds no per-page state.
type Transformer struct {
	types  TypeLinker
	logger *slog.Logger
}

// New returns a Transformer. A nil logger uses slog.Default().
func New(types TypeLinker, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{types: types, logger: logger}
}

// PreprocessSource unescapes "\[]" to "[]" so array type suffixes written
// escaped in the markdown source reach the type linker intact.
func PreprocessSource(src string) string {
	return escapedArray.ReplaceAllString(src, "[]")
}

// Transform rewrites man page references and then type signatures.
func (t *Transformer) Transform(text string) string {
	if text == "" {
		return text
	}
	return t.linkTypes(LinkManPages(text))
}

// TransformDocument applies Transform to every prose token and table cell of doc. YAML
// metadata blocks are left alone; their change descriptions are transformed
// when the metadata is rendered.
func (t *Transformer) TransformDocument(doc *token.Document, isMetadata func(string) bool) {
	for _, tok := range doc.Tokens {
		if tok.Kind == token.Table {
			tok.MapCells(t.Transform)
			continue
		}
		if !tok.IsProse() {
			continue
		}
		if tok.Kind == token.HTML && isMetadata != nil && isMetadata(tok.Text) {
			continue
		}
		tok.Text = t.Transform(tok.Text)
	}
}

// LinkManPages links references such as "open(2)" or "lchmod(2)" in the prose
// parts of text.
func LinkManPages(text string) string {
	return token.MapProse(text, func(s string) string {
		return manPage.ReplaceAllStringFunc(s, manPageLink)
	})
}

func manPageLink(match string) string {
	m := manPage.FindStringSubmatch(match)
	beginning, name, number, suffix := m[1], m[2], m[3], m[4]
	display := "<code>" + name + "(" + number + suffix + ")</code>"
	if bsdOnlySyscalls[name] {
		return beginning + `<a href="https://www.freebsd.org/cgi/man.cgi?query=` + name +
			"&sektion=" + number + `">` + display + "</a>"
	}
	return beginning + `<a href="http://man7.org/linux/man-pages/man` + number + "/" +
		name + "." + number + suffix + `.html">` + display + "</a>"
}

// linkTypes replaces every unescaped type signature in the prose parts of
// text. If any signature fails to resolve the whole fragment is returned
// unchanged and the failure is logged.
func (t *Transformer) linkTypes(text string) string {
	if t.types == nil || strings.HasPrefix(text, "<pre>") {
		return text
	}
	var failed error
	out := token.MapProse(text, func(s string) string {
		return typeSignature.ReplaceAllStringFunc(s, func(sig string) string {
			if failed != nil || sig[0] == '_' || sig[0] == '$' {
				return sig
			}
			link, err := t.types.Link(sig)
			if err != nil {
				failed = err
				return sig
			}
			return link
		})
	})
	if failed != nil {
		t.logger.Warn("Type link skipped", logfields.Error(failed), slog.String("text", text))
		return text
	}
	return out
}
