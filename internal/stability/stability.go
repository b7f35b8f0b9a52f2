// Package stability detects stability notices ("> Stability: 2 - Stable"),
// records their level on the governing heading and restyles them as
// api_stability blocks.
package stability

import (
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/token"
)

const (
	marker        = "Stability:"
	indexHref     = "documentation.html#stability-index"
	indexHeading  = "Stability index"
	indexPageName = "documentation"

	// maxDistance is the largest number of tokens allowed between a heading
	// and a stability paragraph that annotates it.
	maxDistance = 3
)

var notice = regexp.MustCompile(`(.*:)\s*(\d)((?s:.*))`)

type state int

const (
	stateNone state = iota
	stateMaybeStability
)

// Annotator is a single forward pass over one page's tokens. Create one per
// page render.
type Annotator struct {
	filename     string
	state        state
	heading      *token.Token
	sinceHeading int
}

// NewAnnotator returns an Annotator for the page named filename.
func NewAnnotator(filename string) *Annotator {
	return &Annotator{filename: filename, sinceHeading: -1}
}

// Observe advances the pass by one token, rewriting it in place when it is a
// stability notice.
func (a *Annotator) Observe(t *token.Token) error {
	if t.Kind == token.Heading {
		a.sinceHeading = 0
		a.heading = t
	} else {
		a.sinceHeading++
	}

	switch t.Kind {
	case token.BlockquoteStart:
		a.state = stateMaybeStability
	case token.BlockquoteEnd:
		a.state = stateNone
	case token.Paragraph:
		if a.state != stateMaybeStability {
			return nil
		}
		if !strings.Contains(t.Text, marker) {
			a.state = stateNone
			return nil
		}
		return a.annotate(t)
	}
	return nil
}

// Annotate runs a fresh Annotator over every token of doc.
func Annotate(doc *token.Document, filename string) error {
	a := NewAnnotator(filename)
	for _, t := range doc.Tokens {
		if err := a.Observe(t); err != nil {
			return err
		}
	}
	return nil
}

func (a *Annotator) annotate(t *token.Token) error {
	m := notice.FindStringSubmatch(t.Text)
	if m == nil {
		return ferrors.StabilityError("malformed stability notice").
			WithContext("page", a.filename).
			WithContext("token", t.String()).
			Build()
	}
	prefix, level, explication := m[1], m[2], m[3]

	// A notice inside the stability index section itself does not link to it.
	noLinking := strings.Contains(a.filename, indexPageName) &&
		a.heading != nil && a.heading.Text == indexHeading

	if a.heading != nil && a.sinceHeading <= maxDistance {
		a.heading.Stability = level
		a.heading = nil
	}

	var b strings.Builder
	if !noLinking {
		b.WriteString(`<a href="` + indexHref + `">`)
	}
	b.WriteString(prefix + " " + level)
	if !noLinking {
		b.WriteString("</a>")
	}
	b.WriteString(explication)

	t.Kind = token.Div
	t.Class = "api_stability api_stability_" + level
	t.Text = strings.ReplaceAll(b.String(), "\n", " ")
	return nil
}
