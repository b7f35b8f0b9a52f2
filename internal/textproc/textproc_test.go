package textproc

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/apidoc/internal/token"
)

// fakeTypes links any single-word signature except {Bad}.
type fakeTypes struct{}

func (fakeTypes) Link(sig string) (string, error) {
	name := strings.Trim(sig, "{}")
	if name == "Bad" {
		return "", errors.New("unrecognized type: Bad")
	}
	return `<a class="type">&lt;` + name + `&gt;</a>`, nil
}

func TestLinkManPages(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "linux",
			in:   "See open(2) for details.",
			want: `See <a href="http://man7.org/linux/man-pages/man2/open.2.html"><code>open(2)</code></a> for details.`,
		},
		{
			name: "section letter",
			in:   "see dlopen(3p)",
			want: `see <a href="http://man7.org/linux/man-pages/man3/dlopen.3p.html"><code>dlopen(3p)</code></a>`,
		},
		{
			name: "bsd only",
			in:   "lchmod(2) only exists on macOS",
			want: `<a href="https://www.freebsd.org/cgi/man.cgi?query=lchmod&sektion=2"><code>lchmod(2)</code></a> only exists on macOS`,
		},
		{
			name: "dotted name",
			in:   "fs.open(2)x and foo(bar)",
			want: `<a href="http://man7.org/linux/man-pages/man2/fs.open.2.html"><code>fs.open(2)</code></a>x and foo(bar)`,
		},
		{
			name: "not inside code",
			in:   "call `open(2)` directly",
			want: "call `open(2)` directly",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkManPages(tt.in))
		})
	}
}

func TestTransform_TypeLinks(t *testing.T) {
	tr := New(fakeTypes{}, nil)

	assert.Equal(t,
		"`path` <a class=\"type\">&lt;string&gt;</a> or <a class=\"type\">&lt;Buffer&gt;</a>",
		tr.Transform("`path` {string} or {Buffer}"))

	// Inside inline code and escaped signatures are untouched.
	assert.Equal(t, "use `{string}` and _{Buffer}", tr.Transform("use `{string}` and _{Buffer}"))
	assert.Equal(t, "<pre>{string}</pre>", tr.Transform("<pre>{string}</pre>"))
	assert.Equal(t, "", tr.Transform(""))

	assert.Equal(t,
		"<a class=\"type\">&lt;Promise<string>&gt;</a> and <a class=\"type\">&lt;...any&gt;</a>",
		tr.Transform("{Promise<string>} and {...any}"))
}

func TestTransform_TypeLinkFailureKeepsText(t *testing.T) {
	var logs bytes.Buffer
	tr := New(fakeTypes{}, slog.New(slog.NewTextHandler(&logs, nil)))

	in := "{string} and {Bad}"
	assert.Equal(t, in, tr.Transform(in))
	assert.Contains(t, logs.String(), "unrecognized type: Bad")
}

func TestPreprocessSource(t *testing.T) {
	assert.Equal(t, "{string[]}", PreprocessSource(`{string\[]}`))
}

func TestTransformDocument_SkipsCodeAndMetadata(t *testing.T) {
	doc := &token.Document{Tokens: []*token.Token{
		{Kind: token.Paragraph, Text: "see open(2)"},
		{Kind: token.Code, Text: "open(2)"},
		{Kind: token.HTML, Text: "<!-- YAML\nadded: v1.0.0\n-->"},
		{Kind: token.Table, Cells: [][]string{{"Call"}, {"see open(2)"}, {"`open(2)`"}}},
	}}
	isMeta := func(s string) bool { return strings.HasPrefix(s, "<!-- YAML") }

	New(fakeTypes{}, nil).TransformDocument(doc, isMeta)

	assert.Contains(t, doc.Tokens[0].Text, "man7.org")
	assert.Equal(t, "open(2)", doc.Tokens[1].Text)
	assert.Equal(t, "<!-- YAML\nadded: v1.0.0\n-->", doc.Tokens[2].Text)
	assert.Contains(t, doc.Tokens[3].Cells[1][0], "man7.org")
	assert.Equal(t, "`open(2)`", doc.Tokens[3].Cells[2][0])
}
