package typelink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

func TestResolver_Link(t *testing.T) {
	r, err := NewResolver(nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "primitive",
			in:   "{string}",
			want: `<a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Data_structures#String_type" class="type">&lt;string&gt;</a>`,
		},
		{
			name: "integer maps to Number",
			in:   "{integer}",
			want: `<a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Data_structures#Number_type" class="type">&lt;integer&gt;</a>`,
		},
		{
			name: "global object array",
			in:   "{Object[]}",
			want: `<a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/Object" class="type">&lt;Object[]&gt;</a>`,
		},
		{
			name: "union with custom type",
			in:   "{string|Buffer}",
			want: `<a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Data_structures#String_type" class="type">&lt;string&gt;</a>` +
				` | <a href="buffer.html#buffer_class_buffer" class="type">&lt;Buffer&gt;</a>`,
		},
		{
			name: "rest parameter",
			in:   "{...any}",
			want: `<a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Data_structures#Data_types" class="type">&lt;...any&gt;</a>`,
		},
		{
			name: "generic with union argument",
			in:   "{Promise<string|Buffer>|null}",
			want: `<a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/Promise" class="type">&lt;Promise&lt;string|Buffer&gt;&gt;</a>` +
				` | <a href="https://developer.mozilla.org/en-US/docs/Web/JavaScript/Data_structures#Null_type" class="type">&lt;null&gt;</a>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Link(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_LinkErrors(t *testing.T) {
	r, err := NewResolver(nil)
	require.NoError(t, err)

	_, err = r.Link("{NoSuchType}")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMarkdown))
	assert.Contains(t, err.Error(), "NoSuchType")

	_, err = r.Link("{string|}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty type slot")
}

func TestResolver_ExtraTypesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Buffer: https://example.org/buffer\nWidget: widget.html\n"), 0o600))

	extra, err := LoadTypes(path)
	require.NoError(t, err)
	r, err := NewResolver(extra)
	require.NoError(t, err)

	url, ok := r.URL("Buffer")
	require.True(t, ok)
	assert.Equal(t, "https://example.org/buffer", url)

	url, ok = r.URL("Widget[][]")
	require.True(t, ok)
	assert.Equal(t, "widget.html", url)

	table := r.Table()
	assert.Equal(t, "widget.html", table["Widget"])
	table["Widget"] = "changed"
	url, _ = r.URL("Widget")
	assert.Equal(t, "widget.html", url, "Table returns a copy")

	var none *Resolver
	assert.Nil(t, none.Table())
}

func TestLoadTypes_Missing(t *testing.T) {
	_, err := LoadTypes(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}
