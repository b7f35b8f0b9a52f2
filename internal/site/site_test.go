package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidoc/internal/config"
	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/versioning"
)

func TestPageID(t *testing.T) {
	assert.Equal(t, "fs", PageID("fs"))
	assert.Equal(t, "child_process", PageID("child_process"))
	assert.Equal(t, "worker-threads", PageID("worker.threads"))
}

func TestBuildNav(t *testing.T) {
	index := "<!--\nintroduced_in=v0.10.0\n-->\n\n* [About these docs](documentation.md)\n* [File system](fs.md)\n* [Anchor](fs.md#fs_stats)\n"

	html, err := BuildNav(index, markdown.NewRenderer())
	require.NoError(t, err)

	assert.NotContains(t, html, "introduced_in")
	assert.Contains(t, html, `<a href="documentation.html" class="nav-documentation">About these docs</a>`)
	assert.Contains(t, html, `<a href="fs.html" class="nav-fs">File system</a>`)
	// Links with a fragment keep pointing at the markdown file.
	assert.Contains(t, html, `<a href="fs.md#fs_stats" class="nav-fs-md-fs_stats">`)
}

func TestHighlightNav(t *testing.T) {
	gtoc := `<a href="fs.html" class="nav-fs">fs</a><a href="fs.html" class="nav-fs">again</a>`
	assert.Equal(t,
		`<a href="fs.html" class="nav-fs active">fs</a><a href="fs.html" class="nav-fs">again</a>`,
		HighlightNav(gtoc, "fs"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "api")
	require.NoError(t, os.MkdirAll(input, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "index.md"), []byte("* [fs](fs.md)\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apilinks.json"), []byte(`{"fs.Dir":"https://example.org/dir.js#L1"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapper.json"), []byte(`{"fs":{"buffer":"buffer.html"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "releases.yaml"), []byte("- num: \"14.x\"\n  lts: true\n"), 0o600))

	cfg := &config.Config{
		Input:          input,
		Nav:            filepath.Join(input, "index.md"),
		ProductVersion: "v14.15.0",
		ReleasesFile:   filepath.Join(dir, "releases.yaml"),
		APILinks:       filepath.Join(dir, "apilinks.json"),
		LinksMapper:    filepath.Join(dir, "mapper.json"),
		AltDocsHost:    versioning.DefaultHost,
		EditURLBase:    "https://github.com/nodejs/node/edit/{branch}/doc/api/",
		EditBranch:     "v14.x",
	}

	s, err := Load(cfg, markdown.NewRenderer(), nil)
	require.NoError(t, err)

	assert.Contains(t, s.Template, "__CONTENT__")
	assert.Contains(t, s.GTOC, `class="nav-fs"`)
	assert.Equal(t, "https://example.org/dir.js#L1", s.APILinks["fs.Dir"])
	assert.Equal(t, "buffer.html", s.LinksMapper["fs"]["buffer"])
	assert.Equal(t, []versioning.VersionEntry{{Num: "14.x", IsLTS: true}}, s.Releases)
	assert.Equal(t, "https://github.com/nodejs/node/edit/v14.x/doc/api/", s.EditURLBase)
	require.NotNil(t, s.Types)
}

func TestLoad_DetectsBranchFallback(t *testing.T) {
	cfg := &config.Config{
		Input:       t.TempDir(),
		EditURLBase: "https://example.org/edit/{branch}/",
	}
	s, err := Load(cfg, markdown.NewRenderer(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/edit/main/", s.EditURLBase)
	assert.Empty(t, s.GTOC)
}

func TestLoad_BadLinkTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apilinks.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := Load(&config.Config{Input: t.TempDir(), APILinks: path}, markdown.NewRenderer(), nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_UnreadableTemplate(t *testing.T) {
	_, err := Load(&config.Config{Input: t.TempDir(), Template: t.TempDir()}, markdown.NewRenderer(), nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, ce.IsFatal())
}
