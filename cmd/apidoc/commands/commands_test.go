package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("apidoc"),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Out: &out}
	err = kctx.Run(g, &cli)
	return out.String(), err
}

func project(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "doc"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc", "fs.md"),
		[]byte("# File system\n\n<!--introduced_in=v0.10.0-->\n\n## `fs.open()`\n\nOpens {string}.\n"), 0o600))
	cfgPath = filepath.Join(dir, "apidoc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: doc\noutput: out\nproduct_version: v14.0.0\nconcurrency: 2\n"), 0o600))
	return dir, cfgPath
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apidoc.yaml")

	out, err := run(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "input: doc/api")

	_, err = run(t, "--config", path, "init")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	_, err = run(t, "--config", path, "init", "--force")
	require.NoError(t, err)
}

func TestBuild(t *testing.T) {
	dir, cfgPath := project(t)

	out, err := run(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "1 rendered, 0 unchanged, 0 failed")

	html, err := os.ReadFile(filepath.Join(dir, "out", "fs.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `id="fsopen"`)
	_, err = os.Stat(filepath.Join(dir, "out", ".apidoc-state.db"))
	require.NoError(t, err)

	out, err = run(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "0 rendered, 1 unchanged, 0 failed")

	out, err = run(t, "--config", cfgPath, "build", "--force", "--output", filepath.Join(dir, "forced"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 rendered")
	_, err = os.Stat(filepath.Join(dir, "forced", "fs.html"))
	require.NoError(t, err)
}

func TestBuild_PageFailure(t *testing.T) {
	dir, cfgPath := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc", "bad.md"), []byte("# Bad\n\n> Stability: x\n"), 0o600))

	out, err := run(t, "--config", cfgPath, "build")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	assert.Contains(t, out, "1 rendered, 0 unchanged, 1 failed")
	assert.Contains(t, out, "  bad: ")
}

func TestBuild_MissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "build")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestTOC(t *testing.T) {
	dir, cfgPath := project(t)
	out, err := run(t, "--config", cfgPath, "toc", filepath.Join(dir, "doc", "fs.md"))
	require.NoError(t, err)
	assert.Contains(t, out, `<details id="toc" open><summary>Table of contents</summary>`)
	assert.Contains(t, out, `<a href="#fsopen"><code>fs.open()</code></a>`)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte(`<a id="x"></a><a href="b.html#y">b</a>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte(`<a id="y" href="a.html#x">a</a>`), 0o600))

	out, err := run(t, "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 pages, 2 links (0 external), 0 broken")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.html"), []byte(`<a href="a.html#missing">a</a>`), 0o600))
	out, err = run(t, "check", dir)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.Contains(t, out, "c: a.html#missing (missing anchor)")
}
