package build

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidoc/internal/buildstate"
	"git.home.luguber.info/inful/apidoc/internal/config"
	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
	"git.home.luguber.info/inful/apidoc/internal/markdown"
	"git.home.luguber.info/inful/apidoc/internal/notify"
	"git.home.luguber.info/inful/apidoc/internal/site"
	"git.home.luguber.info/inful/apidoc/internal/typelink"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []notify.PageEvent
}

func (c *capturePublisher) PublishPage(_ context.Context, ev notify.PageEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func (c *capturePublisher) byPage() map[string]notify.PageEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]notify.PageEvent{}
	for _, ev := range c.events {
		out[ev.Page] = ev
	}
	return out
}

type fixture struct {
	cfg   *config.Config
	site  *site.Site
	md    *markdown.Renderer
	state *buildstate.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, "doc")
	require.NoError(t, os.Mkdir(input, 0o750))
	write(t, filepath.Join(input, "fs.md"), "# File system\n\n<!--introduced_in=v0.10.0-->\n\n## `fs.open()`\n\nOpens.\n")
	write(t, filepath.Join(input, "util.md"), "# Util\n\nSee [fs](fs.md).\n")
	write(t, filepath.Join(input, "broken.md"), "# Broken\n\n### Too deep\n")
	write(t, filepath.Join(input, "notes.txt"), "not a page")

	types, err := typelink.NewResolver(nil)
	require.NoError(t, err)
	state, err := buildstate.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = state.Close() })

	return &fixture{
		cfg: &config.Config{Input: input, Output: filepath.Join(root, "out"), Concurrency: 2},
		site: &site.Site{
			Template:       "<title>__SECTION__</title>__CONTENT__",
			ProductVersion: "v14.0.0",
			AltDocsHost:    "https://nodejs.org",
			EditURLBase:    "https://example.org/edit/",
			APILinks:       map[string]string{},
			LinksMapper:    markdown.LinkMapper{},
			Types:          types,
		},
		md:    markdown.NewRenderer(),
		state: state,
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func statuses(r *Report) map[string]PageStatus {
	out := map[string]PageStatus{}
	for _, p := range r.Pages {
		out[p.Name] = p.Status
	}
	return out
}

func TestBuild_RendersPagesAndReportsFailures(t *testing.T) {
	f := newFixture(t)
	pub := &capturePublisher{}
	b := New(f.cfg, f.site, f.md, WithState(f.state), WithPublisher(pub))

	report, err := b.Build(context.Background(), false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))

	require.Len(t, report.Pages, 3)
	assert.Equal(t, []string{"broken", "fs", "util"}, []string{report.Pages[0].Name, report.Pages[1].Name, report.Pages[2].Name})
	assert.Equal(t, 2, report.Rendered)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"broken"}, report.FailedPages())
	assert.True(t, ferrors.HasCategory(report.Pages[0].Err, ferrors.CategoryHeading))
	assert.NotEmpty(t, report.BuildID)

	html, err := os.ReadFile(filepath.Join(f.cfg.Output, "fs.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>File system</title>")
	assert.Contains(t, string(html), `<h2>File system<span><a class="mark" href="#file-system" id="file-system">#</a></span>`)

	util, err := os.ReadFile(filepath.Join(f.cfg.Output, "util.html"))
	require.NoError(t, err)
	assert.Contains(t, string(util), `<a href="fs.html">fs</a>`)

	toc, err := os.ReadFile(filepath.Join(f.cfg.Output, "fs.toc.html"))
	require.NoError(t, err)
	assert.Contains(t, string(toc), `<a href="#fsopen">`)

	_, err = os.Stat(filepath.Join(f.cfg.Output, "broken.html"))
	assert.True(t, os.IsNotExist(err))

	events := pub.byPage()
	assert.Equal(t, notify.StatusRendered, events["fs"].Status)
	assert.Equal(t, filepath.Join(f.cfg.Output, "fs.html"), events["fs"].Output)
	assert.Equal(t, notify.StatusFailed, events["broken"].Status)
	assert.Contains(t, events["broken"].Error, "inappropriate heading level")
	assert.Equal(t, report.BuildID, events["util"].BuildID)

	last, ok, err := f.state.LastBuild(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report.BuildID, last.ID)
	assert.Equal(t, "partial", last.Outcome)
}

func TestBuild_LogsPageFailuresWithCategory(t *testing.T) {
	f := newFixture(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(f.cfg, f.site, f.md, WithLogger(logger)).Build(context.Background(), false)
	require.Error(t, err)

	out := logs.String()
	assert.Contains(t, out, `level=WARN msg="Page failed"`)
	assert.Contains(t, out, "category=heading")
	assert.Contains(t, out, "page=broken")
}

func TestBuild_Incremental(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.cfg.Input, "broken.md")))
	b := New(f.cfg, f.site, f.md, WithState(f.state))
	ctx := context.Background()

	first, err := b.Build(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Rendered)

	second, err := b.Build(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]PageStatus{"fs": PageSkipped, "util": PageSkipped}, statuses(second))
	assert.NotEqual(t, first.BuildID, second.BuildID)

	write(t, filepath.Join(f.cfg.Input, "util.md"), "# Util\n\nChanged.\n")
	third, err := b.Build(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]PageStatus{"fs": PageSkipped, "util": PageRendered}, statuses(third))

	require.NoError(t, os.Remove(filepath.Join(f.cfg.Output, "fs.html")))
	fourth, err := b.Build(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, PageRendered, statuses(fourth)["fs"])

	forced, err := b.Build(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, forced.Rendered)

	// Site settings are part of the fingerprint.
	f.site.ProductVersion = "v15.0.0"
	changed, err := New(f.cfg, f.site, f.md, WithState(f.state)).Build(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, changed.Rendered)
}

func TestBuild_SiteChangesInvalidateState(t *testing.T) {
	tests := []struct {
		name   string
		change func(t *testing.T, s *site.Site)
	}{
		{"alt docs host", func(_ *testing.T, s *site.Site) { s.AltDocsHost = "https://mirror.example.org" }},
		{"type table", func(t *testing.T, s *site.Site) {
			types, err := typelink.NewResolver(map[string]string{"Widget": "widget.html"})
			require.NoError(t, err)
			s.Types = types
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, os.Remove(filepath.Join(f.cfg.Input, "broken.md")))
			ctx := context.Background()

			_, err := New(f.cfg, f.site, f.md, WithState(f.state)).Build(ctx, false)
			require.NoError(t, err)
			same, err := New(f.cfg, f.site, f.md, WithState(f.state)).Build(ctx, false)
			require.NoError(t, err)
			assert.Equal(t, 2, same.Skipped)

			tt.change(t, f.site)
			changed, err := New(f.cfg, f.site, f.md, WithState(f.state)).Build(ctx, false)
			require.NoError(t, err)
			assert.Equal(t, 2, changed.Rendered)
		})
	}
}

func TestBuild_WithoutStateAlwaysRenders(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.cfg.Input, "broken.md")))
	out := filepath.Join(t.TempDir(), "elsewhere")
	b := New(f.cfg, f.site, f.md, WithOutput(out))

	for range 2 {
		report, err := b.Build(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Rendered)
	}
	_, err := os.Stat(filepath.Join(out, "fs.html"))
	require.NoError(t, err)
}

func TestBuild_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(f.cfg, f.site, f.md).Build(ctx, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Rendered)
}

func TestBuild_MissingInput(t *testing.T) {
	f := newFixture(t)
	f.cfg.Input = filepath.Join(t.TempDir(), "missing")
	_, err := New(f.cfg, f.site, f.md).Build(context.Background(), false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zlib.md", "assert.md", ".hidden.md", "README.txt"} {
		write(t, filepath.Join(dir, name), "x")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o750))

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "assert.md"), filepath.Join(dir, "zlib.md")}, files)
}
