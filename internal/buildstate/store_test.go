package buildstate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Pages(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, ok, err := s.Page(ctx, "fs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RecordPage(ctx, PageRecord{Name: "fs", Fingerprint: "aaa", Output: "out/fs.html", BuildID: "b1"}))
	require.NoError(t, s.RecordPage(ctx, PageRecord{Name: "fs", Fingerprint: "bbb", Output: "out/fs.html", BuildID: "b2"}))

	rec, ok, err := s.Page(ctx, "fs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PageRecord{Name: "fs", Fingerprint: "bbb", Output: "out/fs.html", BuildID: "b2"}, *rec)

	require.NoError(t, s.ForgetPage(ctx, "fs"))
	_, ok, err = s.Page(ctx, "fs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Builds(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, ok, err := s.LastBuild(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	first, err := s.BeginBuild(ctx, start)
	require.NoError(t, err)
	second, err := s.BeginBuild(ctx, start.Add(time.Minute))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	sum := Summary{Rendered: 3, Skipped: 1, Failed: 1, Outcome: "partial"}
	require.NoError(t, s.FinishBuild(ctx, second, start.Add(2*time.Minute), sum))

	rec, ok, err := s.LastBuild(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, rec.ID)
	assert.Equal(t, sum, rec.Summary)
	assert.True(t, rec.StartedAt.Equal(start.Add(time.Minute)))
	assert.True(t, rec.FinishedAt.Equal(start.Add(2*time.Minute)))

	err = s.FinishBuild(ctx, "missing", time.Now(), sum)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordPage(ctx, PageRecord{Name: "fs", Fingerprint: "aaa", Output: "fs.html", BuildID: "b1"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	rec, ok, err := s.Page(ctx, "fs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "aaa", rec.Fingerprint)
}

func TestOpen_DirectoryIsNotADatabase(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryState))
}

func TestFingerprint(t *testing.T) {
	settings := Settings{ProductVersion: "v14.15.0", Template: "__CONTENT__"}

	a, err := Fingerprint(settings, []byte("# fs\n"))
	require.NoError(t, err)
	b, err := Fingerprint(settings, []byte("# fs\n"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)

	c, err := Fingerprint(settings, []byte("# fs!\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	settings.ProductVersion = "v14.16.0"
	d, err := Fingerprint(settings, []byte("# fs\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a, d)

	settings.AltDocsHost = "https://mirror.example.org"
	e, err := Fingerprint(settings, []byte("# fs\n"))
	require.NoError(t, err)
	assert.NotEqual(t, d, e)

	settings.Types = map[string]string{"Widget": "widget.html"}
	f, err := Fingerprint(settings, []byte("# fs\n"))
	require.NoError(t, err)
	assert.NotEqual(t, e, f)
}
