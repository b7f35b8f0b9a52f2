package versioning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntroducedIn(t *testing.T) {
	got, ok := ParseIntroducedIn("# fs\n\n<!--introduced_in=v0.10.0-->\n")
	require.True(t, ok)
	assert.Equal(t, Introduced{Major: 0, Minor: 10}, got)

	got, ok = ParseIntroducedIn("<!-- introduced_in = v12.3.1 -->")
	require.True(t, ok)
	assert.Equal(t, "v12.3", got.String())

	_, ok = ParseIntroducedIn("# no marker")
	assert.False(t, ok)
}

func TestContainedIn(t *testing.T) {
	created := Introduced{Major: 10, Minor: 5}
	tests := []struct {
		num  string
		want bool
	}{
		{"9.x", false},
		{"11.x", true},
		{"10.x", true},
		{"10.4", false},
		{"10.5", true},
		{"10.6", true},
		{"10", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, created.ContainedIn(VersionEntry{Num: tt.num}), tt.num)
	}
}

func TestAltDocs(t *testing.T) {
	releases := []VersionEntry{
		{Num: "14.x", IsLTS: true},
		{Num: "8.x"},
		{Num: "12.x", IsLTS: true},
	}
	out := AltDocs("fs", Introduced{Major: 10, Minor: 0}, releases, "")

	assert.Equal(t, `
    <li class="picker-header">
      <a href="#">
        <span class="collapsed-arrow">&#x25ba;</span><span class="expanded-arrow">&#x25bc;</span>
        Other versions
      </a>
      <div class="picker"><ol id="alt-docs">`+
		`<li><a href="https://nodejs.org/docs/latest-v14.x/api/fs.html">14.x <b>LTS</b></a></li>`+"\n"+
		`<li><a href="https://nodejs.org/docs/latest-v12.x/api/fs.html">12.x <b>LTS</b></a></li>`+
		`</ol></div>
    </li>
  `, out)
}

func TestAltDocs_EmptyWhenNoRelease(t *testing.T) {
	assert.Equal(t, "", AltDocs("fs", Introduced{Major: 20}, []VersionEntry{{Num: "14.x"}}, "https://example.org"))
	assert.Equal(t, "", AltDocs("fs", Introduced{Major: 1}, nil, ""))
}

func TestLoadReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "releases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- num: \"14.x\"\n  lts: true\n- num: \"13.x\"\n"), 0o600))

	got, err := LoadReleases(path)
	require.NoError(t, err)
	assert.Equal(t, []VersionEntry{{Num: "14.x", IsLTS: true}, {Num: "13.x"}}, got)

	require.NoError(t, os.WriteFile(path, []byte("- lts: true\n"), 0o600))
	_, err = LoadReleases(path)
	require.Error(t, err)
}
