// Package versioning resolves which release lines of the documentation
// contain a page and renders the "Other versions" picker for it.
package versioning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VersionEntry is a release line that has published documentation.
type VersionEntry struct {
	// Num is "major.minor" or a line such as "14.x".
	Num   string `json:"num" yaml:"num"`
	IsLTS bool   `json:"lts" yaml:"lts"`
}

// Introduced is the release a page first appeared in.
type Introduced struct {
	Major int
	Minor int
}

func (i Introduced) String() string { return fmt.Sprintf("v%d.%d", i.Major, i.Minor) }

// LoadReleases reads a YAML list of release lines:
//
//	- num: "14.x"
//	  lts: true
//	- num: "13.x"
func LoadReleases(path string) ([]VersionEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read releases: %w", err)
	}
	var out []VersionEntry
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode releases %s: %w", path, err)
	}
	for i, v := range out {
		if v.Num == "" {
			return nil, fmt.Errorf("decode releases %s: entry %d has no num", path, i)
		}
	}
	return out, nil
}
