package buildstate

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// Settings captures every site-wide input that changes the rendered output
// of a page besides its own source.
type Settings struct {
	ProductVersion string            `yaml:"product_version"`
	Template       string            `yaml:"template"`
	GTOC           string            `yaml:"gtoc"`
	Releases       []string          `yaml:"releases,omitempty"`
	APILinks       map[string]string `yaml:"api_links,omitempty"`
	LinkOverrides  map[string]string `yaml:"link_overrides,omitempty"`
	EditURLBase    string            `yaml:"edit_url_base"`
	AltDocsHost    string            `yaml:"alt_docs_host"`
	Types          map[string]string `yaml:"types,omitempty"`
}

// Fingerprint hashes the site settings together with a page source. Two
// builds of the same source under the same settings produce the same value.
func Fingerprint(settings Settings, source []byte) (string, error) {
	serialized, err := yaml.Marshal(settings)
	if err != nil {
		return "", ferrors.StateError("serialize build settings").WithCause(err).Build()
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), string(source)), nil
}
