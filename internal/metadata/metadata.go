// Package metadata parses the YAML comment blocks that annotate API entries
// and renders them as an inline version summary or a collapsible history
// table.
//
//	<!-- YAML
//	added: v0.1.90
//	changes:
//	  - version: v10.0.0
//	    pr-url: https://github.com/nodejs/node/pull/12562
//	    description: The `callback` parameter is no longer optional.
//	-->
package metadata

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

const (
	blockPrefix = "<!-- YAML"
	blockSuffix = "-->"
)

// ChangeKind classifies a history entry.
type ChangeKind int

const (
	KindChange ChangeKind = iota
	KindAdded
	KindDeprecated
	KindRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindDeprecated:
		return "deprecated"
	case KindRemoved:
		return "removed"
	default:
		return "change"
	}
}

// VersionList decodes either a single version or a list of versions.
type VersionList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *VersionList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*v = nil
			return nil
		}
		*v = VersionList{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(VersionList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: version must be a scalar", item.Line)
			}
			out = append(out, item.Value)
		}
		*v = out
		return nil
	default:
		return fmt.Errorf("line %d: expected version or list of versions", node.Line)
	}
}

// ChangeEntry is one row of a history table.
type ChangeEntry struct {
	Versions    []string
	Kind        ChangeKind
	PRURL       string
	Description string
}

// Record is the parsed content of one metadata block.
type Record struct {
	Changes     []ChangeEntry
	Added       []string
	Deprecated  []string
	Removed     []string
	NapiVersion []string
}

type rawChange struct {
	Version     VersionList `yaml:"version"`
	PRURL       string      `yaml:"pr-url"`
	Description string      `yaml:"description"`
}

type rawRecord struct {
	Added       VersionList `yaml:"added"`
	Deprecated  VersionList `yaml:"deprecated"`
	Removed     VersionList `yaml:"removed"`
	NapiVersion VersionList `yaml:"napiVersion"`
	Changes     []rawChange `yaml:"changes"`
}

// IsBlock reports whether an HTML block is a metadata block.
func IsBlock(text string) bool {
	return strings.HasPrefix(text, blockPrefix)
}

// Parse decodes a metadata block including its comment delimiters.
func Parse(text string) (*Record, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, blockPrefix)
	body = strings.TrimSuffix(body, blockSuffix)

	var raw rawRecord
	if err := yaml.Unmarshal([]byte(body), &raw); err != nil {
		return nil, ferrors.MetadataError("invalid metadata block").
			WithCause(err).
			WithContext("token", text).
			Build()
	}

	rec := &Record{
		Added:       raw.Added,
		Deprecated:  raw.Deprecated,
		Removed:     raw.Removed,
		NapiVersion: raw.NapiVersion,
		Changes:     make([]ChangeEntry, 0, len(raw.Changes)),
	}
	for _, c := range raw.Changes {
		rec.Changes = append(rec.Changes, ChangeEntry{
			Versions:    c.Version,
			Kind:        KindChange,
			PRURL:       c.PRURL,
			Description: c.Description,
		})
	}
	return rec, nil
}
