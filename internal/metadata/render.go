package metadata

import (
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// MarkdownRenderer renders a standalone markdown fragment to HTML.
type MarkdownRenderer interface {
	RenderMarkdown(src string) (string, error)
}

// Renderer turns records into HTML. Transform, when set, is applied to change
// descriptions before they are rendered as markdown.
type Renderer struct {
	Markdown  MarkdownRenderer
	Transform func(string) string
}

// History returns the history rows: the explicit changes plus synthesized
// rows for added/deprecated/removed, sorted newest first. It returns nil
// when the record has no explicit changes.
func (r *Record) History() []ChangeEntry {
	if len(r.Changes) == 0 {
		return nil
	}
	rows := make([]ChangeEntry, 0, len(r.Changes)+3)
	rows = append(rows, r.Changes...)
	if len(r.Added) > 0 {
		rows = append(rows, ChangeEntry{Versions: r.Added, Kind: KindAdded, Description: addedSpan(r.Added)})
	}
	if len(r.Deprecated) > 0 {
		rows = append(rows, ChangeEntry{Versions: r.Deprecated, Kind: KindDeprecated, Description: deprecatedSpan(r.Deprecated)})
	}
	if len(r.Removed) > 0 {
		rows = append(rows, ChangeEntry{Versions: r.Removed, Kind: KindRemoved, Description: removedSpan(r.Removed)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return CompareVersions(rows[i].Versions, rows[j].Versions) < 0
	})
	return rows
}

// Render produces the api_metadata block for rec.
func (m Renderer) Render(rec *Record) (string, error) {
	var b strings.Builder
	b.WriteString("<div class=\"api_metadata\">\n")

	if rows := rec.History(); rows != nil {
		b.WriteString("<details class=\"changelog\"><summary>History</summary>\n")
		b.WriteString("<table>\n<tr><th>Version</th><th>Changes</th></tr>\n")
		for _, row := range rows {
			desc := row.Description
			if row.Kind == KindChange && m.Transform != nil {
				desc = m.Transform(desc)
			}
			html, err := m.Markdown.RenderMarkdown(desc)
			if err != nil {
				return "", ferrors.MetadataError("render change description").WithCause(err).
					WithContext("token", row.Description).
					Build()
			}
			b.WriteString("<tr><td>" + strings.Join(row.Versions, ", ") + "</td>\n")
			b.WriteString("<td>" + html + "</td></tr>\n")
		}
		b.WriteString("</table>\n</details>\n")
	} else {
		if len(rec.Added) > 0 {
			b.WriteString(addedSpan(rec.Added))
		}
		if len(rec.Deprecated) > 0 {
			b.WriteString(deprecatedSpan(rec.Deprecated))
		}
		if len(rec.Removed) > 0 {
			b.WriteString(removedSpan(rec.Removed))
		}
		b.WriteByte('\n')
	}

	if len(rec.NapiVersion) > 0 {
		b.WriteString("<span>N-API version: " + strings.Join(rec.NapiVersion, ", ") + "</span>\n")
	}
	b.WriteString("</div>")
	return b.String(), nil
}

// RenderBlock parses and renders a metadata block in one step.
func (m Renderer) RenderBlock(text string) (string, error) {
	rec, err := Parse(text)
	if err != nil {
		return "", err
	}
	return m.Render(rec)
}

func addedSpan(v []string) string {
	return "<span>Added in: " + strings.Join(v, ", ") + "</span>"
}

func deprecatedSpan(v []string) string {
	return "<span>Deprecated since: " + strings.Join(v, ", ") + "</span>"
}

func removedSpan(v []string) string {
	return "<span>Removed in: " + strings.Join(v, ", ") + "</span>"
}
