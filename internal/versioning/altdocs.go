package versioning

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultHost serves the published documentation of every release line.
const DefaultHost = "https://nodejs.org"

var introducedIn = regexp.MustCompile(`<!--\s*introduced_in\s*=\s*v([0-9]+)\.([0-9]+)\.[0-9]+\s*-->`)

// ParseIntroducedIn finds the <!-- introduced_in=vX.Y.Z --> marker in a page
// source.
func ParseIntroducedIn(src string) (Introduced, bool) {
	m := introducedIn.FindStringSubmatch(src)
	if m == nil {
		return Introduced{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Introduced{}, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Introduced{}, false
	}
	return Introduced{Major: major, Minor: minor}, true
}

// ContainedIn reports whether release line v includes a page introduced in
// created. A component that is not a number (as in "14.x") does not rule
// the line out.
func (created Introduced) ContainedIn(v VersionEntry) bool {
	parts := strings.SplitN(v.Num, ".", 3)
	major, majorErr := strconv.Atoi(parts[0])
	if majorErr == nil {
		if created.Major > major {
			return false
		}
		if created.Major < major {
			return true
		}
	}
	if len(parts) < 2 {
		return true
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return true
	}
	return created.Minor <= minor
}

// AltDocs renders the "Other versions" picker entry for a page, or "" when
// no release line contains it. The input order of releases is kept.
func AltDocs(filename string, created Introduced, releases []VersionEntry, host string) string {
	if host == "" {
		host = DefaultHost
	}
	var items []string
	for _, v := range releases {
		if !created.ContainedIn(v) {
			continue
		}
		lts := ""
		if v.IsLTS {
			lts = " <b>LTS</b>"
		}
		items = append(items, `<li><a href="`+host+"/docs/latest-v"+v.Num+"/api/"+filename+`.html">`+v.Num+lts+"</a></li>")
	}
	if len(items) == 0 {
		return ""
	}
	return `
    <li class="picker-header">
      <a href="#">
        <span class="collapsed-arrow">&#x25ba;</span><span class="expanded-arrow">&#x25bc;</span>
        Other versions
      </a>
      <div class="picker"><ol id="alt-docs">` + strings.Join(items, "\n") + `</ol></div>
    </li>
  `
}
