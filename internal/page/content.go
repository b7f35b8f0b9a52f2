package page

import (
	"regexp"
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

var headingTag = regexp.MustCompile(`<(/?)h([1-5])([^<>]*>)`)

const sectionOpen = "<section "

// ProcessContent repairs the rendered page body: every heading level 1-5 is
// shifted down one level so the template's <h1> stays unique, and every
// resulting <h3> starts a new <section> unless it directly follows an
// existing <section ...> tag (as generated footnotes do).
func ProcessContent(content string) (string, error) {
	if strings.Contains(content, "<h6>") || strings.Contains(content, "<h6 ") {
		return "", ferrors.HeadingError("cannot increment a level 6 heading").Build()
	}

	content = headingTag.ReplaceAllStringFunc(content, func(m string) string {
		sm := headingTag.FindStringSubmatch(m)
		level, _ := strconv.Atoi(sm[2])
		return "<" + sm[1] + "h" + strconv.Itoa(level+1) + sm[3]
	})

	var b strings.Builder
	opened := false
	rest := content
	offset := 0
	for {
		idx := strings.Index(rest, "<h3")
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		if !followsSectionTag(content[:offset+idx]) {
			if opened {
				b.WriteString("</section>")
			}
			b.WriteString("<section>")
			opened = true
		}
		b.WriteString("<h3")
		rest = rest[idx+3:]
		offset += idx + 3
	}
	if opened {
		b.WriteString("</section>")
	}
	return b.String(), nil
}

// followsSectionTag reports whether prefix ends with a <section ...> tag that
// carries at least one attribute.
func followsSectionTag(prefix string) bool {
	if !strings.HasSuffix(prefix, ">") {
		return false
	}
	i := strings.LastIndex(prefix, sectionOpen)
	if i < 0 {
		return false
	}
	attrs := prefix[i+len(sectionOpen) : len(prefix)-1]
	return attrs != "" && !strings.Contains(attrs, ">")
}
