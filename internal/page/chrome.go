package page

import (
	"strings"

	"git.home.luguber.info/inful/apidoc/internal/site"
)

const indexID = "index"

// EditLink renders the "Edit on GitHub" entry for a page.
func EditLink(base, name string) string {
	return `<li class="edit_on_github"><a href="` + base + name + `.md">Edit on GitHub</a></li>`
}

// GTOCPicker renders the header picker holding the global navigation, with
// the current page highlighted and a trailing link to the index. The index
// page gets no picker.
func GTOCPicker(gtoc, id string) string {
	if id == indexID {
		return ""
	}
	nav := strings.Replace(site.HighlightNav(gtoc, id), "</ul>", `
      <li>
        <a href="index.html">Index</a>
      </li>
    </ul>
  `, 1)

	return `
    <li class="picker-header">
      <a href="#">
        <span class="collapsed-arrow">&#x25ba;</span><span class="expanded-arrow">&#x25bc;</span>
        Index
      </a>

      <div class="picker">` + nav + `</div>
    </li>
  `
}

// TOCPicker renders the header picker holding the page's table of contents.
func TOCPicker(picker, id string) string {
	if id == indexID {
		return ""
	}
	return `
    <li class="picker-header">
      <a href="#">
        <span class="collapsed-arrow">&#x25ba;</span><span class="expanded-arrow">&#x25bc;</span>
        Table of contents
      </a>

      <div class="picker">` + picker + `</div>
    </li>
  `
}
