// Package output writes the pages of a build to a static tree.
package output

import (
	"path"
	"strings"

	"github.com/ancientlore/folio/site"
)

// NotFoundFile is where the not found page is written, which is where most
// static hosts look for it.
const NotFoundFile = "404.html"

// FilePath returns the slash path, relative to the output folder, that page p
// is written to.
func FilePath(p site.Page) string {
	if p.Template == site.NotFound {
		return NotFoundFile
	}
	s := strings.Trim(path.Clean("/"+p.Path), "/")
	if s == "" {
		return "index.html"
	}
	return s + "/index.html"
}
