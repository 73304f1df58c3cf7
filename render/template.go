package render

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/ancientlore/folio/content"
	"github.com/ancientlore/folio/site"
)

//go:embed default.html
var defaultTemplate string

// DateFormat is how the date template function shows dates.
const DateFormat = "Jan 02, 2006"

// loadTemplates parses the default templates and then any *.html files in the
// templates folder of fsys, which replace defaults with the same name.
func (r *Renderer) loadTemplates(fsys fs.FS, folder string) error {
	funcMap := template.FuncMap{
		"date":       formatDate,
		"tagpath":    site.TagPath,
		"siteurl":    r.cfg.SiteURL,
		"excerpt":    r.excerpt,
		"join":       path.Join,
		"lower":      content.TagKey,
		"trimsuffix": strings.TrimSuffix,
		"trimprefix": strings.TrimPrefix,
		"trimspace":  strings.TrimSpace,
		"now":        time.Now,
	}
	tpl, err := template.New("folio").Funcs(funcMap).Parse(defaultTemplate)
	if err != nil {
		return fmt.Errorf("loadTemplates: %w", err)
	}
	if fsys != nil && folder != "" {
		fi, err := fs.Stat(fsys, folder)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loadTemplates: %w", err)
		}
		if err == nil && fi.IsDir() {
			pattern := path.Join(folder, "*.html")
			matches, err := fs.Glob(fsys, pattern)
			if err != nil {
				return fmt.Errorf("loadTemplates: %w", err)
			}
			if len(matches) > 0 {
				tpl, err = tpl.ParseFS(fsys, pattern)
				if err != nil {
					return fmt.Errorf("loadTemplates: %w", err)
				}
				r.custom = true
			}
		}
	}
	r.tpl = tpl
	return nil
}

// formatDate shows a date, or nothing for a missing date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}
