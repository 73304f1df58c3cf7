package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/ancientlore/folio/site"
)

// SitemapFile is the name of the generated site map.
const SitemapFile = "sitemap.txt"

var sitemapTpl = template.Must(template.New("sitemap").Parse(`{{range .}}{{.}}
{{end}}`))

// WriteSitemap writes a text site map listing the URL of every page except the
// not found page, sorted by path.
func WriteSitemap(dir, baseURL string, pages []site.Page) error {
	var urls []string
	for _, p := range pages {
		if p.Template == site.NotFound {
			continue
		}
		urls = append(urls, strings.TrimSuffix(baseURL, "/")+p.Path)
	}
	sort.Strings(urls)
	var out bytes.Buffer
	if err := sitemapTpl.Execute(&out, urls); err != nil {
		return fmt.Errorf("WriteSitemap: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SitemapFile), out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("WriteSitemap: %w", err)
	}
	return nil
}
