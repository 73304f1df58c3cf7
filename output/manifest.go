package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ancientlore/folio/site"
)

// ManifestFile lists the routes of a build.
const ManifestFile = "pages.json"

// WriteManifest records the pages of a build, in build order, as JSON.
func WriteManifest(dir string, pages []site.Page) error {
	if pages == nil {
		pages = []site.Page{}
	}
	b, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	if err = os.WriteFile(filepath.Join(dir, ManifestFile), append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	return nil
}

// ReadManifest reads the pages written by WriteManifest.
func ReadManifest(dir string) ([]site.Page, error) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("ReadManifest: %w", err)
	}
	var pages []site.Page
	if err = json.Unmarshal(b, &pages); err != nil {
		return nil, fmt.Errorf("ReadManifest: %w", err)
	}
	return pages, nil
}
