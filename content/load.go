package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"
	"time"
)

// LoadOptions controls which items Load returns.
type LoadOptions struct {
	Now    time.Time // Items dated after Now are skipped; zero disables the check
	Future bool      // Keep items dated in the future
}

// Load walks fsys in lexical order and parses every Markdown file.
// Hidden files and folders are ignored. Parse errors do not stop the walk;
// they are all returned together so a build can report every broken file.
func Load(fsys fs.FS, opts LoadOptions) ([]Item, error) {
	var (
		items []Item
		errs  []error
	)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdown(p) {
			return nil
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		item, err := Parse(p, b)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !opts.Future && !opts.Now.IsZero() && item.Date.After(opts.Now) {
			log.Printf("Load: skipping %s until %s", p, item.Date.Format(time.RFC3339))
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("Load: %w", errors.Join(errs...))
	}
	return items, nil
}

// isMarkdown checks for the Markdown extensions we accept.
func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".mdx", ".markdown":
		return true
	}
	return false
}
