// Package watch triggers rebuilds when site files change or on a schedule.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with the names that changed below paths once no change has
// been seen for debounce. Folders are watched recursively, including folders
// created later. Paths that do not exist are skipped, as is anything at or
// below one of ignore, such as the output of the build being triggered.
// Watch returns when ctx is done.
func Watch(ctx context.Context, paths, ignore []string, debounce time.Duration, fn func(changed []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("Watch: %w", err)
	}
	defer w.Close()
	skip := newSkipper(ignore)
	for _, p := range paths {
		if err = add(w, p, skip); err != nil {
			return fmt.Errorf("Watch: %w", err)
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var pending []string
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev) || skip(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := add(w, ev.Name, skip); err != nil {
						log.Printf("Watch: %s", err)
					}
				}
			}
			pending = append(pending, ev.Name)
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch: %s", err)
		case <-timer.C:
			slices.Sort(pending)
			changed := slices.Compact(pending)
			pending = nil
			fn(changed)
		}
	}
}

// add watches p, and every folder below it when p is a folder.
func add(w *fsnotify.Watcher, p string, skip func(string) bool) error {
	if skip(p) {
		return nil
	}
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Watch: skipping %s", p)
		return nil
	} else if err != nil {
		return err
	}
	if !fi.IsDir() {
		return w.Add(p)
	}
	return filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != p && (hidden(d.Name()) || skip(path)) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// ignored filters out attribute changes and editor droppings.
func ignored(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	name := filepath.Base(ev.Name)
	return hidden(name) || strings.HasSuffix(name, "~")
}

// newSkipper returns a function reporting whether a name is at or below one
// of the ignored paths. Names are compared as absolute paths.
func newSkipper(ignore []string) func(string) bool {
	var roots []string
	for _, p := range ignore {
		if p != "" {
			roots = append(roots, absPath(p))
		}
	}
	return func(name string) bool {
		name = absPath(name)
		for _, r := range roots {
			if name == r || strings.HasPrefix(name, r+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
