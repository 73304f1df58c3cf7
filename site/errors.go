package site

import "fmt"

// DuplicatePathError reports two pages that resolve to the same path.
type DuplicatePathError struct {
	Path   string
	First  string // Source of the page that claimed the path
	Second string // Source of the page that collided with it
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate path %q from %s and %s", e.Path, e.First, e.Second)
}
