// Package content loads Markdown content items and their front matter.
package content

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category discriminates the kinds of content.
type Category string

const (
	Blog   Category = "blog"
	Page   Category = "page"
	Course Category = "course"
)

// Item is a unit of published content read from a Markdown file.
type Item struct {
	ID          string    // Slash path of the source file, relative to the content root
	Category    Category  // Kind of content
	Slug        string    // URL path segment; empty if the item has no page of its own
	Title       string    // Display title
	Date        time.Time // Publish date; zero if absent
	Tags        []string  // Labels in authored order
	SortKey     *int      // Explicit ordering, used for courses
	Published   bool      // False for drafts, which are left out of listings
	Description string    // Optional summary
	URL         string    // Optional external link
	Body        []byte    // Markdown without the front matter
}

// Addressable reports whether the item gets a page of its own.
func (it *Item) Addressable() bool {
	return it.Slug != ""
}

// HasTag reports whether the item carries tag, ignoring case.
func (it *Item) HasTag(tag string) bool {
	key := TagKey(tag)
	for _, t := range it.Tags {
		if TagKey(t) == key {
			return true
		}
	}
	return false
}

// TagKey returns the lowercase form of a tag used in URLs and comparisons.
func TagKey(tag string) string {
	return cases.Lower(language.Und).String(tag)
}
