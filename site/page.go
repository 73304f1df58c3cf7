// Package site turns a flat list of content items into the set of routes a
// build must produce.
package site

import "github.com/ancientlore/folio/content"

// Template selects which template renders a page.
type Template string

const (
	BlogPost  Template = "post"
	PlainPage Template = "page"
	Course    Template = "course"
	Tag       Template = "tag"

	Home        Template = "home"    // Recent posts
	BlogIndex   Template = "blog"    // All posts
	CourseIndex Template = "courses" // All courses
	NotFound    Template = "404"     // Written to 404.html
)

// Link points at a neighbouring post.
type Link struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func linkTo(item *content.Item) *Link {
	return &Link{Slug: item.Slug, Title: item.Title}
}

// Context is the data handed to the template along with the page.
type Context struct {
	Slug     string `json:"slug,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Previous *Link  `json:"previous,omitempty"` // Older post
	Next     *Link  `json:"next,omitempty"`     // Newer post
}

// Page describes one route of the build.
type Page struct {
	Path     string   `json:"path"`
	Template Template `json:"template"`
	Context  Context  `json:"context"`
	Source   string   `json:"-"` // Item ID, or "tag:" or "route:" for derived pages
}
