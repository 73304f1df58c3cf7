package site

import (
	"errors"
	"log"
	"path"

	"github.com/ancientlore/folio/content"
)

// Routes holds the paths of the listing pages. Empty paths are skipped.
type Routes struct {
	Home     string
	Blog     string
	Courses  string
	NotFound string
}

// Builder computes the pages of a build.
type Builder struct {
	Routes Routes

	// Warnf reports problems that do not stop the build. It defaults to log.Printf.
	Warnf func(format string, v ...any)
}

// BuildPages returns the pages for items without any listing routes.
func BuildPages(items []content.Item) ([]Page, error) {
	var b Builder
	return b.BuildPages(items)
}

// BuildPages returns the pages for items: blog posts newest first with links
// to their neighbours, one page per distinct tag, then courses, plain pages
// and the configured listing routes. Items without a slug get no page. If two
// pages share a path, no pages are returned and the error reports every
// collision.
func (b *Builder) BuildPages(items []content.Item) ([]Page, error) {
	var posts, courses, pages []content.Item
	for i := range items {
		if !items[i].Addressable() {
			continue
		}
		switch items[i].Category {
		case content.Blog:
			posts = append(posts, items[i])
		case content.Course:
			courses = append(courses, items[i])
		case content.Page:
			pages = append(pages, items[i])
		}
	}
	content.SortByDate(posts)
	content.SortBySortKey(courses)

	var r routes
	for i := range posts {
		ctx := Context{Slug: posts[i].Slug}
		if i > 0 {
			ctx.Next = linkTo(&posts[i-1])
		}
		if i < len(posts)-1 {
			ctx.Previous = linkTo(&posts[i+1])
		}
		r.add(Page{Path: "/" + posts[i].Slug, Template: BlogPost, Context: ctx, Source: posts[i].ID})
	}
	for _, tag := range b.uniqueTags(posts) {
		r.add(Page{Path: TagPath(tag), Template: Tag, Context: Context{Tag: tag}, Source: "tag:" + tag})
	}
	for i := range courses {
		r.add(Page{Path: "/" + courses[i].Slug, Template: Course, Context: Context{Slug: courses[i].Slug}, Source: courses[i].ID})
	}
	for i := range pages {
		r.add(Page{Path: "/" + pages[i].Slug, Template: PlainPage, Context: Context{Slug: pages[i].Slug}, Source: pages[i].ID})
	}
	for _, l := range []struct {
		path string
		tpl  Template
	}{
		{b.Routes.Home, Home},
		{b.Routes.Blog, BlogIndex},
		{b.Routes.Courses, CourseIndex},
		{b.Routes.NotFound, NotFound},
	} {
		if l.path != "" {
			r.add(Page{Path: l.path, Template: l.tpl, Source: "route:" + string(l.tpl)})
		}
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return r.pages, nil
}

// TagPath returns the path of the page listing posts carrying tag.
func TagPath(tag string) string {
	return "/tag/" + content.TagKey(tag)
}

// uniqueTags returns the distinct tags of posts in order of first appearance.
// Tags that differ only by case share a path; the first spelling wins.
func (b *Builder) uniqueTags(posts []content.Item) []string {
	var (
		tags []string
		seen = make(map[string]string)
	)
	for i := range posts {
		for _, tag := range posts[i].Tags {
			key := content.TagKey(tag)
			first, ok := seen[key]
			if !ok {
				seen[key] = tag
				tags = append(tags, tag)
			} else if first != tag {
				b.warnf("BuildPages: tag %q in %s collides with %q; using %q", tag, posts[i].ID, first, first)
			}
		}
	}
	return tags
}

func (b *Builder) warnf(format string, v ...any) {
	if b.Warnf != nil {
		b.Warnf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// routes collects pages and the collisions between them. Paths are compared
// cleaned, since "/a/", "/a" and "/tag/../a" are all written to the same file.
type routes struct {
	pages  []Page
	byPath map[string]string
	errs   []error
}

func (r *routes) add(p Page) {
	if r.byPath == nil {
		r.byPath = make(map[string]string)
	}
	key := path.Clean("/" + p.Path)
	if first, ok := r.byPath[key]; ok {
		r.errs = append(r.errs, &DuplicatePathError{Path: key, First: first, Second: p.Source})
		return
	}
	r.byPath[key] = p.Source
	r.pages = append(r.pages, p)
}
