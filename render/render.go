// Package render turns the pages of a build into HTML using html/template.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log"

	"github.com/ancientlore/folio/cache"
	"github.com/ancientlore/folio/config"
	"github.com/ancientlore/folio/content"
	"github.com/ancientlore/folio/site"
)

// Options controls rendering.
type Options struct {
	Drafts bool   // List unpublished items on listing pages
	Inject []byte // Inserted before </body> of every page, such as a live reload script
}

// data is what is passed to templates.
type data struct {
	Site        *config.Config
	Page        site.Page      // the route being rendered
	Title       string         // page title
	Description string         // page description
	Item        *content.Item  // content item of post, page and course routes
	Content     template.HTML  // rendered Markdown of Item
	Posts       []content.Item // posts of tag and listing routes, newest first
	Courses     []content.Item // courses of the course listing
}

// Renderer renders the pages of one build. It is safe for concurrent use.
type Renderer struct {
	cfg     *config.Config
	opts    Options
	tpl     *template.Template
	custom  bool
	md      *cache.Markdown
	byID    map[string]*content.Item
	posts   []content.Item
	courses []content.Item
}

// New returns a Renderer for items. Templates come from the templates folder
// of fsys when present, else the built-in defaults. md may be shared between
// builds so unchanged content is not rendered again; if nil, a new cache is made.
func New(fsys fs.FS, cfg *config.Config, items []content.Item, md *cache.Markdown, opts Options) (*Renderer, error) {
	if md == nil {
		md = cache.New("", cfg.CacheBytes, Markdown)
	}
	r := &Renderer{
		cfg:  cfg,
		opts: opts,
		md:   md,
		byID: make(map[string]*content.Item, len(items)),
	}
	for i := range items {
		r.byID[items[i].ID] = &items[i]
	}
	r.posts = content.Query(items, content.Blog)
	r.courses = content.Query(items, content.Course)
	if !opts.Drafts {
		r.posts = content.Published(r.posts)
		r.courses = content.Published(r.courses)
	}
	r.posts = addressable(r.posts)
	if err := r.loadTemplates(fsys, cfg.Templates); err != nil {
		return nil, err
	}
	if r.custom {
		log.Printf("Loaded templates: %s", r.tpl.DefinedTemplates())
	}
	return r, nil
}

// Render executes the template of p.
func (r *Renderer) Render(ctx context.Context, p site.Page) ([]byte, error) {
	d := data{
		Site:        r.cfg,
		Page:        p,
		Description: r.cfg.Description,
	}
	switch p.Template {
	case site.BlogPost, site.PlainPage, site.Course:
		item, ok := r.byID[p.Source]
		if !ok {
			return nil, fmt.Errorf("Render %s: unknown source %q", p.Path, p.Source)
		}
		md, err := r.md.Get(ctx, item.ID, item.Body)
		if err != nil {
			return nil, fmt.Errorf("Render %s: %w", p.Path, err)
		}
		d.Item = item
		d.Title = item.Title
		d.Content = md.Content
		if item.Description != "" {
			d.Description = item.Description
		} else if md.Excerpt != "" {
			d.Description = md.Excerpt
		}
	case site.Tag:
		d.Title = p.Context.Tag
		for i := range r.posts {
			if r.posts[i].HasTag(p.Context.Tag) {
				d.Posts = append(d.Posts, r.posts[i])
			}
		}
	case site.Home:
		d.Title = r.cfg.Title
		d.Posts = r.posts
		if n := r.cfg.HomePosts; n < len(d.Posts) {
			d.Posts = d.Posts[:n]
		}
	case site.BlogIndex:
		d.Title = "Blog"
		d.Posts = r.posts
	case site.CourseIndex:
		d.Title = "Courses"
		d.Courses = r.courses
	case site.NotFound:
		d.Title = "Not Found"
	}
	tpl := r.tpl.Lookup(string(p.Template))
	if tpl == nil {
		return nil, fmt.Errorf("Render %s: no template named %q", p.Path, p.Template)
	}
	var out bytes.Buffer
	err := tpl.Execute(&out, d)
	if err != nil {
		return nil, fmt.Errorf("Render %s: %w", p.Path, err)
	}
	return inject(out.Bytes(), r.opts.Inject), nil
}

// excerpt returns the summary of an item and is used in templates.
func (r *Renderer) excerpt(item content.Item) string {
	if item.Description != "" {
		return item.Description
	}
	md, err := r.md.Get(context.Background(), item.ID, item.Body)
	if err != nil {
		log.Printf("excerpt: %s", err)
		return ""
	}
	return md.Excerpt
}

// inject inserts snippet before the closing body tag, or at the end.
func inject(page, snippet []byte) []byte {
	if len(snippet) == 0 {
		return page
	}
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, snippet...)
	}
	out := make([]byte, 0, len(page)+len(snippet))
	out = append(out, page[:i]...)
	out = append(out, snippet...)
	return append(out, page[i:]...)
}

// addressable trims out items without a page of their own.
func addressable(items []content.Item) []content.Item {
	var r []content.Item
	for i := range items {
		if items[i].Addressable() {
			r = append(r, items[i])
		}
	}
	return r
}
