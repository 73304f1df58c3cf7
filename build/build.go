// Package build runs the whole pipeline: load content, derive the pages,
// render them and write the output tree.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ancientlore/folio/cache"
	"github.com/ancientlore/folio/config"
	"github.com/ancientlore/folio/content"
	"github.com/ancientlore/folio/output"
	"github.com/ancientlore/folio/render"
	"github.com/ancientlore/folio/site"
	"github.com/prometheus/client_golang/prometheus"
)

// Options controls a build.
type Options struct {
	Output      string    // Destination folder on disk
	Now         time.Time // Reference time for future dated items; zero means time.Now
	Future      bool      // Include future dated items
	Drafts      bool      // List unpublished items
	Inject      []byte    // Snippet added to every page
	Concurrency int       // Pages rendered at once
}

// Report summarizes a successful build.
type Report struct {
	Items    int
	Pages    []site.Page
	Warnings []string
	Duration time.Duration
}

// Builder builds one site repeatedly, sharing rendered Markdown between runs.
// Runs are serialized.
type Builder struct {
	fsys    fs.FS
	cfg     *config.Config
	md      *cache.Markdown
	metrics *metrics
	mu      sync.Mutex
}

// New returns a Builder for the site in fsys. Metrics are registered with reg
// when it is not nil.
func New(fsys fs.FS, cfg *config.Config, reg prometheus.Registerer) *Builder {
	md := cache.New("", cfg.CacheBytes, render.Markdown)
	return &Builder{
		fsys:    fsys,
		cfg:     cfg,
		md:      md,
		metrics: newMetrics(reg, md),
	}
}

// Run builds the site in fsys once.
func Run(ctx context.Context, fsys fs.FS, cfg *config.Config, opts Options) (*Report, error) {
	return New(fsys, cfg, nil).Run(ctx, opts)
}

// Pages loads the content and returns the pages a build would write,
// without rendering anything.
func (b *Builder) Pages(opts Options) ([]site.Page, []string, error) {
	items, err := b.load(opts)
	if err != nil {
		return nil, nil, err
	}
	return b.pages(items)
}

func (b *Builder) pages(items []content.Item) ([]site.Page, []string, error) {
	var warnings []string
	sb := site.Builder{
		Routes: site.Routes{
			Home:     b.cfg.Routes.Home,
			Blog:     b.cfg.Routes.Blog,
			Courses:  b.cfg.Routes.Courses,
			NotFound: b.cfg.Routes.NotFound,
		},
		Warnf: func(format string, v ...any) {
			s := fmt.Sprintf(format, v...)
			log.Print(s)
			warnings = append(warnings, s)
		},
	}
	pages, err := sb.BuildPages(items)
	return pages, warnings, err
}

// Run builds the site. The output folder is replaced only when the whole
// build succeeds.
func (b *Builder) Run(ctx context.Context, opts Options) (*Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.builds.Inc()
	start := time.Now()
	r, err := b.run(ctx, opts)
	if err != nil {
		b.metrics.failures.Inc()
		return nil, fmt.Errorf("Run: %w", err)
	}
	r.Duration = time.Since(start)
	b.metrics.duration.Observe(r.Duration.Seconds())
	b.metrics.pages.Set(float64(len(r.Pages)))
	return r, nil
}

func (b *Builder) run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Output == "" {
		return nil, errors.New("no output folder")
	}
	items, err := b.load(opts)
	if err != nil {
		return nil, err
	}
	pages, warnings, err := b.pages(items)
	if err != nil {
		return nil, err
	}
	rr, err := render.New(b.fsys, b.cfg, items, b.md, render.Options{Drafts: opts.Drafts, Inject: opts.Inject})
	if err != nil {
		return nil, err
	}

	stage := opts.Output + stageSuffix
	if err = output.Clean(stage); err != nil {
		return nil, err
	}
	defer os.RemoveAll(stage)
	if b.cfg.Static != "" {
		static, err := fs.Sub(b.fsys, b.cfg.Static)
		if err != nil {
			return nil, err
		}
		if err = output.CopyStatic(static, stage); err != nil {
			return nil, err
		}
	}
	err = output.Emit(ctx, stage, pages, rr, output.Options{Concurrency: opts.Concurrency, Gzip: b.cfg.Gzip})
	if err != nil {
		return nil, err
	}
	if err = output.WriteSitemap(stage, b.cfg.BaseURL, pages); err != nil {
		return nil, err
	}
	if err = output.WriteManifest(stage, pages); err != nil {
		return nil, err
	}
	if err = swap(stage, opts.Output); err != nil {
		return nil, err
	}
	return &Report{Items: len(items), Pages: pages, Warnings: warnings}, nil
}

const (
	stageSuffix = ".new"
	oldSuffix   = ".old"
)

// Folders returns the output folder and the folders a build with that output
// uses while it runs. Watchers should ignore all of them.
func Folders(out string) []string {
	return []string{out, out + stageSuffix, out + oldSuffix}
}

// swap replaces out with stage. The previous output is moved aside first and
// put back if stage cannot be moved into place.
func swap(stage, out string) error {
	old := out + oldSuffix
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	err := os.Rename(out, old)
	hadOld := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err = os.Rename(stage, out); err != nil {
		if hadOld {
			if rerr := os.Rename(old, out); rerr != nil {
				log.Printf("swap: cannot restore %s: %s", out, rerr)
			}
		}
		return err
	}
	if hadOld {
		if err = os.RemoveAll(old); err != nil {
			log.Printf("swap: %s", err)
		}
	}
	return nil
}

// load reads the content folder. A site without one has no items.
func (b *Builder) load(opts Options) ([]content.Item, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	fsys, err := fs.Sub(b.fsys, b.cfg.Content)
	if err != nil {
		return nil, err
	}
	if _, err = fs.Stat(fsys, "."); errors.Is(err, fs.ErrNotExist) {
		log.Printf("load: no content folder %q", b.cfg.Content)
		return nil, nil
	}
	return content.Load(fsys, content.LoadOptions{Now: now, Future: opts.Future})
}
