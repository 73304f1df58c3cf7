package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ancientlore/folio/site"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

// Renderer produces the bytes of a page.
type Renderer interface {
	Render(ctx context.Context, p site.Page) ([]byte, error)
}

// Options controls Emit.
type Options struct {
	Concurrency int  // Pages rendered at once; defaults to GOMAXPROCS
	Gzip        bool // Also write a precompressed .gz next to each page
}

// Emit renders pages and writes them below dir. The first failure cancels the
// remaining work and is returned.
func Emit(ctx context.Context, dir string, pages []site.Page, r Renderer, opts Options) error {
	n := opts.Concurrency
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for _, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := r.Render(ctx, p)
			if err != nil {
				return err
			}
			return writePage(filepath.Join(dir, filepath.FromSlash(FilePath(p))), b, opts.Gzip)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("Emit: %w", err)
	}
	return nil
}

func writePage(name string, b []byte, gz bool) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return err
	}
	if !gz {
		return nil
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err = w.Write(b); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return os.WriteFile(name+".gz", buf.Bytes(), 0o644)
}
