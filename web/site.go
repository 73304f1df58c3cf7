// Package web serves a built site for preview.
package web

import (
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ancientlore/cachefs"
	"github.com/ancientlore/folio/config"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Site serves the output folder of the latest build through a cache.
// Each call to Reload starts a new generation so files from an earlier
// build are never served again.
type Site struct {
	cached  fs.FS
	gen     atomic.Int64
	handler atomic.Pointer[http.Handler]
}

// NewSite returns a Site serving fsys with a cache of the given size.
func NewSite(fsys fs.FS, cacheBytes int64) *Site {
	s := &Site{
		cached: cachefs.New(generations{fsys}, &cachefs.Config{
			GroupName:   uuid.NewString(),
			SizeInBytes: cacheBytes,
		}),
	}
	s.Reload()
	return s
}

// Reload drops what was cached from earlier builds.
func (s *Site) Reload() {
	sub, err := fs.Sub(s.cached, strconv.FormatInt(s.gen.Add(1), 10))
	if err != nil {
		panic(err)
	}
	var h http.Handler = ErrorHandler(http.FileServerFS(sub), sub)
	s.handler.Store(&h)
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.handler.Load()).ServeHTTP(w, r)
}

// generations serves fsys below any single path element, so "3/a/b" and
// "4/a/b" name the same file with distinct cache keys.
type generations struct {
	fsys fs.FS
}

func (g generations) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	_, rest, ok := strings.Cut(name, "/")
	if !ok {
		rest = "."
	}
	return g.fsys.Open(rest)
}

// Handler assembles the preview server. lr and g are optional.
func Handler(cfg *config.Config, site http.Handler, lr *LiveReload, g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	if lr != nil {
		mux.Handle(ReloadPath, lr)
	}
	if g != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", gziphandler.GzipHandler(
		ExpiresHandler(
			HeaderHandler(site, cfg.Headers),
			time.Duration(cfg.Expires), time.Duration(cfg.StaticExpires))))
	return mux
}
