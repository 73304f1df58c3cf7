package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/ancientlore/folio/build"
	"github.com/ancientlore/folio/config"
	"github.com/ancientlore/folio/watch"
	"github.com/ancientlore/folio/web"
	"github.com/prometheus/client_golang/prometheus"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c := commonFlags(fs)
	var (
		fPort              = fs.Int("port", 8080, "Port to listen on.")
		fReadTimeout       = fs.Duration("readtimeout", 10*time.Second, "HTTP server read timeout.")
		fReadHeaderTimeout = fs.Duration("readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
		fWriteTimeout      = fs.Duration("writetimeout", 30*time.Second, "HTTP server write timeout.")
		fWatch             = fs.Bool("watch", true, "Rebuild when site files change.")
		fDebounce          = fs.Duration("debounce", 200*time.Millisecond, "Quiet time after a change before rebuilding.")
		fLiveReload        = fs.Bool("livereload", true, "Reload browsers after a rebuild.")
	)
	parse(fs, args)

	cfg, out, err := c.load()
	if err != nil {
		log.Printf("Cannot load configuration: %s", err)
		os.Exit(3)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	b := build.New(os.DirFS(*c.root), cfg, reg)
	opts := build.Options{Output: out, Future: *c.future, Drafts: *c.drafts}
	var lr *web.LiveReload
	if *fLiveReload {
		lr = web.NewLiveReload()
		opts.Inject = web.Script
	}
	site := web.NewSite(os.DirFS(out), cfg.CacheBytes)

	rebuild := func() {
		r, err := b.Run(ctx, opts)
		if err != nil {
			log.Printf("Build failed: %s", err)
			return
		}
		log.Printf("Wrote %d pages in %s", len(r.Pages), r.Duration.Round(time.Millisecond))
		site.Reload()
		if lr != nil {
			lr.Reload()
		}
	}
	rebuild()

	if *fWatch {
		cfgFile := filepath.Join(*c.root, config.Filename)
		paths := []string{cfgFile}
		for _, f := range []string{cfg.Content, cfg.Templates, cfg.Static} {
			if f != "" {
				paths = append(paths, filepath.Join(*c.root, filepath.FromSlash(f)))
			}
		}
		go func() {
			err := watch.Watch(ctx, paths, build.Folders(out), *fDebounce, func(changed []string) {
				log.Printf("Changed: %v", changed)
				if slices.Contains(changed, cfgFile) {
					log.Printf("Restart to apply changes to %s", config.Filename)
				}
				rebuild()
			})
			if err != nil {
				log.Printf("Cannot watch for changes: %s", err)
			}
		}()
		log.Print("Watching for changes")
	}
	if cfg.Rebuild != "" {
		go func() {
			if err := watch.Schedule(ctx, cfg.Rebuild, rebuild); err != nil {
				log.Printf("Cannot schedule rebuilds: %s", err)
			}
		}()
		log.Printf("Rebuilding on schedule %q", cfg.Rebuild)
	}

	// Create HTTP server
	var srv = http.Server{
		Addr:              fmt.Sprintf(":%d", *fPort),
		Handler:           web.Handler(cfg, site, lr, reg),
		ReadTimeout:       *fReadTimeout,
		WriteTimeout:      *fWriteTimeout,
		ReadHeaderTimeout: *fReadHeaderTimeout,
	}

	// Create signal handler for graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)

		// interrupt signal sent from terminal
		signal.Notify(sigint, os.Interrupt)
		// sigterm signal sent from kubernetes
		signal.Notify(sigint, syscall.SIGTERM)

		<-sigint

		// We received an interrupt signal, shut down.
		cancel()
		if lr != nil {
			lr.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Printf("HTTP server Shutdown: %v", err)
		}
	}()

	// Listen for requests
	log.Printf("Listening for requests on %s", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server: %v", err)
	} else {
		log.Print("Goodbye.")
	}
}
