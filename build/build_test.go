package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ancientlore/folio/config"
	"github.com/ancientlore/folio/site"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testSite() fstest.MapFS {
	return fstest.MapFS{
		"content/blog/first.md": {Data: []byte(`+++
title = "First"
category = "blog"
slug = "first"
date = 2024-01-02
tags = ["Go"]
+++
Hello *world*.
`)},
		"content/blog/second.md": {Data: []byte(`---
title: Second
category: blog
slug: second
date: 2024-03-04
tags: [go, web]
---
More.
`)},
		"content/blog/later.md": {Data: []byte(`+++
title = "Later"
category = "blog"
slug = "later"
date = 2099-01-01
+++
Not yet.
`)},
		"content/about.md": {Data: []byte(`+++
title = "About"
category = "page"
slug = "about"
+++
About me.
`)},
		"static/css/site.css": {Data: []byte("body{}")},
	}
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "https://jane.dev"
	out := filepath.Join(t.TempDir(), "public")
	reg := prometheus.NewRegistry()
	b := New(testSite(), cfg, reg)

	r, err := b.Run(context.Background(), Options{Output: out, Now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if r.Items != 3 {
		t.Errorf("Expected 3 items but got %d", r.Items)
	}
	// 2 posts, tags go and web, about, home, blog, courses, 404
	if len(r.Pages) != 9 {
		t.Errorf("Expected 9 pages but got %d: %#v", len(r.Pages), r.Pages)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], `"go"`) {
		t.Errorf("Expected a tag case warning but got %v", r.Warnings)
	}
	for _, name := range []string{
		"index.html", "first/index.html", "second/index.html", "tag/go/index.html", "tag/web/index.html",
		"about/index.html", "blog/index.html", "courses/index.html", "404.html",
		"css/site.css", "sitemap.txt", "pages.json",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err != nil {
			t.Errorf("Expected %s: %s", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "later")); !os.IsNotExist(err) {
		t.Error("Expected future post to be skipped")
	}
	for _, f := range Folders(out)[1:] {
		if _, err := os.Stat(f); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", f)
		}
	}
	b2, err := os.ReadFile(filepath.Join(out, "first", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b2), `<a href="/second" rel="next">`) {
		t.Errorf("Expected a link to the next post in:\n%s", b2)
	}

	if n := testutil.ToFloat64(b.metrics.builds); n != 1 {
		t.Errorf("Expected 1 build but got %v", n)
	}
	if n := testutil.ToFloat64(b.metrics.pages); n != 9 {
		t.Errorf("Expected 9 pages but got %v", n)
	}

	// Unchanged content is served from the cache on a rebuild
	renders := b.md.Renders()
	if _, err = b.Run(context.Background(), Options{Output: out, Future: true}); err != nil {
		t.Fatal(err)
	}
	if got := b.md.Renders() - renders; got != 1 {
		t.Errorf("Expected only the future post to be rendered but got %d renders", got)
	}
	if _, err := os.Stat(filepath.Join(out, "later", "index.html")); err != nil {
		t.Errorf("Expected future post with Future set: %s", err)
	}
}

func TestRunDuplicate(t *testing.T) {
	fsys := testSite()
	fsys["content/other.md"] = &fstest.MapFile{Data: []byte("+++\ntitle = \"Other\"\ncategory = \"page\"\nslug = \"about\"\n+++\n")}
	out := filepath.Join(t.TempDir(), "public")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(out, "keep.html"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	b := New(fsys, config.Default(), prometheus.NewRegistry())
	_, err := b.Run(context.Background(), Options{Output: out})
	var dup *site.DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected duplicate path error but got %v", err)
	}
	if dup.Path != "/about" {
		t.Errorf("Expected /about but got %q", dup.Path)
	}
	if n := testutil.ToFloat64(b.metrics.failures); n != 1 {
		t.Errorf("Expected 1 failure but got %v", n)
	}
	if _, err := os.Stat(filepath.Join(out, "keep.html")); err != nil {
		t.Error("Expected output to be left alone after a failed build")
	}
}

func TestRunNoContent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "public")
	r, err := Run(context.Background(), fstest.MapFS{}, config.Default(), Options{Output: out})
	if err != nil {
		t.Fatal(err)
	}
	if r.Items != 0 || len(r.Pages) != 4 {
		t.Errorf("Expected only listing pages but got %#v", r.Pages)
	}
	if _, err = Run(context.Background(), fstest.MapFS{}, config.Default(), Options{}); err == nil {
		t.Error("Expected error without an output folder")
	}
}

func TestPages(t *testing.T) {
	cfg := config.Default()
	cfg.Routes = config.Routes{}
	pages, _, err := New(testSite(), cfg, nil).Pages(Options{Now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range pages {
		got = append(got, p.Path)
	}
	expect := "/second /first /tag/go /tag/web /about"
	if s := strings.Join(got, " "); s != expect {
		t.Errorf("Expected %q but got %q", expect, s)
	}
}

func TestSwap(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "public")
	stage := out + ".new"
	write := func(name, s string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(name, []byte(s), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	read := func(name string) string {
		t.Helper()
		b, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		return string(b)
	}

	// first build: nothing to move aside
	write(filepath.Join(stage, "index.html"), "one")
	if err := swap(stage, out); err != nil {
		t.Fatal(err)
	}
	if s := read(filepath.Join(out, "index.html")); s != "one" {
		t.Errorf("Expected %q but got %q", "one", s)
	}

	// a failed move keeps the previous output
	if err := swap(stage, out); err == nil {
		t.Error("Expected error without a staging folder")
	}
	if s := read(filepath.Join(out, "index.html")); s != "one" {
		t.Errorf("Expected previous output to be kept but got %q", s)
	}

	write(filepath.Join(stage, "index.html"), "two")
	write(out+".old/stale.html", "stale")
	if err := swap(stage, out); err != nil {
		t.Fatal(err)
	}
	if s := read(filepath.Join(out, "index.html")); s != "two" {
		t.Errorf("Expected %q but got %q", "two", s)
	}
	for _, f := range []string{stage, out + ".old"} {
		if _, err := os.Stat(f); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", f)
		}
	}
}
