package config

import (
	"testing"
	"testing/fstest"
	"time"
)

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(fstest.MapFS{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "public" || cfg.Content != "content" {
		t.Errorf("Expected defaults but got %#v", cfg)
	}
	if cfg.Routes.Blog != "/blog" {
		t.Errorf("Expected /blog but got %q", cfg.Routes.Blog)
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		Filename: &fstest.MapFile{Data: []byte(`
title = "Jane Doe"
base_url = "https://janedoe.dev/"
expires = "1h30m"
rebuild = "@hourly"

[routes]
blog = "/articles"
courses = ""

[headers]
X-Frame-Options = "DENY"
`)},
	}
	cfg, err := Load(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "Jane Doe" {
		t.Errorf("Expected title %q but got %q", "Jane Doe", cfg.Title)
	}
	if time.Duration(cfg.Expires) != 90*time.Minute {
		t.Errorf("Expected 1h30m but got %s", cfg.Expires)
	}
	if cfg.Routes.Blog != "/articles" || cfg.Routes.Courses != "" {
		t.Errorf("Unexpected routes %#v", cfg.Routes)
	}
	if cfg.Routes.NotFound != "/404" {
		t.Errorf("Expected default not_found route but got %q", cfg.Routes.NotFound)
	}
	if cfg.Headers["X-Frame-Options"] != "DENY" {
		t.Errorf("Expected header but got %v", cfg.Headers)
	}
	if u := cfg.SiteURL("/about"); u != "https://janedoe.dev/about" {
		t.Errorf("Expected joined URL but got %q", u)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []string{
		`title = `,
		`expires = "forever"`,
		"[routes]\nblog = \"blog\"",
		`home_posts = -1`,
		`cache_bytes = 0`,
		`content = "../posts"`,
		`static = "/var/www"`,
		`rebuild = "every tuesday"`,
	}
	for _, s := range tests {
		_, err := Load(fstest.MapFS{Filename: &fstest.MapFile{Data: []byte(s)}})
		if err == nil {
			t.Errorf("Expected error for %q", s)
		}
	}
}

func TestLoadFolders(t *testing.T) {
	cfg, err := Load(fstest.MapFS{Filename: &fstest.MapFile{Data: []byte("static = \"./assets/\"\ntemplates = \"\"\n[routes]\nblog = \"/blog/\"\ncourses = \"/learn/../courses\"")}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Static != "assets" {
		t.Errorf("Expected %q but got %q", "assets", cfg.Static)
	}
	if cfg.Templates != "" {
		t.Errorf("Expected no templates folder but got %q", cfg.Templates)
	}
	if cfg.Routes.Blog != "/blog" || cfg.Routes.Courses != "/courses" {
		t.Errorf("Expected cleaned routes but got %#v", cfg.Routes)
	}
}
