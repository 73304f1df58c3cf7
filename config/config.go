/*
Package config reads the folio.toml file at the root of a site folder.

All settings are optional. For example:

	title = "Jane Doe"
	base_url = "https://janedoe.dev"
	rebuild = "@hourly"

	[routes]
	blog = "/blog"
	courses = "/courses"

	[headers]
	X-Frame-Options = "DENY"
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Filename is the name of the configuration file at the site root.
const Filename = "folio.toml"

// Routes holds the paths of the listing pages. An empty path disables the page.
type Routes struct {
	Home     string `toml:"home"`      // Recent posts
	Blog     string `toml:"blog"`      // All posts
	Courses  string `toml:"courses"`   // All courses
	NotFound string `toml:"not_found"` // Rendered to 404.html
}

// Config contains configuration data from the folio.toml file.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	BaseURL     string `toml:"base_url"`
	Author      string `toml:"author"`

	Content   string `toml:"content"`   // Folder holding Markdown content
	Static    string `toml:"static"`    // Folder copied as-is into the output
	Templates string `toml:"templates"` // Folder holding template overrides
	Output    string `toml:"output"`    // Destination of the build

	Routes    Routes `toml:"routes"`
	HomePosts int    `toml:"home_posts"` // Number of posts on the home page

	Gzip       bool   `toml:"gzip"`        // Write precompressed .gz siblings
	CacheBytes int64  `toml:"cache_bytes"` // Size of the rendered Markdown cache
	Rebuild    string `toml:"rebuild"`     // Cron spec for periodic rebuilds when serving

	Expires       Duration          `toml:"expires"`
	StaticExpires Duration          `toml:"static_expires"`
	Headers       map[string]string `toml:"headers"`
}

// Default returns the configuration used when folio.toml is missing.
func Default() *Config {
	return &Config{
		Title:     "My Site",
		Content:   "content",
		Static:    "static",
		Templates: "template",
		Output:    "public",
		Routes: Routes{
			Home:     "/",
			Blog:     "/blog",
			Courses:  "/courses",
			NotFound: "/404",
		},
		HomePosts:  5,
		CacheBytes: 16 << 20,
	}
}

// Load returns configuration from the folio.toml file in fsys, layered over
// the defaults. It is not an error if the file does not exist.
func Load(fsys fs.FS) (*Config, error) {
	cfg := Default()
	b, err := fs.ReadFile(fsys, Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("Cannot read config file: %w", err)
	}
	err = toml.Unmarshal(b, cfg)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse config file: %w", err)
	}
	if err = cfg.validate(); err != nil {
		return nil, fmt.Errorf("Invalid config file: %w", err)
	}
	return cfg, nil
}

// validate checks the values that cannot be fixed up later.
func (cfg *Config) validate() error {
	for name, r := range map[string]*string{
		"home":      &cfg.Routes.Home,
		"blog":      &cfg.Routes.Blog,
		"courses":   &cfg.Routes.Courses,
		"not_found": &cfg.Routes.NotFound,
	} {
		if *r == "" {
			continue
		}
		if !strings.HasPrefix(*r, "/") {
			return fmt.Errorf("route %s must start with /: %q", name, *r)
		}
		*r = path.Clean(*r)
	}
	if cfg.Content == "" {
		cfg.Content = "."
	}
	for name, f := range map[string]*string{
		"content":   &cfg.Content,
		"static":    &cfg.Static,
		"templates": &cfg.Templates,
	} {
		if *f == "" {
			continue
		}
		*f = path.Clean(*f)
		if !fs.ValidPath(*f) {
			return fmt.Errorf("%s must be a folder within the site: %q", name, *f)
		}
	}
	if cfg.HomePosts < 0 {
		return fmt.Errorf("home_posts cannot be negative: %d", cfg.HomePosts)
	}
	if cfg.Rebuild != "" {
		if _, err := cron.ParseStandard(cfg.Rebuild); err != nil {
			return fmt.Errorf("rebuild: %w", err)
		}
	}
	if cfg.CacheBytes <= 0 {
		return fmt.Errorf("cache_bytes must be positive: %d", cfg.CacheBytes)
	}
	return nil
}

// SiteURL joins the base URL and a page path.
func (cfg *Config) SiteURL(p string) string {
	return strings.TrimSuffix(cfg.BaseURL, "/") + p
}
