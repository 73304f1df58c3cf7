package content

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the syntax of a front matter block.
type Format int

const (
	NoFrontMatter Format = iota
	TOML                 // delimited by +++
	YAML                 // delimited by ---
)

var (
	ErrNoFrontMatter   = errors.New("no front matter")
	ErrMissingCategory = errors.New("missing category")
	ErrMissingTitle    = errors.New("missing title")
	ErrMissingDate     = errors.New("blog post with a slug needs a date")
	ErrInvalidSlug     = errors.New("invalid slug")
	ErrInvalidTag      = errors.New("invalid tag")
)

// ParseError reports a content file that could not be turned into an Item.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FrontMatter holds data scraped from a Markdown file.
type FrontMatter struct {
	Title       string   `toml:"title" yaml:"title"`             // Title of this page
	Slug        string   `toml:"slug" yaml:"slug"`               // URL path of this page
	Category    Category `toml:"category" yaml:"category"`       // blog, page or course
	Date        Date     `toml:"date" yaml:"date"`               // Date the article appears
	Tags        []string `toml:"tags" yaml:"tags"`               // Tags to assign to this article
	Sort        *int     `toml:"sort" yaml:"sort"`               // Ordering of courses
	Published   *bool    `toml:"published" yaml:"published"`     // Defaults to true
	Description string   `toml:"description" yaml:"description"` // Summary for listings
	URL         string   `toml:"url" yaml:"url"`                 // External link
}

// Date accepts native TOML and YAML dates as well as free-form date strings.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// frontMatterRegexps are the regular expressions used to split out front matter.
var frontMatterRegexps = []struct {
	format Format
	re     *regexp.Regexp
}{
	{TOML, regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`)},
	{YAML, regexp.MustCompile(`(?m)^\s*---\s*$`)},
}

// ExtractFrontMatter splits the front matter and Markdown content.
func ExtractFrontMatter(x []byte) (Format, []byte, []byte) {
	for _, d := range frontMatterRegexps {
		subs := d.re.Split(string(x), 3)
		if len(subs) != 3 {
			continue
		}
		if s := strings.TrimSpace(subs[0]); len(s) > 0 {
			continue
		}
		return d.format, []byte(strings.TrimSpace(subs[1])), []byte(strings.TrimSpace(subs[2]))
	}
	return NoFrontMatter, nil, x
}

// Parse reads a content file and validates its front matter.
func Parse(id string, b []byte) (Item, error) {
	var (
		fm  FrontMatter
		err error
	)
	format, fmb, body := ExtractFrontMatter(b)
	switch format {
	case TOML:
		err = toml.Unmarshal(fmb, &fm)
	case YAML:
		err = yaml.Unmarshal(fmb, &fm)
	default:
		err = ErrNoFrontMatter
	}
	if err != nil {
		return Item{}, &ParseError{Path: id, Err: err}
	}
	item, err := fm.item(id, body)
	if err != nil {
		return Item{}, &ParseError{Path: id, Err: err}
	}
	return item, nil
}

// item validates the front matter and converts it into an Item.
func (fm *FrontMatter) item(id string, body []byte) (Item, error) {
	if fm.Category == "" {
		return Item{}, ErrMissingCategory
	}
	if strings.TrimSpace(fm.Title) == "" {
		return Item{}, ErrMissingTitle
	}
	slug, err := cleanSlug(fm.Slug)
	if err != nil {
		return Item{}, err
	}
	if fm.Category == Blog && slug != "" && fm.Date.IsZero() {
		return Item{}, ErrMissingDate
	}
	item := Item{
		ID:          id,
		Category:    fm.Category,
		Slug:        slug,
		Title:       strings.TrimSpace(fm.Title),
		Date:        fm.Date.Time,
		SortKey:     fm.Sort,
		Published:   fm.Published == nil || *fm.Published,
		Description: fm.Description,
		URL:         fm.URL,
		Body:        body,
	}
	for _, tag := range fm.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if err = checkTag(tag); err != nil {
			return Item{}, err
		}
		item.Tags = append(item.Tags, tag)
	}
	return item, nil
}

// checkTag rejects tags that cannot be a single segment of /tag/<tag>.
func checkTag(tag string) error {
	if tag == "." || tag == ".." || strings.ContainsAny(tag, "/\\?#") || strings.ContainsFunc(tag, unicode.IsSpace) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return nil
}

// cleanSlug trims surrounding slashes and rejects slugs that cannot be a URL path.
func cleanSlug(s string) (string, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return "", nil
	}
	if !fs.ValidPath(s) || strings.ContainsAny(s, " \t\\?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, s)
	}
	return s, nil
}
