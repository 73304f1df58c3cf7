package site

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/ancientlore/folio/content"
	"pgregory.net/rapid"
)

// genPosts draws blog posts with distinct slugs and dates. Some have no slug.
func genPosts(t *rapid.T) []content.Item {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	days := rapid.Permutation(rapid.SliceOfNDistinct(rapid.IntRange(0, 1000), n, n, rapid.ID[int]).Draw(t, "days")).Draw(t, "order")
	tagGen := rapid.SliceOfN(rapid.SampledFrom([]string{"go", "react", "css", "rust", "graphql"}), 0, 3)
	items := make([]content.Item, n)
	for i := range items {
		slug := fmt.Sprintf("post-%d", i)
		if rapid.IntRange(0, 4).Draw(t, "slugless") == 0 {
			slug = ""
		}
		items[i] = content.Item{
			ID:        fmt.Sprintf("blog/%d.md", i),
			Category:  content.Blog,
			Slug:      slug,
			Title:     fmt.Sprintf("Post %d", i),
			Date:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days[i]),
			Tags:      tagGen.Draw(t, "tags"),
			Published: true,
		}
	}
	return items
}

func quiet(string, ...any) {}

func TestPropertyOnePagePerPost(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genPosts(t)
		b := Builder{Warnf: quiet}
		pages, err := b.BuildPages(items)
		if err != nil {
			t.Fatal(err)
		}
		want := 0
		for _, item := range items {
			if item.Slug != "" {
				want++
			}
		}
		var posts []Page
		for _, p := range pages {
			if p.Template == BlogPost {
				posts = append(posts, p)
			}
		}
		if len(posts) != want {
			t.Fatalf("Expected %d post pages but got %d", want, len(posts))
		}
		for i, p := range posts {
			if (i == 0) != (p.Context.Next == nil) {
				t.Fatalf("%s: next should be nil only for the newest post", p.Path)
			}
			if (i == len(posts)-1) != (p.Context.Previous == nil) {
				t.Fatalf("%s: previous should be nil only for the oldest post", p.Path)
			}
			if p.Context.Next != nil && "/"+p.Context.Next.Slug != posts[i-1].Path {
				t.Fatalf("%s: next is %s, expected %s", p.Path, p.Context.Next.Slug, posts[i-1].Path)
			}
			if p.Context.Previous != nil && p.Context.Previous.Slug == "" {
				t.Fatalf("%s: links to a post without a slug", p.Path)
			}
		}
	})
}

func TestPropertyDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genPosts(t)
		b := Builder{Warnf: quiet}
		first, err1 := b.BuildPages(items)
		second, err2 := b.BuildPages(items)
		if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(err1, err2) {
			t.Fatal("Expected identical output for identical input")
		}
	})
}

func TestPropertyPermutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genPosts(t)
		shuffled := rapid.Permutation(items).Draw(t, "shuffled")
		b := Builder{Warnf: quiet}
		first, err := b.BuildPages(items)
		if err != nil {
			t.Fatal(err)
		}
		second, err := b.BuildPages(shuffled)
		if err != nil {
			t.Fatal(err)
		}
		// posts have distinct dates, so posts come out identically
		postsOf := func(pages []Page) []Page {
			var r []Page
			for _, p := range pages {
				if p.Template == BlogPost {
					r = append(r, p)
				}
			}
			return r
		}
		if !reflect.DeepEqual(postsOf(first), postsOf(second)) {
			t.Fatal("Post pages depend on input order")
		}
		// tag pages are the same set
		tagsOf := func(pages []Page) []string {
			var r []string
			for _, p := range pages {
				if p.Template == Tag {
					r = append(r, p.Path)
				}
			}
			sort.Strings(r)
			return r
		}
		if !reflect.DeepEqual(tagsOf(first), tagsOf(second)) {
			t.Fatalf("Tag pages differ: %q vs %q", tagsOf(first), tagsOf(second))
		}
	})
}

func TestPropertyUniquePaths(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := Builder{Warnf: quiet}
		pages, err := b.BuildPages(genPosts(t))
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[string]bool)
		for _, p := range pages {
			if seen[p.Path] {
				t.Fatalf("Duplicate path %q", p.Path)
			}
			seen[p.Path] = true
		}
	})
}
