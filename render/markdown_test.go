package render

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMarkdown(t *testing.T) {
	r, err := Markdown([]byte("# Title\n\nSome *emphasised* text.[^1]\n\n- one\n- two\n\n[^1]: A footnote.\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(r.Content), ">Title</h1>") {
		t.Errorf("Expected heading in %q", r.Content)
	}
	if !strings.Contains(string(r.Content), "<em>emphasised</em>") {
		t.Errorf("Expected emphasis in %q", r.Content)
	}
	expect := "Title Some emphasised text. one two"
	if r.Excerpt != expect {
		t.Errorf("Expected %q but got %q", expect, r.Excerpt)
	}
}

func TestPrune(t *testing.T) {
	tests := []struct {
		s      string
		n      int
		expect string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"the quick brown fox", 12, "the quick…"},
		{"one, two, three", 9, "one, two…"},
		{"unbrokenword", 5, "unbro…"},
		{"éééé ééé", 6, "éééé…"},
	}
	for _, tt := range tests {
		if got := prune(tt.s, tt.n); got != tt.expect {
			t.Errorf("prune(%q, %d): expected %q but got %q", tt.s, tt.n, tt.expect, got)
		}
	}
}

func TestExcerptLength(t *testing.T) {
	r, err := Markdown([]byte(strings.Repeat("word ", 200)))
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(r.Excerpt); n > ExcerptLength+1 {
		t.Errorf("Expected at most %d characters but got %d", ExcerptLength+1, n)
	}
	if !strings.HasSuffix(r.Excerpt, "word…") {
		t.Errorf("Expected excerpt to end on a whole word but got %q", r.Excerpt)
	}
}
