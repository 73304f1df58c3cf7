package render

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"strings"

	"github.com/ancientlore/folio/cache"
	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
)

// ExcerptLength is the number of characters kept in an excerpt.
const ExcerptLength = 300

// Markdown renders Markdown source into HTML and a plain text excerpt.
func Markdown(src []byte) (cache.Rendered, error) {
	h := blackfriday.Run(src, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes))
	text, err := plainText(h)
	if err != nil {
		return cache.Rendered{}, err
	}
	return cache.Rendered{
		Content: template.HTML(h),
		Excerpt: prune(text, ExcerptLength),
	}, nil
}

// plainText returns the text of an HTML fragment with whitespace collapsed.
func plainText(h []byte) (string, error) {
	var (
		b    strings.Builder
		skip int
	)
	z := html.NewTokenizer(bytes.NewReader(h))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.Join(strings.Fields(b.String()), " "), nil
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			switch {
			case skip > 0:
				if !isVoid(string(name)) {
					skip++
				}
			// footnote references and the footnote list are not prose
			case string(name) == "sup", hasAttr && isFootnotes(z):
				skip++
			case isBlock(string(name)):
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			if skip > 0 {
				skip--
			} else if name, _ := z.TagName(); isBlock(string(name)) {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// isFootnotes checks whether the current start tag opens the footnote list.
func isFootnotes(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" && string(val) == "footnotes" {
			return true
		}
		if !more {
			return false
		}
	}
}

// isVoid reports whether an element never has an end tag.
func isVoid(name string) bool {
	switch name {
	case "br", "hr", "img", "input", "wbr":
		return true
	}
	return false
}

// isBlock reports whether an element separates words.
func isBlock(name string) bool {
	switch name {
	case "p", "div", "br", "hr", "li", "ul", "ol", "pre", "blockquote", "table", "tr", "td", "th",
		"h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd":
		return true
	}
	return false
}

// prune shortens s to at most n characters, cutting at a word boundary.
func prune(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if r[n] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
