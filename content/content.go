// Package content turns stored post HTML into markup that is safe to render.
package content

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultExcerptLength is the excerpt size, in runes, used for cards and feeds.
const DefaultExcerptLength = 150

const ellipsis = "..."

var (
	policy = newPolicy()
	strict = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

	reClass = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "hr", "div", "span",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"strong", "b", "em", "i", "u", "s", "sub", "sup", "mark",
		"blockquote", "pre", "code",
		"ul", "ol", "li",
		"figure", "figcaption",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption",
	)
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("width", "height").Matching(bluemonday.Integer).OnElements("img")
	p.AllowAttrs("class").Matching(reClass).OnElements("pre", "code", "span", "div", "figure")
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	return p
}

// Sanitize strips everything outside the allow-list from raw: scripts,
// event handler attributes and links or images with non-http(s) schemes.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string) string {
	return policy.Sanitize(raw)
}

// Excerpt returns the plain text of raw truncated to max runes. The "..."
// marker is appended only when text was cut. A non-positive max uses
// DefaultExcerptLength.
func Excerpt(raw string, max int) string {
	if max <= 0 {
		max = DefaultExcerptLength
	}
	text := html.UnescapeString(strict.Sanitize(raw))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:max]), " ") + ellipsis
}

// HTML returns a templ.Component that writes the sanitized form of raw.
// Views insert stored post bodies only through this component.
func HTML(raw string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Sanitize(raw))
		return err
	})
}

// SafeURL returns raw when it is a root-relative path or an http, https or
// mailto URL, and "" otherwise. The result is not HTML-escaped.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
		return val
	default:
		return ""
	}
}
