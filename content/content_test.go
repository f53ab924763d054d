package content

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeStripsDangerousMarkup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		banned  []string
		present []string
	}{
		{
			name:    "script element",
			input:   `<p>hi</p><script>alert(1)</script>`,
			banned:  []string{"<script", "alert(1)"},
			present: []string{"<p>hi</p>"},
		},
		{
			name:    "event handler",
			input:   `<img src="https://example.com/a.png" onerror="alert(1)">`,
			banned:  []string{"onerror", "alert"},
			present: []string{`src="https://example.com/a.png"`},
		},
		{
			name:    "javascript link",
			input:   `<a href="javascript:alert(1)">click</a>`,
			banned:  []string{"javascript:", "href"},
			present: []string{"click"},
		},
		{
			name:    "iframe",
			input:   `<iframe src="https://evil.example"></iframe><p>ok</p>`,
			banned:  []string{"<iframe", "evil.example"},
			present: []string{"<p>ok</p>"},
		},
		{
			name:    "style attribute",
			input:   `<p style="background:url(javascript:alert(1))">x</p>`,
			banned:  []string{"style", "javascript"},
			present: []string{"<p>x</p>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, b := range tt.banned {
				if strings.Contains(got, b) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, b)
				}
			}
			for _, p := range tt.present {
				if !strings.Contains(got, p) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, p)
				}
			}
		})
	}
}

func TestSanitizeKeepsFormatting(t *testing.T) {
	input := `<h2>Title</h2><p><strong>bold</strong> and <em>italic</em> <a href="https://example.com">link</a></p><ul><li>one</li></ul><pre><code class="language-go">x := 1</code></pre>`
	got := Sanitize(input)
	for _, want := range []string{"<h2>Title</h2>", "<strong>bold</strong>", "<em>italic</em>", `<a href="https://example.com">link</a>`, "<li>one</li>", `class="language-go"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Sanitize dropped %q: %q", want, got)
		}
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		`<p>Tom &amp; Jerry's "show"</p>`,
		`<a href="https://example.com/?a=1&b=2" title="x">link</a>`,
		`<p>hi</p><script>alert(1)</script><img src="/img.png" alt="a" onload="x()">`,
		`plain text with < and >`,
		`<table><tr><td colspan="2">cell</td></tr></table>`,
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short text kept", "<p>Hello world</p>", 150, "Hello world"},
		{"tags stripped", "<p>Hello <strong>bold</strong> world</p>", 150, "Hello bold world"},
		{"entities unescaped", "<p>Tom &amp; Jerry</p>", 150, "Tom & Jerry"},
		{"whitespace collapsed", "<p>a</p>\n\n<p>b</p>", 150, "a b"},
		{"script content dropped", "<p>x</p><script>alert(1)</script>", 150, "x"},
		{"truncated", "<p>abcdefghij</p>", 5, "abcde..."},
		{"exact length", "<p>abcde</p>", 5, "abcde"},
		{"multibyte runes", "<p>héllo wörld</p>", 4, "héll..."},
		{"default length", "<p>short</p>", 0, "short"},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.input, tt.max); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestExcerptDefaultLength(t *testing.T) {
	long := "<p>" + strings.Repeat("a", DefaultExcerptLength*2) + "</p>"
	got := Excerpt(long, 0)
	if !strings.HasSuffix(got, ellipsis) {
		t.Fatalf("expected marker on truncated excerpt: %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, ellipsis)); n != DefaultExcerptLength {
		t.Errorf("excerpt body length = %d, want %d", n, DefaultExcerptLength)
	}
}

func TestHTMLComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(`<p>ok</p><script>bad()</script>`).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "<p>ok</p>" {
		t.Errorf("HTML rendered %q, want %q", got, "<p>ok</p>")
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.com/a.png", "https://example.com/a.png"},
		{"  http://example.com  ", "http://example.com"},
		{"/static/a.png", "/static/a.png"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"javascript:alert(1)", ""},
		{"JavaScript:alert(1)", ""},
		{"data:text/html;base64,xx", ""},
		{"//evil.example/x", ""},
		{"relative/path", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
