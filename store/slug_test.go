package store

import (
	"regexp"
	"strings"
	"testing"
)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"---already-a-slug---", "already-a-slug"},
		{"Rilis Musik Baru!!!", "rilis-musik-baru"},
		{"Café & Crème", "caf-cr-me"},
		{"", ""},
		{"!!!", ""},
		{"UPPER lower 123", "upper-lower-123"},
		{"a__b..c", "a-b-c"},
	}
	for _, tt := range tests {
		if got := DeriveSlug(tt.input); got != tt.want {
			t.Errorf("DeriveSlug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

var validSlug = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

func TestDeriveSlugProperties(t *testing.T) {
	titles := []string{
		"Hello, World! 2024",
		"-x-",
		"  many   spaces  ",
		"emoji 🎵 title",
		"tab\tnew\nline",
		"ÀÉÎ õü",
		"already-valid-slug",
		"a",
		"-",
		"1 2 3 4 5",
	}
	for _, title := range titles {
		slug := DeriveSlug(title)
		if !validSlug.MatchString(slug) {
			t.Errorf("DeriveSlug(%q) = %q, not a valid slug", title, slug)
		}
		if strings.Contains(slug, "--") {
			t.Errorf("DeriveSlug(%q) = %q contains consecutive hyphens", title, slug)
		}
		if again := DeriveSlug(slug); again != slug {
			t.Errorf("DeriveSlug not idempotent for %q: %q then %q", title, slug, again)
		}
	}
}
