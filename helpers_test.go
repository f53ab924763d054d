package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimaakbar/bimasite/store"
)

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		rel  string
		want string
	}{
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com/", "/", "https://example.com/"},
		{"https://example.com", store.Post{Slug: "hello"}.Link(), "https://example.com/post/hello/"},
		{"https://example.com/blog", "/post/hello/", "https://example.com/blog/post/hello/"},
		{"https://example.com", "search/", "https://example.com/search/"},
		{"https://example.com", "/feed.xml", "https://example.com/feed.xml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AbsoluteURL(tt.base, tt.rel), "%s + %s", tt.base, tt.rel)
	}
}

func TestSelectFeatured(t *testing.T) {
	posts := []store.Post{{Slug: "a"}, {Slug: "b", IsFeatured: true}, {Slug: "c", IsFeatured: true}}

	featured, rest := SelectFeatured(posts)
	require.NotNil(t, featured)
	assert.Equal(t, "b", featured.Slug)
	assert.Equal(t, []string{"a", "c"}, slugs(rest))

	featured, rest = SelectFeatured([]store.Post{{Slug: "new"}, {Slug: "old"}})
	require.NotNil(t, featured)
	assert.Equal(t, "new", featured.Slug)
	assert.Equal(t, []string{"old"}, slugs(rest))

	featured, rest = SelectFeatured(nil)
	assert.Nil(t, featured)
	assert.Empty(t, rest)
}

func TestSelectFeaturedDoesNotAliasInput(t *testing.T) {
	posts := []store.Post{{Slug: "a", IsFeatured: true}, {Slug: "b"}}
	_, rest := SelectFeatured(posts)
	rest[0].Slug = "changed"
	assert.Equal(t, "b", posts[1].Slug)
}

func TestFilterByCategory(t *testing.T) {
	posts := []store.Post{{Slug: "a", Category: "Tech"}, {Slug: "b", Category: "Travel"}, {Slug: "c", Category: "Tech"}}

	assert.Equal(t, []string{"a", "c"}, slugs(FilterByCategory(posts, "Tech")))
	assert.Equal(t, []string{"a", "b", "c"}, slugs(FilterByCategory(posts, "")))
	assert.Empty(t, FilterByCategory(posts, "tech"))
}

func slugs(posts []store.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}
