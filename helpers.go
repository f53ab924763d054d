package site

import (
	"net/url"
	"strings"

	"github.com/bimaakbar/bimasite/store"
)

// AbsoluteURL resolves a site-relative path such as store.Post.Link against
// the public base URL. Any path on base is kept as a prefix.
func AbsoluteURL(base, rel string) string {
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimSuffix(base, "/") + rel
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + rel
	u.RawPath = ""
	return u.String()
}

// SelectFeatured picks the home page's featured post: the first post marked
// featured, else the first post. posts are expected newest first. The
// remaining posts keep their order.
func SelectFeatured(posts []store.Post) (*store.Post, []store.Post) {
	if len(posts) == 0 {
		return nil, nil
	}
	idx := 0
	for i, p := range posts {
		if p.IsFeatured {
			idx = i
			break
		}
	}
	featured := posts[idx]
	rest := make([]store.Post, 0, len(posts)-1)
	rest = append(rest, posts[:idx]...)
	rest = append(rest, posts[idx+1:]...)
	return &featured, rest
}

// FilterByCategory returns the posts whose category equals category. An
// empty category returns posts unchanged.
func FilterByCategory(posts []store.Post, category string) []store.Post {
	if category == "" {
		return posts
	}
	var out []store.Post
	for _, p := range posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
