package site

import (
	"encoding/xml"
	"time"

	"github.com/bimaakbar/bimasite/store"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (s *sitemapURLSet) add(loc string, modified time.Time) {
	u := sitemapURL{Loc: loc}
	if !modified.IsZero() {
		u.LastMod = modified.UTC().Format(store.DateLayout)
	}
	s.URLs = append(s.URLs, u)
}

// newSitemap lists the public pages: home, search and every published post.
// The home page changes whenever a post is published, so it carries the
// newest post's date.
func newSitemap(base string, posts []store.Post) sitemapURLSet {
	s := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	var newest time.Time
	if len(posts) > 0 {
		newest = posts[0].CreatedAt
	}
	s.add(AbsoluteURL(base, "/"), newest)
	s.add(AbsoluteURL(base, "/search/"), time.Time{})
	for _, p := range posts {
		s.add(AbsoluteURL(base, p.Link()), p.CreatedAt)
	}
	return s
}
