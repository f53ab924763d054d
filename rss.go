package site

import (
	"encoding/xml"
	"time"

	"github.com/bimaakbar/bimasite/content"
	"github.com/bimaakbar/bimasite/store"
)

const feedPath = "/feed.xml"

// rssFeed is an RSS 2.0 document with an Atom self link.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	AtomNS  string   `xml:"xmlns:atom,attr"`
	Channel struct {
		Title         string    `xml:"title"`
		Link          string    `xml:"link"`
		Description   string    `xml:"description"`
		LastBuildDate string    `xml:"lastBuildDate,omitempty"`
		Self          atomLink  `xml:"atom:link"`
		Items         []rssItem `xml:"item"`
	} `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Category    string  `xml:"category,omitempty"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	ID          string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// newFeed builds the feed of published posts. posts are newest first, so
// the first one dates the build.
func newFeed(cfg SiteConfig, posts []store.Post) rssFeed {
	var f rssFeed
	f.Version = "2.0"
	f.AtomNS = "http://www.w3.org/2005/Atom"
	f.Channel.Title = cfg.Name
	f.Channel.Link = AbsoluteURL(cfg.URL, "/")
	f.Channel.Description = cfg.Description
	f.Channel.Self = atomLink{Href: AbsoluteURL(cfg.URL, feedPath), Rel: "self", Type: "application/rss+xml"}
	if len(posts) > 0 {
		f.Channel.LastBuildDate = posts[0].CreatedAt.UTC().Format(time.RFC1123Z)
	}

	f.Channel.Items = make([]rssItem, len(posts))
	for i, p := range posts {
		link := AbsoluteURL(cfg.URL, p.Link())
		f.Channel.Items[i] = rssItem{
			Title:       p.Title,
			Link:        link,
			Description: content.Excerpt(p.Content, content.DefaultExcerptLength),
			Category:    p.Category,
			PubDate:     p.CreatedAt.UTC().Format(time.RFC1123Z),
			GUID:        rssGUID{ID: link, IsPermaLink: true},
		}
	}
	return f
}
