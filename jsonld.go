package site

import (
	"time"

	"github.com/bimaakbar/bimasite/content"
	"github.com/bimaakbar/bimasite/store"
)

// jsonLD is a Schema.org object, rendered by the layout as
// application/ld+json.
type jsonLD map[string]any

func (c SiteConfig) authorLD() map[string]string {
	if c.Author == "" {
		return nil
	}
	return map[string]string{"@type": "Person", "name": c.Author}
}

// websiteLD describes the site and its search action for the home page.
func (c SiteConfig) websiteLD() jsonLD {
	data := jsonLD{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     c.Name,
		"url":      AbsoluteURL(c.URL, "/"),
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      AbsoluteURL(c.URL, "/search/") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if c.Description != "" {
		data["description"] = c.Description
	}
	if author := c.authorLD(); author != nil {
		data["author"] = author
	}
	return data
}

// blogPostingLD describes one published post.
func (c SiteConfig) blogPostingLD(post store.Post) jsonLD {
	postURL := AbsoluteURL(c.URL, post.Link())
	data := jsonLD{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   content.Excerpt(post.Content, content.DefaultExcerptLength),
		"datePublished": post.CreatedAt.UTC().Format(time.RFC3339),
		"url":           postURL,
		"publisher":     map[string]string{"@type": "Organization", "name": c.Name},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if img := content.SafeURL(post.ThumbnailURL); img != "" {
		data["image"] = img
	}
	if author := c.authorLD(); author != nil {
		data["author"] = author
	}
	if post.Category != "" {
		data["articleSection"] = post.Category
	}
	return data
}
