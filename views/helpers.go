package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"net/url"
	"strings"
	"time"

	"github.com/bimaakbar/bimasite/content"
	"github.com/bimaakbar/bimasite/store"
)

const placeholderImage = "/public/placeholder.svg"

// CategoryHref returns the home page link that filters by category. An
// empty category clears the filter.
func CategoryHref(category string) string {
	if category == "" {
		return "/"
	}
	return "/?category=" + url.QueryEscape(category)
}

// FormatDate renders t the way post cards show it.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

func thumbnail(raw string) string {
	if u := content.SafeURL(raw); u != "" {
		return u
	}
	return placeholderImage
}

func pageTitle(p Page) string {
	if p.Meta.Title == "" || p.Meta.Title == p.Site.Name {
		return p.Site.Name
	}
	return p.Meta.Title + " | " + p.Site.Name
}

func metaDescription(p Page) string {
	if p.Meta.Description != "" {
		return p.Meta.Description
	}
	return p.Site.Description
}

func ogType(m PageMeta) string {
	if m.OGType == "" {
		return "website"
	}
	return m.OGType
}

func footerName(s SiteConfig) string {
	if s.Author != "" {
		return s.Author
	}
	return s.Name
}

// noIndex marks pages that must stay out of search engines.
func noIndex(p Page) Page {
	p.Meta.NoIndex = true
	return p
}

func notFoundMessage(msg string) string {
	if msg == "" {
		return "The page you are looking for does not exist."
	}
	return msg
}

// humanize turns a form field name into a label: "song_title" -> "Song title".
func humanize(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	s = strings.Replace(s, " url", " URL", 1)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func tabHref(tab string) string {
	return "/studio/?tab=" + tab
}

// entityAction is the POST target of an entity form: the collection for a
// create, the row for an update.
func entityAction(entity, editID string) string {
	if editID == "" {
		return "/studio/" + entity + "/"
	}
	return "/studio/" + entity + "/" + editID + "/"
}

func entityEditHref(entity, id string) string {
	return tabHref(entity) + "&edit=" + id
}

func entityDeleteHref(entity, id string) string {
	return "/studio/" + entity + "/" + id + "/delete/"
}

var postStatuses = []store.PostStatus{store.StatusAll, store.StatusPublished, store.StatusDraft}

func statusSelected(current, opt store.PostStatus) bool {
	return current == opt || (current == "" && opt == store.StatusAll)
}

func postEditHref(id string) string {
	return "/studio/posts/" + id + "/"
}

func postFormAction(id string) string {
	if id == "" {
		return "/studio/posts/"
	}
	return postEditHref(id)
}

func postFormTitle(id string) string {
	if id == "" {
		return "New post"
	}
	return "Edit post"
}

// categoryOptions keeps a post's current category selectable even after
// the category itself was deleted.
func categoryOptions(categories []string, current string) []string {
	if current == "" {
		return categories
	}
	for _, c := range categories {
		if c == current {
			return categories
		}
	}
	return append(categories[:len(categories):len(categories)], current)
}
