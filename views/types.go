package views

import (
	"github.com/bimaakbar/bimasite/panel"
	"github.com/bimaakbar/bimasite/store"
)

// SiteConfig holds site-wide settings. Every handler passes it to the
// templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME
	Description string // SITE_DESCRIPTION, shown as the home page tagline
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	NoIndex     bool
	JSONLD      any // Schema.org data, rendered as application/ld+json
}

// FormState carries submitted values and per-field errors back into a form.
type FormState struct {
	Values  map[string]string
	Errors  map[string]string
	Message string // form-level error, e.g. a conflict
}

// Value returns the submitted value of field name.
func (f FormState) Value(name string) string {
	return f.Values[name]
}

// Error returns the error message of field name.
func (f FormState) Error(name string) string {
	return f.Errors[name]
}

// Checked reports whether checkbox name was submitted as on.
func (f FormState) Checked(name string) bool {
	switch f.Values[name] {
	case "on", "true", "1":
		return true
	}
	return false
}

// HomeData is everything the home page shows. Sections whose read failed
// are simply empty.
type HomeData struct {
	Featured       *store.Post
	Posts          []store.Post
	Categories     []string
	ActiveCategory string
	Music          []store.MusicRelease
	Affiliates     []store.AffiliateLink
	Subscribe      SubscribeState
}

// SubscribeState is the newsletter form's outcome.
type SubscribeState struct {
	Email   string
	Message string
	OK      bool
}

// SearchData is the search results page.
type SearchData struct {
	Query string
	Posts []store.Post
	Err   string
}

// LoginData is the sign-in page.
type LoginData struct {
	Email string
	Error string
}

// Form carries the email back into the sign-in form. The password never
// round-trips.
func (d LoginData) Form() FormState {
	return FormState{Values: map[string]string{"email": d.Email}}
}

// Principal is the signed-in administrator shown in the studio header.
type Principal struct {
	Email string
}

// PanelCount is one dashboard tile.
type PanelCount struct {
	Tab   string
	Label string
	Count int
	Err   string
}

// DashboardData is the post-login landing page.
type DashboardData struct {
	Panels []PanelCount
}

// Studio tabs.
const (
	TabPosts       = "posts"
	TabCategories  = "categories"
	TabMusic       = "music"
	TabAffiliates  = "affiliates"
	TabSubscribers = "subscribers"
)

// Tabs lists the studio tabs in display order.
var Tabs = []struct {
	Key   string
	Label string
}{
	{TabPosts, "Posts"},
	{TabCategories, "Categories"},
	{TabMusic, "Music"},
	{TabAffiliates, "Affiliates"},
	{TabSubscribers, "Subscribers"},
}

// TabLabel returns the display label of tab key.
func TabLabel(key string) string {
	for _, t := range Tabs {
		if t.Key == key {
			return t.Label
		}
	}
	return key
}

// NoFilter is the filter of panels that list everything.
type NoFilter = struct{}

// StudioData is one tab of the Content Studio. Only the snapshot matching
// Tab is populated.
type StudioData struct {
	Tab         string
	Posts       panel.Snapshot[store.Post, store.PostFilter]
	Categories  panel.Snapshot[store.Category, NoFilter]
	Music       panel.Snapshot[store.MusicRelease, NoFilter]
	Affiliates  panel.Snapshot[store.AffiliateLink, NoFilter]
	Subscribers panel.Snapshot[store.Subscriber, NoFilter]

	// Form is the inline create/edit form of the non-post tabs. EditID is
	// set when the form edits an existing row.
	Form   FormState
	EditID string
}

// PostFormData is the post editor.
type PostFormData struct {
	ID         string // empty for a new post
	Form       FormState
	Categories []string
}

// DeleteData is the delete confirmation page.
type DeleteData struct {
	Entity  string // display name, e.g. "post"
	Name    string // the item being deleted
	Action  string // POST target
	Cancel  string
	Message string
}

// Page is the per-request context every page component receives.
type Page struct {
	Site      SiteConfig
	Meta      PageMeta
	CSRF      string
	Principal *Principal // nil outside the studio
}
