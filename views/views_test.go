package views

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimaakbar/bimasite/panel"
	"github.com/bimaakbar/bimasite/store"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testPage() Page {
	return Page{
		Site: SiteConfig{Name: "Test Site"},
		CSRF: "tok123",
	}
}

func TestPostPageEscapesAndSanitizes(t *testing.T) {
	post := store.Post{
		Title:        `<b>Bold</b> & "quoted"`,
		Slug:         "bold",
		Content:      `<p onclick="x()">Hello</p><img src="javascript:alert(1)"><a href="https://ok.example.com">ok</a>`,
		ThumbnailURL: "javascript:alert(1)",
		Views:        7,
		CreatedAt:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	out := render(t, PostPage(testPage(), post))

	assert.NotContains(t, out, "<b>Bold</b>")
	assert.Contains(t, out, "&lt;b&gt;Bold&lt;/b&gt;")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `href="https://ok.example.com"`)
	assert.Contains(t, out, "7 views")
	assert.Contains(t, out, "5 March 2024")
}

func TestHomeEmptySections(t *testing.T) {
	out := render(t, Home(testPage(), HomeData{}))
	assert.Contains(t, out, `data-empty="posts"`)
	assert.NotContains(t, out, `id="featured-post"`)
	assert.Contains(t, out, `action="/subscribe/"`)
	assert.Contains(t, out, `value="tok123"`)
}

func TestHomeSubscribeMessage(t *testing.T) {
	out := render(t, Home(testPage(), HomeData{Subscribe: SubscribeState{Message: "Thanks!", OK: true}}))
	assert.Contains(t, out, `id="newsletter-message"`)
	assert.Contains(t, out, "Thanks!")
}

func TestSearchEscapesQuery(t *testing.T) {
	out := render(t, Search(testPage(), SearchData{Query: "<script>"}))
	assert.Contains(t, out, `data-empty="search"`)
	assert.NotContains(t, out, "<script>")
}

func TestStudioListStates(t *testing.T) {
	tests := []struct {
		name string
		snap panel.Snapshot[store.Category, NoFilter]
		want string
	}{
		{"loading", panel.Snapshot[store.Category, NoFilter]{State: panel.Loading}, `data-state="loading"`},
		{"error", panel.Snapshot[store.Category, NoFilter]{State: panel.Error, Err: "Could not reach the data store."}, `data-state="error"`},
		{"empty", panel.Snapshot[store.Category, NoFilter]{State: panel.Ready}, `data-state="empty"`},
		{"ready", panel.Snapshot[store.Category, NoFilter]{State: panel.Ready, Items: []store.Category{{ID: "c1", Name: "Music"}}}, `data-id="c1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, Studio(testPage(), StudioData{Tab: TabCategories, Categories: tt.snap}))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestStudioFlashAndFieldErrors(t *testing.T) {
	d := StudioData{
		Tab:   TabMusic,
		Music: panel.Snapshot[store.MusicRelease, NoFilter]{State: panel.Ready, Flash: panel.DescribeError(errors.New("down"))},
		Form: FormState{
			Values: map[string]string{"song_title": `"Song"`},
			Errors: map[string]string{"release_date": "must be a date (YYYY-MM-DD)"},
		},
		EditID: "m1",
	}
	out := render(t, Studio(testPage(), d))
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, `data-error-for="release_date"`)
	assert.Contains(t, out, `action="/studio/music/m1/"`)
	assert.NotContains(t, out, `value=""Song""`)
}

func TestDeleteConfirmCarriesName(t *testing.T) {
	out := render(t, DeleteConfirm(testPage(), DeleteData{
		Entity:  "category",
		Name:    "Music",
		Action:  "/studio/categories/c1/delete/",
		Cancel:  "/studio/?tab=categories",
		Message: "Confirm the deletion to continue.",
	}))
	assert.Contains(t, out, `name="name" value="Music"`)
	assert.Contains(t, out, `name="confirm" value="yes"`)
	assert.Contains(t, out, "Confirm the deletion to continue.")
}

func TestStudioShowsPrincipal(t *testing.T) {
	p := testPage()
	p.Principal = &Principal{Email: "admin@example.com"}
	out := render(t, Dashboard(p, DashboardData{Panels: []PanelCount{
		{Tab: TabPosts, Label: "Posts", Count: 3},
		{Tab: TabMusic, Label: "Music", Err: "Could not reach the data store."},
	}}))
	assert.Contains(t, out, "admin@example.com")
	assert.Contains(t, out, `data-count="3"`)
	assert.Contains(t, out, "Could not reach the data store.")
}

func TestCategoryHref(t *testing.T) {
	assert.Equal(t, "/", CategoryHref(""))
	assert.Equal(t, "/?category=Rock+%26+Roll", CategoryHref("Rock & Roll"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "1 December 2023", FormatDate(time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)))
}

func TestLayoutHeadMetadata(t *testing.T) {
	p := testPage()
	p.Meta = PageMeta{
		Title:  "Hello",
		URL:    "https://example.com/post/hello/",
		OGType: "article",
		JSONLD: map[string]string{"@type": "BlogPosting", "headline": "</script><b>"},
	}
	out := render(t, PostPage(p, store.Post{Title: "Hello", Slug: "hello"}))

	assert.Contains(t, out, "<title>Hello | Test Site</title>")
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/post/hello/">`)
	assert.Contains(t, out, `<meta property="og:type" content="article">`)
	assert.Contains(t, out, `<script type="application/ld+json">`)
	assert.Contains(t, out, `"@type":"BlogPosting"`)
	assert.NotContains(t, out, "</script><b>")
}

func TestStudioNoIndex(t *testing.T) {
	out := render(t, Dashboard(testPage(), DashboardData{}))
	assert.Contains(t, out, `<meta name="robots" content="noindex, nofollow">`)

	out = render(t, Home(testPage(), HomeData{}))
	assert.NotContains(t, out, `name="robots"`)
}
