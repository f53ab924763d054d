package site

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimaakbar/bimasite/store"
)

const (
	testSecret   = "test-session-secret-0123456789abcdef"
	testEmail    = "admin@example.com"
	testPassword = "correct-horse-battery"
)

type testSite struct {
	t      *testing.T
	app    *App
	repos  Repos
	srv    *httptest.Server
	client *http.Client
}

func newTestSite(t *testing.T, mutate ...func(*SiteConfig)) *testSite {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, store.Options{DSN: filepath.Join(t.TempDir(), "site.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = BootstrapAdmin(ctx, store.NewUserRepo(s), testEmail, testPassword)
	require.NoError(t, err)

	cfg := SiteConfig{
		Name:          "Test Site",
		URL:           "http://example.test",
		SessionSecret: testSecret,
		StaticDir:     t.TempDir(),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	repos := NewRepos(s)
	app := New(cfg, repos)
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testSite{t: t, app: app, repos: repos, srv: srv, client: client}
}

func (ts *testSite) get(path string) (*http.Response, string) {
	ts.t.Helper()
	resp, err := ts.client.Get(ts.srv.URL + path)
	require.NoError(ts.t, err)
	return resp, readBody(ts.t, resp)
}

// post submits form with the visitor's CSRF token.
func (ts *testSite) post(path string, form url.Values) (*http.Response, string) {
	ts.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", ts.csrf())
	resp, err := ts.client.PostForm(ts.srv.URL+path, form)
	require.NoError(ts.t, err)
	return resp, readBody(ts.t, resp)
}

func (ts *testSite) csrf() string {
	ts.t.Helper()
	u, _ := url.Parse(ts.srv.URL)
	find := func() string {
		for _, c := range ts.client.Jar.Cookies(u) {
			if c.Name == "_csrf" {
				return c.Value
			}
		}
		return ""
	}
	if tok := find(); tok != "" {
		return tok
	}
	ts.get("/login/")
	tok := find()
	require.NotEmpty(ts.t, tok, "csrf cookie")
	return tok
}

func (ts *testSite) login() {
	ts.t.Helper()
	resp, _ := ts.post("/login/", url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(ts.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(ts.t, "/dashboard/", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// strictUsers fails the test if the Session Guard touches the data store.
type strictUsers struct {
	t *testing.T
}

func (u strictUsers) Get(context.Context, string) (store.User, error) {
	u.t.Errorf("unexpected user lookup")
	return store.User{}, store.ErrNotFound
}

func (u strictUsers) Authenticate(context.Context, string, string) (store.User, error) {
	u.t.Errorf("unexpected authenticate")
	return store.User{}, store.ErrInvalidCredentials
}

func TestStudioRedirectsWithoutSession(t *testing.T) {
	app := New(SiteConfig{SessionSecret: testSecret}, Repos{Users: strictUsers{t}})
	defer app.Close()

	paths := []string{"/dashboard/", "/studio/", "/studio/?tab=music", "/studio/posts/new/", "/studio/categories/abc/delete/"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login/", rec.Header().Get("Location"))
		})
	}
}

func TestStudioRejectsForgedCookie(t *testing.T) {
	ts := newTestSite(t)
	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/studio/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionName, Value: "forged"})
	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginLogout(t *testing.T) {
	ts := newTestSite(t)

	resp, body := ts.post("/login/", url.Values{"email": {testEmail}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password.")

	ts.login()

	resp, body = ts.get("/dashboard/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, testEmail)
	assert.Contains(t, body, "data-panel")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, _ = ts.get("/login/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/", resp.Header.Get("Location"))

	resp, _ = ts.post("/logout/", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login/", resp.Header.Get("Location"))

	resp, _ = ts.get("/studio/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestSite(t, func(c *SiteConfig) { c.SignInAttempts = 2 })

	for i := 0; i < 2; i++ {
		resp, _ := ts.post("/login/", url.Values{"email": {testEmail}, "password": {"wrong-password"}})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := ts.post("/login/", url.Values{"email": {testEmail}, "password": {testPassword}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "Too many sign-in attempts")
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	ts := newTestSite(t)
	resp, err := ts.client.PostForm(ts.srv.URL+"/subscribe/", url.Values{"email": {"a@example.com"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSubscribe(t *testing.T) {
	ts := newTestSite(t)

	resp, body := ts.post("/subscribe/", url.Values{"email": {"Reader@Example.com"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, msgSubscribed)

	resp, body = ts.post("/subscribe/", url.Values{"email": {"reader@example.com"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, msgAlreadySubscribed)

	resp, body = ts.post("/subscribe/", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, msgInvalidEmail)

	subs, err := ts.repos.Subscribers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "reader@example.com", subs[0].Email)
}

func TestSubscribeRateLimited(t *testing.T) {
	ts := newTestSite(t, func(c *SiteConfig) { c.SubscribeLimit = 1 })

	resp, _ := ts.post("/subscribe/", url.Values{"email": {"one@example.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := ts.post("/subscribe/", url.Values{"email": {"two@example.com"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, msgTooManyAttempts)
}

func createPost(t *testing.T, repos Repos, in store.PostInput) store.Post {
	t.Helper()
	p, err := repos.Posts.Create(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestPostPage(t *testing.T) {
	ts := newTestSite(t)
	createPost(t, ts.repos, store.PostInput{
		Title:     "Hello World",
		Slug:      "hello-world",
		Content:   `<p>Hi <strong>there</strong></p><script>alert(1)</script>`,
		Published: true,
	})
	createPost(t, ts.repos, store.PostInput{Title: "Secret", Slug: "secret"})

	resp, body := ts.get("/post/hello-world/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, "<strong>there</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "1 views")

	_, body = ts.get("/post/hello-world/")
	assert.Contains(t, body, "2 views")

	resp, _ = ts.get("/post/secret/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.get("/post/missing/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHomeAndSearch(t *testing.T) {
	ts := newTestSite(t)
	createPost(t, ts.repos, store.PostInput{Title: "Go Tips", Slug: "go-tips", Category: "Tech", Published: true})
	createPost(t, ts.repos, store.PostInput{Title: "Road Trip", Slug: "road-trip", Category: "Travel", Published: true, IsFeatured: true})
	createPost(t, ts.repos, store.PostInput{Title: "Draft Notes", Slug: "draft-notes", Published: false})

	resp, body := ts.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="featured-post"`)
	assert.Contains(t, body, "Road Trip")
	assert.Contains(t, body, "Go Tips")
	assert.NotContains(t, body, "Draft Notes")

	_, body = ts.get("/?category=Travel")
	assert.NotContains(t, body, `data-slug="go-tips"`)

	_, body = ts.get("/search/?q=go")
	assert.Contains(t, body, "Go Tips")
	assert.NotContains(t, body, "Road Trip")

	_, body = ts.get("/search/?q=draft")
	assert.Contains(t, body, `data-empty="search"`)
}

func TestPublicMisc(t *testing.T) {
	ts := newTestSite(t)
	createPost(t, ts.repos, store.PostInput{Title: "Feed Me", Slug: "feed-me", Published: true})

	resp, _ := ts.get("/blog")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body := ts.get("/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Disallow: /studio/")

	resp, body = ts.get("/feed.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http://example.test/post/feed-me/")

	resp, body = ts.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http://example.test/post/feed-me/")
}

func TestStudioCategories(t *testing.T) {
	ts := newTestSite(t)
	ts.login()

	resp, body := ts.post("/studio/categories/", url.Values{"name": {"Music"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "data-row")
	assert.Contains(t, body, "Music")

	resp, body = ts.post("/studio/categories/", url.Values{"name": {"Music"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "category with this name already exists.")

	resp, body = ts.post("/studio/categories/", url.Values{"name": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `data-error-for="name"`)

	cats, err := ts.repos.Categories.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)

	resp, body = ts.get("/studio/?tab=categories&edit=" + cats[0].ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/studio/categories/`+cats[0].ID+`/"`)

	resp, _ = ts.post("/studio/categories/"+cats[0].ID+"/", url.Values{"name": {"Songs"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := ts.repos.Categories.Get(context.Background(), cats[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Songs", got.Name)

	resp, _ = ts.post("/studio/categories/missing/", url.Values{"name": {"Other"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStudioPosts(t *testing.T) {
	ts := newTestSite(t)
	ts.login()

	resp, body := ts.post("/studio/posts/", url.Values{"title": {"Hello World"}, "content": {"<p>Body</p>"}, "published": {"on"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello World")

	posts, err := ts.repos.Posts.List(context.Background(), store.PostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello-world", posts[0].Slug)
	assert.True(t, posts[0].Published)

	resp, body = ts.post("/studio/posts/", url.Values{"title": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `data-error-for="title"`)

	resp, body = ts.post("/studio/posts/", url.Values{"title": {"Hello World"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "post with this slug already exists.")

	resp, _ = ts.post("/studio/posts/"+posts[0].ID+"/", url.Values{"title": {"Hello Again"}, "slug": {"hello-world"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := ts.repos.Posts.Get(context.Background(), posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello Again", got.Title)
	assert.False(t, got.Published)

	resp, _ = ts.post("/studio/posts/missing/", url.Values{"title": {"X"}, "slug": {"x"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.get("/studio/posts/missing/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = ts.get("/studio/?tab=posts&status=draft")
	assert.Contains(t, body, "Hello Again")
	_, body = ts.get("/studio/?tab=posts&status=published")
	assert.Contains(t, body, `data-state="empty"`)
}

func TestSlugSuggest(t *testing.T) {
	ts := newTestSite(t)
	ts.login()

	resp, body := ts.get("/studio/posts/slug/?title=" + url.QueryEscape("Hello, World! 2024"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello-world-2024", strings.TrimSpace(body))
}

func TestDeleteConfirmation(t *testing.T) {
	ts := newTestSite(t)
	ts.login()
	ctx := context.Background()

	link, err := ts.repos.Affiliates.Create(ctx, store.AffiliateInput{ProductName: "Headphones", ProductURL: "https://shop.example.com/hp"})
	require.NoError(t, err)
	path := "/studio/affiliates/" + link.ID + "/delete/"

	resp, body := ts.get(path)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Headphones")

	resp, _ = ts.post(path, url.Values{"name": {"Headphones"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	_, err = ts.repos.Affiliates.Get(ctx, link.ID)
	require.NoError(t, err, "unconfirmed delete must not remove the row")

	resp, body = ts.post(path, url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Headphones")
	_, err = ts.repos.Affiliates.Get(ctx, link.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	resp, _ = ts.get(path)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	post := createPost(t, ts.repos, store.PostInput{Title: "Gone Soon", Slug: "gone-soon"})
	resp, _ = ts.post("/studio/posts/"+post.ID+"/delete/", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = ts.repos.Posts.Get(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// failingPostDeletes is a post repository whose deletes always hit a store
// outage.
type failingPostDeletes struct {
	PostRepository
}

func (failingPostDeletes) Delete(context.Context, string) error {
	return &store.StoreError{Op: "delete", Entity: "post", Err: errors.New("connection reset")}
}

func TestDeletePostFailureKeepsList(t *testing.T) {
	ts := newTestSite(t)
	ts.login()
	ctx := context.Background()

	post := createPost(t, ts.repos, store.PostInput{Title: "Still Here", Slug: "still-here"})
	ts.app.Repos.Posts = failingPostDeletes{ts.repos.Posts}

	resp, body := ts.post("/studio/posts/"+post.ID+"/delete/", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, `data-id="`+post.ID+`"`)
	assert.Contains(t, body, "Still Here")
	assert.NotContains(t, body, `id="post-form"`)

	_, err := ts.repos.Posts.Get(ctx, post.ID)
	assert.NoError(t, err)
}

func TestDashboardCounts(t *testing.T) {
	ts := newTestSite(t)
	ts.login()
	createPost(t, ts.repos, store.PostInput{Title: "One", Slug: "one"})
	createPost(t, ts.repos, store.PostInput{Title: "Two", Slug: "two"})

	resp, body := ts.get("/dashboard/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-panel="posts"`)
	assert.Contains(t, body, `data-count="2"`)
}
