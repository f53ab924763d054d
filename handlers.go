package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/bimaakbar/bimasite/content"
	"github.com/bimaakbar/bimasite/store"
	"github.com/bimaakbar/bimasite/views"
)

// loadHome reads every home page section concurrently. A section whose
// read fails is logged and left empty.
func (a *App) loadHome(c echo.Context, category string) views.HomeData {
	ctx := c.Request().Context()
	var (
		posts      []store.Post
		categories []string
		music      []store.MusicRelease
		affiliates []store.AffiliateLink
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if posts, err = a.Repos.Posts.List(ctx, store.PostFilter{Status: store.StatusPublished}); err != nil {
			a.Logger.Error().Err(err).Msg("home: list posts")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = a.Repos.Categories.Names(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("home: list categories")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if music, err = a.Repos.Music.List(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("home: list music")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if affiliates, err = a.Repos.Affiliates.List(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("home: list affiliates")
		}
		return nil
	})
	_ = g.Wait()

	featured, rest := SelectFeatured(posts)
	return views.HomeData{
		Featured:       featured,
		Posts:          FilterByCategory(rest, category),
		Categories:     categories,
		ActiveCategory: category,
		Music:          music,
		Affiliates:     affiliates,
	}
}

func (a *App) homeMeta() views.PageMeta {
	return views.PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         AbsoluteURL(a.Config.URL, "/"),
		JSONLD:      a.Config.websiteLD(),
	}
}

func (a *App) handleHome(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	data := a.loadHome(c, category)
	return Render(c, views.Home(a.page(c, a.homeMeta()), data))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Repos.Posts.GetPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			meta := views.PageMeta{Title: "Not found", NoIndex: true}
			return RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c, meta), "This post does not exist or is not published."))
		}
		return err
	}
	if err := a.Repos.Posts.IncrementViews(ctx, post.ID); err != nil {
		a.Logger.Warn().Err(err).Str("post", post.ID).Msg("increment views")
	} else {
		post.Views++
	}
	meta := views.PageMeta{
		Title:       post.Title,
		Description: content.Excerpt(post.Content, content.DefaultExcerptLength),
		URL:         AbsoluteURL(a.Config.URL, post.Link()),
		OGType:      "article",
		Image:       content.SafeURL(post.ThumbnailURL),
		JSONLD:      a.Config.blogPostingLD(post),
	}
	return Render(c, views.PostPage(a.page(c, meta), post))
}

func (a *App) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	meta := views.PageMeta{Title: "Search", URL: AbsoluteURL(a.Config.URL, "/search/")}
	data := views.SearchData{Query: q}
	if q == "" {
		return Render(c, views.Search(a.page(c, meta), data))
	}
	posts, err := a.Repos.Posts.List(c.Request().Context(), store.PostFilter{
		Status:        store.StatusPublished,
		TitleContains: q,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("q", q).Msg("search posts")
		data.Err = "Search is unavailable right now. Please try again."
		return RenderStatus(c, http.StatusInternalServerError, views.Search(a.page(c, meta), data))
	}
	data.Posts = posts
	return Render(c, views.Search(a.page(c, meta), data))
}

// Newsletter outcomes.
const (
	msgSubscribed        = "Thanks for subscribing!"
	msgAlreadySubscribed = "This email is already subscribed!"
	msgInvalidEmail      = "Please enter a valid email address."
	msgSubscribeFailed   = "Subscription failed. Please try again."
	msgTooManyAttempts   = "Too many attempts. Please try again later."
)

func (a *App) handleSubscribe(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	state := views.SubscribeState{Email: email}
	status := http.StatusOK

	if !a.subscribeLimiter.Allow(c.RealIP()) {
		state.Message = msgTooManyAttempts
		status = http.StatusTooManyRequests
	} else if _, err := a.Repos.Subscribers.Subscribe(c.Request().Context(), email); err != nil {
		status = statusFor(err)
		switch {
		case errors.Is(err, store.ErrConflict):
			state.Message = msgAlreadySubscribed
		case errors.Is(err, store.ErrInvalid):
			state.Message = msgInvalidEmail
		default:
			a.Logger.Error().Err(err).Msg("subscribe")
			state.Message = msgSubscribeFailed
		}
	} else {
		state = views.SubscribeState{Message: msgSubscribed, OK: true}
	}

	data := a.loadHome(c, "")
	data.Subscribe = state
	return RenderStatus(c, status, views.Home(a.page(c, a.homeMeta()), data))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Repos.Posts.List(c.Request().Context(), store.PostFilter{Status: store.StatusPublished})
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", newSitemap(a.Config.URL, posts))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Repos.Posts.List(c.Request().Context(), store.PostFilter{Status: store.StatusPublished})
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", newFeed(a.Config, posts))
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /studio/\n")
	b.WriteString("Disallow: /dashboard/\n")
	b.WriteString("Disallow: /login/\n")
	b.WriteString("Sitemap: " + a.Config.URL + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleLoginPage(c echo.Context) error {
	if a.Guard.CheckSession(c).Authenticated {
		return c.Redirect(http.StatusSeeOther, "/dashboard/")
	}
	return Render(c, views.Login(a.page(c, views.PageMeta{Title: "Sign in"}), views.LoginData{}))
}

func (a *App) handleLogin(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	_, err := a.Guard.SignIn(c, email, password)
	if err == nil {
		return c.Redirect(http.StatusSeeOther, "/dashboard/")
	}

	data := views.LoginData{Email: email}
	var status int
	switch {
	case errors.Is(err, ErrRateLimited):
		status = http.StatusTooManyRequests
		data.Error = "Too many sign-in attempts. Try again later."
	case errors.Is(err, store.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		data.Error = "Invalid email or password."
	default:
		a.Logger.Error().Err(err).Msg("sign in")
		status = http.StatusInternalServerError
		data.Error = "Sign-in is unavailable right now. Please try again."
	}
	return RenderStatus(c, status, views.Login(a.page(c, views.PageMeta{Title: "Sign in"}), data))
}

func (a *App) handleLogout(c echo.Context) error {
	if err := a.Guard.SignOut(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login/")
}
