package site

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/bimaakbar/bimasite/panel"
	"github.com/bimaakbar/bimasite/store"
	"github.com/bimaakbar/bimasite/views"
)

func (a *App) studioMeta(title string) views.PageMeta {
	return views.PageMeta{Title: title + " · Content Studio", NoIndex: true}
}

// crud is the repository shape shared by the simple studio entities.
type crud[T, In any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	Delete(ctx context.Context, id string) error
}

// entity describes one studio tab backed by a crud repository.
type entity[T, In any] struct {
	key    string // tab name and URL segment
	label  string // singular display name
	repo   crud[T, In]
	parse  func(url.Values) In
	values func(In) map[string]string
	input  func(T) In
	name   func(T) string
	put    func(*views.StudioData, panel.Snapshot[T, views.NoFilter])
}

func (e entity[T, In]) newPanel() *panel.Panel[T, views.NoFilter] {
	return panel.New[T, views.NoFilter](func(ctx context.Context, _ views.NoFilter) ([]T, error) {
		return e.repo.List(ctx)
	}, views.NoFilter{})
}

func (a *App) categoriesEntity() entity[store.Category, store.CategoryInput] {
	return entity[store.Category, store.CategoryInput]{
		key:    views.TabCategories,
		label:  "category",
		repo:   a.Repos.Categories,
		parse:  ParseCategoryForm,
		values: categoryValues,
		input:  func(c store.Category) store.CategoryInput { return store.CategoryInput{Name: c.Name} },
		name:   func(c store.Category) string { return c.Name },
		put: func(d *views.StudioData, s panel.Snapshot[store.Category, views.NoFilter]) {
			d.Categories = s
		},
	}
}

func (a *App) musicEntity() entity[store.MusicRelease, store.MusicInput] {
	return entity[store.MusicRelease, store.MusicInput]{
		key:    views.TabMusic,
		label:  "music release",
		repo:   a.Repos.Music,
		parse:  ParseMusicForm,
		values: musicValues,
		input: func(m store.MusicRelease) store.MusicInput {
			return store.MusicInput{
				SongTitle:     m.SongTitle,
				ReleaseDate:   m.ReleaseDate.Format(store.DateLayout),
				CoverArtURL:   m.CoverArtURL,
				SpotifyURL:    m.SpotifyURL,
				AppleMusicURL: m.AppleMusicURL,
			}
		},
		name: func(m store.MusicRelease) string { return m.SongTitle },
		put: func(d *views.StudioData, s panel.Snapshot[store.MusicRelease, views.NoFilter]) {
			d.Music = s
		},
	}
}

func (a *App) affiliatesEntity() entity[store.AffiliateLink, store.AffiliateInput] {
	return entity[store.AffiliateLink, store.AffiliateInput]{
		key:    views.TabAffiliates,
		label:  "affiliate link",
		repo:   a.Repos.Affiliates,
		parse:  ParseAffiliateForm,
		values: affiliateValues,
		input: func(l store.AffiliateLink) store.AffiliateInput {
			return store.AffiliateInput{
				ProductName:     l.ProductName,
				ProductURL:      l.ProductURL,
				ProductImageURL: l.ProductImageURL,
				Category:        l.Category,
			}
		},
		name: func(l store.AffiliateLink) string { return l.ProductName },
		put: func(d *views.StudioData, s panel.Snapshot[store.AffiliateLink, views.NoFilter]) {
			d.Affiliates = s
		},
	}
}

func (a *App) subscribersEntity() entity[store.Subscriber, store.SubscriberInput] {
	return entity[store.Subscriber, store.SubscriberInput]{
		key:    views.TabSubscribers,
		label:  "subscriber",
		repo:   a.Repos.Subscribers,
		parse:  ParseSubscriberForm,
		values: subscriberValues,
		input:  func(s store.Subscriber) store.SubscriberInput { return store.SubscriberInput{Email: s.Email} },
		name:   func(s store.Subscriber) string { return s.Email },
		put: func(d *views.StudioData, s panel.Snapshot[store.Subscriber, views.NoFilter]) {
			d.Subscribers = s
		},
	}
}

func renderEntityTab[T, In any](a *App, c echo.Context, e entity[T, In], p *panel.Panel[T, views.NoFilter], status int, form views.FormState, editID string) error {
	d := views.StudioData{Tab: e.key, Form: form, EditID: editID}
	e.put(&d, p.Snapshot())
	return RenderStatus(c, status, views.Studio(a.page(c, a.studioMeta(views.TabLabel(e.key))), d))
}

// showEntityTab renders the tab, with the edit form filled in when the
// edit query parameter names a row.
func showEntityTab[T, In any](a *App, c echo.Context, e entity[T, In]) error {
	ctx := c.Request().Context()
	p := e.newPanel()
	if err := p.Load(ctx); err != nil {
		a.logIfServerError(c, err, "studio: load "+e.key)
	}

	status := http.StatusOK
	var form views.FormState
	editID := c.QueryParam("edit")
	if editID != "" {
		item, err := e.repo.Get(ctx, editID)
		if err != nil {
			a.logIfServerError(c, err, "studio: get "+e.label)
			p.SetFlash(panel.DescribeError(err))
			status = statusFor(err)
			editID = ""
		} else {
			form.Values = e.values(e.input(item))
		}
	}
	return renderEntityTab(a, c, e, p, status, form, editID)
}

// mutateEntity loads the panel, runs op through it and renders the result.
// On failure the submitted values are shown again with their errors.
func mutateEntity[T, In any](a *App, c echo.Context, e entity[T, In], editID string, in In, op func(context.Context) error) error {
	ctx := c.Request().Context()
	p := e.newPanel()
	if err := p.Load(ctx); err != nil {
		a.logIfServerError(c, err, "studio: load "+e.key)
	}

	var opErr error
	err := p.Mutate(ctx, func(ctx context.Context) error {
		opErr = op(ctx)
		return opErr
	})
	if opErr != nil {
		a.logIfServerError(c, opErr, "studio: save "+e.label)
		if errors.Is(opErr, store.ErrNotFound) {
			editID = ""
		}
		form := formState(e.values(in), opErr)
		form.Message = "" // shown as the panel flash
		return renderEntityTab(a, c, e, p, statusFor(opErr), form, editID)
	}
	if err != nil {
		a.logIfServerError(c, err, "studio: reload "+e.key)
	}
	return renderEntityTab(a, c, e, p, http.StatusOK, views.FormState{}, "")
}

func registerEntity[T, In any](a *App, g *echo.Group, e entity[T, In]) {
	g.POST("/"+e.key+"/", func(c echo.Context) error {
		form, err := c.FormParams()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		in := e.parse(form)
		return mutateEntity(a, c, e, "", in, func(ctx context.Context) error {
			_, err := e.repo.Create(ctx, in)
			return err
		})
	})
	g.POST("/"+e.key+"/:id/", func(c echo.Context) error {
		form, err := c.FormParams()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		id := c.Param("id")
		in := e.parse(form)
		return mutateEntity(a, c, e, id, in, func(ctx context.Context) error {
			_, err := e.repo.Update(ctx, id, in)
			return err
		})
	})
	registerDelete(a, g, deleteTarget{
		key:   e.key,
		label: e.label,
		name: func(ctx context.Context, id string) (string, error) {
			item, err := e.repo.Get(ctx, id)
			if err != nil {
				return "", err
			}
			return e.name(item), nil
		},
		perform: func(c echo.Context, id string) error {
			return mutateEntity(a, c, e, "", e.parse(nil), func(ctx context.Context) error {
				return e.repo.Delete(ctx, id)
			})
		},
	})
}

// deleteTarget wires the two-step delete flow for one entity.
type deleteTarget struct {
	key     string
	label   string
	name    func(ctx context.Context, id string) (string, error)
	perform func(c echo.Context, id string) error
}

func registerDelete(a *App, g *echo.Group, t deleteTarget) {
	action := func(id string) string { return "/studio/" + t.key + "/" + id + "/delete/" }
	cancel := "/studio/?tab=" + t.key

	g.GET("/"+t.key+"/:id/delete/", func(c echo.Context) error {
		id := c.Param("id")
		name, err := t.name(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c, a.studioMeta("Not found")), "That "+t.label+" no longer exists."))
			}
			return err
		}
		return Render(c, views.DeleteConfirm(a.page(c, a.studioMeta("Delete "+t.label)), views.DeleteData{
			Entity: t.label,
			Name:   name,
			Action: action(id),
			Cancel: cancel,
		}))
	})
	g.POST("/"+t.key+"/:id/delete/", func(c echo.Context) error {
		id := c.Param("id")
		if c.FormValue("confirm") != "yes" {
			return RenderStatus(c, http.StatusUnprocessableEntity, views.DeleteConfirm(a.page(c, a.studioMeta("Delete "+t.label)), views.DeleteData{
				Entity:  t.label,
				Name:    c.FormValue("name"),
				Action:  action(id),
				Cancel:  cancel,
				Message: "Confirm the deletion to continue.",
			}))
		}
		return t.perform(c, id)
	})
}

// Posts.

func (a *App) postsPanel(f store.PostFilter) *panel.Panel[store.Post, store.PostFilter] {
	return panel.New[store.Post, store.PostFilter](a.Repos.Posts.List, f)
}

func postFilterFromQuery(c echo.Context) store.PostFilter {
	return store.PostFilter{
		Status:        store.ParseStatus(c.QueryParam("status")),
		TitleContains: c.QueryParam("q"),
	}
}

func (a *App) renderPostsTab(c echo.Context, status int, p *panel.Panel[store.Post, store.PostFilter]) error {
	d := views.StudioData{Tab: views.TabPosts, Posts: p.Snapshot()}
	return RenderStatus(c, status, views.Studio(a.page(c, a.studioMeta("Posts")), d))
}

func (a *App) handleStudio(c echo.Context) error {
	switch c.QueryParam("tab") {
	case views.TabCategories:
		return showEntityTab(a, c, a.categoriesEntity())
	case views.TabMusic:
		return showEntityTab(a, c, a.musicEntity())
	case views.TabAffiliates:
		return showEntityTab(a, c, a.affiliatesEntity())
	case views.TabSubscribers:
		return showEntityTab(a, c, a.subscribersEntity())
	}
	p := a.postsPanel(store.PostFilter{Status: store.StatusAll})
	if err := p.SetFilter(c.Request().Context(), postFilterFromQuery(c)); err != nil {
		a.logIfServerError(c, err, "studio: load posts")
	}
	return a.renderPostsTab(c, http.StatusOK, p)
}

func (a *App) categoryNames(c echo.Context) []string {
	names, err := a.Repos.Categories.Names(c.Request().Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("studio: list categories")
	}
	return names
}

func (a *App) renderPostForm(c echo.Context, status int, id string, form views.FormState) error {
	title := "New post"
	if id != "" {
		title = "Edit post"
	}
	return RenderStatus(c, status, views.PostForm(a.page(c, a.studioMeta(title)), views.PostFormData{
		ID:         id,
		Form:       form,
		Categories: a.categoryNames(c),
	}))
}

func (a *App) handlePostNew(c echo.Context) error {
	return a.renderPostForm(c, http.StatusOK, "", views.FormState{})
}

func (a *App) handlePostEdit(c echo.Context) error {
	post, err := a.Repos.Posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return a.postNotFound(c)
		}
		return err
	}
	return a.renderPostForm(c, http.StatusOK, post.ID, views.FormState{Values: postValues(postToInput(post))})
}

func (a *App) postNotFound(c echo.Context) error {
	p := a.postsPanel(store.PostFilter{Status: store.StatusAll})
	if err := p.Load(c.Request().Context()); err != nil {
		a.logIfServerError(c, err, "studio: load posts")
	}
	p.SetFlash(panel.DescribeError(store.ErrNotFound))
	return a.renderPostsTab(c, http.StatusNotFound, p)
}

// runPostMutation loads the unfiltered posts panel and runs op through it.
// It returns the panel for rendering and the error op itself returned.
func (a *App) runPostMutation(c echo.Context, op func(context.Context) error) (*panel.Panel[store.Post, store.PostFilter], error) {
	ctx := c.Request().Context()
	p := a.postsPanel(store.PostFilter{Status: store.StatusAll})
	if err := p.Load(ctx); err != nil {
		a.logIfServerError(c, err, "studio: load posts")
	}

	var opErr error
	err := p.Mutate(ctx, func(ctx context.Context) error {
		opErr = op(ctx)
		return opErr
	})
	if opErr == nil && err != nil {
		a.logIfServerError(c, err, "studio: reload posts")
	}
	return p, opErr
}

// mutatePost saves a post. Failures re-render the editor with the submitted
// values; a missing post goes back to the list.
func (a *App) mutatePost(c echo.Context, id string, in store.PostInput, op func(context.Context) error) error {
	p, opErr := a.runPostMutation(c, op)
	switch {
	case errors.Is(opErr, store.ErrNotFound):
		return a.renderPostsTab(c, http.StatusNotFound, p)
	case opErr != nil:
		a.logIfServerError(c, opErr, "studio: save post")
		return a.renderPostForm(c, statusFor(opErr), id, formState(postValues(in), opErr))
	}
	return a.renderPostsTab(c, http.StatusOK, p)
}

// deletePost removes a post and always lands on the list, with the failure
// in the flash when the delete did not go through.
func (a *App) deletePost(c echo.Context, id string) error {
	p, opErr := a.runPostMutation(c, func(ctx context.Context) error {
		return a.Repos.Posts.Delete(ctx, id)
	})
	if opErr != nil {
		a.logIfServerError(c, opErr, "studio: delete post")
		return a.renderPostsTab(c, statusFor(opErr), p)
	}
	return a.renderPostsTab(c, http.StatusOK, p)
}

func (a *App) handlePostCreate(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in := ParsePostForm(form, true)
	return a.mutatePost(c, "", in, func(ctx context.Context) error {
		_, err := a.Repos.Posts.Create(ctx, in)
		return err
	})
}

func (a *App) handlePostUpdate(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	id := c.Param("id")
	in := ParsePostForm(form, false)
	return a.mutatePost(c, id, in, func(ctx context.Context) error {
		_, err := a.Repos.Posts.Update(ctx, id, in)
		return err
	})
}

func (a *App) postsDeleteTarget() deleteTarget {
	return deleteTarget{
		key:   views.TabPosts,
		label: "post",
		name: func(ctx context.Context, id string) (string, error) {
			post, err := a.Repos.Posts.Get(ctx, id)
			if err != nil {
				return "", err
			}
			return post.Title, nil
		},
		perform: a.deletePost,
	}
}

func handleSlugSuggest(c echo.Context) error {
	return c.String(http.StatusOK, store.DeriveSlug(c.QueryParam("title")))
}

// Dashboard.

func (a *App) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	posts := a.postsPanel(store.PostFilter{Status: store.StatusAll})
	categories := a.categoriesEntity().newPanel()
	music := a.musicEntity().newPanel()
	affiliates := a.affiliatesEntity().newPanel()
	subscribers := a.subscribersEntity().newPanel()

	// Each panel records its own error; one failing panel must not hide
	// the others.
	var g errgroup.Group
	for _, load := range []func(context.Context) error{
		posts.Load, categories.Load, music.Load, affiliates.Load, subscribers.Load,
	} {
		g.Go(func() error {
			if err := load(ctx); err != nil {
				a.logIfServerError(c, err, "dashboard: load panel")
			}
			return nil
		})
	}
	_ = g.Wait()

	d := views.DashboardData{Panels: []views.PanelCount{
		panelCount(views.TabPosts, posts.Snapshot()),
		panelCount(views.TabCategories, categories.Snapshot()),
		panelCount(views.TabMusic, music.Snapshot()),
		panelCount(views.TabAffiliates, affiliates.Snapshot()),
		panelCount(views.TabSubscribers, subscribers.Snapshot()),
	}}
	return Render(c, views.Dashboard(a.page(c, a.studioMeta("Dashboard")), d))
}

func panelCount[T any, F comparable](tab string, s panel.Snapshot[T, F]) views.PanelCount {
	return views.PanelCount{Tab: tab, Label: views.TabLabel(tab), Count: len(s.Items), Err: s.Err}
}
