// Package site is a personal content site: a public blog with music
// releases, affiliate picks and a newsletter, plus a session-gated Content
// Studio for managing all of it.
//
// It is built with Echo, templ and database/sql. Handlers depend on the
// repository interfaces in repos.go; Open wires them to a *store.Store.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bimaakbar/bimasite/store"
)

// App is the central application. It wires together the repositories,
// Session Guard, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Logger zerolog.Logger
	Repos  Repos
	Guard  *SessionGuard

	store            *store.Store
	signInLimiter    *Limiter
	subscribeLimiter *Limiter
	customRoutes     []func(*App)
	now              func() time.Time
}

// New creates an App serving repos. Routes and middleware are registered
// immediately, so a.Echo can be used as an http.Handler.
func New(cfg SiteConfig, repos Repos, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: zerolog.Nop(),
		Repos:  repos,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	a.signInLimiter = NewLimiter(cfg.SignInAttempts, cfg.RateLimitWindow, a.now)
	a.subscribeLimiter = NewLimiter(cfg.SubscribeLimit, cfg.RateLimitWindow, a.now)
	a.Guard = NewSessionGuard(repos.Users, a.signInLimiter, a.Logger)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

// Open validates cfg, connects to the data store, creates the first
// administrator if configured and returns the App.
func Open(ctx context.Context, cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, store.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("site: open store: %w", err)
	}
	a := New(cfg, NewRepos(s), opts...)
	a.store = s

	created, err := BootstrapAdmin(ctx, store.NewUserRepo(s), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		a.Close()
		return nil, err
	}
	if created {
		a.Logger.Info().Str("email", cfg.AdminEmail).Msg("created first administrator")
	}
	return a, nil
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.Config.Addr).Str("driver", a.Config.DBDriver).Msg("listening")
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info().Msg("shutting down")
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET(feedPath, a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/search/", a.handleSearch)
	e.POST("/subscribe/", a.handleSubscribe)

	// Auth routes
	e.GET("/login/", a.handleLoginPage)
	e.POST("/login/", a.handleLogin)
	e.POST("/logout/", a.handleLogout)

	// Content Studio
	e.GET("/dashboard/", a.handleDashboard, a.Guard.RequireSession)
	s := e.Group("/studio", a.Guard.RequireSession)
	s.GET("/", a.handleStudio)
	s.GET("/posts/new/", a.handlePostNew)
	s.GET("/posts/slug/", handleSlugSuggest)
	s.GET("/posts/:id/", a.handlePostEdit)
	s.POST("/posts/", a.handlePostCreate)
	s.POST("/posts/:id/", a.handlePostUpdate)
	registerEntity(a, s, a.categoriesEntity())
	registerEntity(a, s, a.musicEntity())
	registerEntity(a, s, a.affiliatesEntity())
	registerEntity(a, s, a.subscribersEntity())
	registerDelete(a, s, a.postsDeleteTarget())
}

// Close stops background work and closes the data store if Open created it.
func (a *App) Close() error {
	a.signInLimiter.Stop()
	a.subscribeLimiter.Stop()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
