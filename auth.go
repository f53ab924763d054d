package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bimaakbar/bimasite/store"
)

const (
	sessionName    = "admin_session"
	sessionUserKey = "user_id"
	sessionCtxKey  = "session"
)

// ErrRateLimited is returned by SignIn when the client has used up its
// attempts for the current window.
var ErrRateLimited = errors.New("too many sign-in attempts")

// Session is the outcome of a session check. The zero value is
// unauthenticated.
type Session struct {
	Authenticated bool
	UserID        string
	Email         string
}

// SessionGuard answers whether a request carries a valid administrator
// session, and signs administrators in and out. Any failure while checking
// a session is treated as unauthenticated.
type SessionGuard struct {
	users   UserRepository
	limiter *Limiter
	log     zerolog.Logger
}

// NewSessionGuard returns a guard that authenticates against users and
// rate-limits failed sign-ins with limiter.
func NewSessionGuard(users UserRepository, limiter *Limiter, log zerolog.Logger) *SessionGuard {
	return &SessionGuard{users: users, limiter: limiter, log: log}
}

// cookieUserID reads the principal id from the session cookie without
// touching the data store.
func cookieUserID(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[sessionUserKey].(string)
	return id
}

// CheckSession returns the current session. The principal must still exist
// in the data store.
func (g *SessionGuard) CheckSession(c echo.Context) Session {
	id := cookieUserID(c)
	if id == "" {
		return Session{}
	}
	u, err := g.users.Get(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			g.log.Error().Err(err).Msg("session check failed")
		}
		return Session{}
	}
	return Session{Authenticated: true, UserID: u.ID, Email: u.Email}
}

// RequireSession redirects unauthenticated requests to the sign-in page
// before the wrapped handler runs. Requests without a session cookie are
// redirected without any data store call.
func (g *SessionGuard) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := g.CheckSession(c)
		if !s.Authenticated {
			return c.Redirect(http.StatusSeeOther, "/login/")
		}
		c.Set(sessionCtxKey, s)
		return next(c)
	}
}

// SignIn checks the credentials and, on success, stores the principal in
// the session cookie. Failed attempts count against the client IP.
func (g *SessionGuard) SignIn(c echo.Context, email, password string) (Session, error) {
	ip := c.RealIP()
	if !g.limiter.Check(ip) {
		return Session{}, ErrRateLimited
	}
	u, err := g.users.Authenticate(c.Request().Context(), email, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			g.limiter.Record(ip)
		}
		return Session{}, err
	}
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	sess.Values[sessionUserKey] = u.ID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return Session{}, fmt.Errorf("sign in: save session: %w", err)
	}
	return Session{Authenticated: true, UserID: u.ID, Email: u.Email}, nil
}

// SignOut invalidates the session cookie.
func (g *SessionGuard) SignOut(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// currentSession returns the session stored by RequireSession.
func currentSession(c echo.Context) Session {
	s, _ := c.Get(sessionCtxKey).(Session)
	return s
}

// AdminCreator is the part of *store.UserRepo used to bootstrap admins.
type AdminCreator interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, in store.UserInput) (store.User, error)
}

// BootstrapAdmin creates the first administrator when none exists. It
// reports whether a user was created.
func BootstrapAdmin(ctx context.Context, users AdminCreator, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := users.Create(ctx, store.UserInput{Email: email, Password: password}); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
