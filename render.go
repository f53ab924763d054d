package site

import (
	"encoding/xml"
	"errors"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/bimaakbar/bimasite/store"
	"github.com/bimaakbar/bimasite/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// writeXML encodes v as a standalone XML document.
func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := io.WriteString(c.Response(), xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}

// page builds the per-request view context.
func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	p := views.Page{
		Site: a.Config.views(),
		Meta: meta,
		CSRF: CsrfToken(c),
	}
	if s := currentSession(c); s.Authenticated {
		p.Principal = &views.Principal{Email: s.Email}
	}
	return p
}

// statusFor maps the store error taxonomy onto an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, store.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// logIfServerError logs err when it maps to a 5xx status.
func (a *App) logIfServerError(c echo.Context, err error, msg string) {
	if statusFor(err) >= 500 {
		a.Logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg(msg)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if (ok && he.Code == http.StatusNotFound) || errors.Is(err, store.ErrNotFound) {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c, views.PageMeta{Title: "Not found", NoIndex: true}), ""))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, views.ServerError(a.page(c, views.PageMeta{Title: "Error", NoIndex: true})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
