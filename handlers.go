package siteadmin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *App) handlePublicSite(c echo.Context) error {
	doc, err := a.Cache.SiteConfig(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (a *App) handlePublicDownloads(c echo.Context) error {
	downloads, err := a.Store.ListDownloads(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, downloads)
}

// handlePublicBlog lists the published blog collection, newest first.
func (a *App) handlePublicBlog(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// handlePublicBlogPost looks a post up by slug. Drafts and posts scheduled
// for later are not found.
func (a *App) handlePublicBlogPost(c echo.Context) error {
	post, err := a.Store.GetBlogPostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if !post.Published(time.Now()) {
		return ErrNotFound
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

type errorResponse struct {
	Error string `json:"error"`
}

// httpErrorHandler maps handler errors to responses: JSON under /api and
// rendered views elsewhere.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var ve *ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		code, msg = http.StatusBadRequest, ve.Error()
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if code >= 500 {
		a.Logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Msg("server error")
		msg = "internal server error"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = c.JSON(code, errorResponse{Error: msg})
		return
	}
	switch {
	case code == http.StatusNotFound && a.Views.NotFound != nil:
		_ = RenderStatus(c, code, a.Views.NotFound())
	case code >= 500 && a.Views.ServerError != nil:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		_ = c.String(code, msg)
	}
}
