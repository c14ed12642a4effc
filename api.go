package siteadmin

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type okResponse struct {
	OK bool `json:"ok"`
}

// Request body limits in echo BodyLimit notation. The upload limit leaves
// room for multipart framing around a maxUploadSize file.
const (
	jsonBodyLimit   = "2M"
	uploadBodyLimit = "11M"
)

func (a *App) handleGetConfig(c echo.Context) error {
	doc, err := a.Store.ReadSiteConfig(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// handleSaveConfig replaces the whole site document. Nothing is written
// unless the body passes structural validation.
func (a *App) handleSaveConfig(c echo.Context) error {
	doc, err := DecodeSiteConfig(c.Request().Body)
	if err != nil {
		return err
	}
	if err := a.Store.WriteSiteConfig(c.Request().Context(), doc); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info().Int("features", len(doc.Features)).Int("blogs", len(doc.Blogs)).Msg("site config saved")
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (a *App) handleListBlog(c echo.Context) error {
	posts, err := a.Store.ListBlogPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleCreateBlog(c echo.Context) error {
	in, err := decodeBlogInput(c)
	if err != nil {
		return err
	}
	post, err := a.Store.CreateBlogPost(c.Request().Context(), in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handleUpdateBlog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	in, err := decodeBlogInput(c)
	if err != nil {
		return err
	}
	post, err := a.Store.UpdateBlogPost(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleDeleteBlog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteBlogPost(c.Request().Context(), id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (a *App) handleListDownloads(c echo.Context) error {
	downloads, err := a.Store.ListDownloads(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, downloads)
}

// handleReplaceDownloads swaps the whole download list for the posted array.
func (a *App) handleReplaceDownloads(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	if firstByte(raw) != '[' {
		return newValidationError("", "body must be an array")
	}
	var items []AppDownload
	if err := json.Unmarshal(raw, &items); err != nil {
		return jsonValidationError(err)
	}
	out, err := a.Store.ReplaceDownloads(c.Request().Context(), items)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleListWaitlist(c echo.Context) error {
	entries, err := a.Store.ListWaitlist(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, newValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func decodeBlogInput(c echo.Context) (BlogPostInput, error) {
	var in BlogPostInput
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return in, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return in, newValidationError("", "request body is required")
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, jsonValidationError(err)
	}
	return in, nil
}
