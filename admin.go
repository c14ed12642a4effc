package siteadmin

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c)
}

// handleAdminLogin accepts the shared admin password from a form post or a
// JSON body. JSON callers get a JSON reply instead of a redirect.
func (a *App) handleAdminLogin(c echo.Context) error {
	wantsJSON := strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	var pass string
	if wantsJSON {
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
			return newValidationError("", "malformed JSON")
		}
		pass = body.Password
	} else {
		pass = c.FormValue("password")
	}

	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.Logger.Warn().Str("ip", c.RealIP()).Msg("admin login failed")
		if wantsJSON {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid password"})
		}
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
	}

	if err := setAdminSession(c); err != nil {
		return err
	}
	if wantsJSON {
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	doc, err := a.Store.ReadSiteConfig(ctx)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	posts, err := a.Store.ListBlogPosts(ctx)
	if err != nil {
		return err
	}
	downloads, err := a.Store.ListDownloads(ctx)
	if err != nil {
		return err
	}
	images, err := a.Store.ListImages(ctx)
	if err != nil {
		return err
	}
	waitlist, err := a.Store.ListWaitlist(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(DashboardData{
		SiteName:   a.Config.Name,
		Config:     doc,
		ConfigJSON: string(raw),
		Posts:      posts,
		Downloads:  downloads,
		Images:     images,
		Waitlist:   len(waitlist),
		CSRFToken:  CsrfToken(c),
	}))
}
