// Package views holds the admin HTML pages. They are html/template files
// embedded in the binary and exposed as templ components.
package views

import (
	"embed"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/gumboot/siteadmin"
	"github.com/gumboot/siteadmin/textbody"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("views").Funcs(template.FuncMap{
	// body renders plain-text paragraphs; textbody escapes the input.
	"body":      func(s string) template.HTML { return template.HTML(textbody.HTML(s)) },
	"published": formatDate,
	"deref":     func(s *string) string { return *s },
}).ParseFS(templateFS, "templates/*.html"))

// Funcs returns the components wired into a siteadmin.App.
func Funcs() siteadmin.ViewFuncs {
	return siteadmin.ViewFuncs{
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

type loginData struct {
	ShowError bool
	CSRFToken string
}

// AdminLogin renders the password form. showError adds the wrong-password
// notice.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return templ.FromGoHTML(pages.Lookup("login"), loginData{ShowError: showError, CSRFToken: csrfToken})
}

// AdminDashboard renders the read-only overview: the site document with a
// JSON preview, the blog collection, downloads, images and the waitlist
// size. Editing goes through the JSON API.
func AdminDashboard(data siteadmin.DashboardData) templ.Component {
	return templ.FromGoHTML(pages.Lookup("dashboard"), data)
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return templ.FromGoHTML(pages.Lookup("not_found"), nil)
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return templ.FromGoHTML(pages.Lookup("server_error"), nil)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "draft"
	}
	return t.Format("2006-01-02")
}
