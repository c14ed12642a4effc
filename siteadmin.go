// Package siteadmin serves the Gumboot marketing site content: the editable
// site document, the blog collection, app download links, uploaded images,
// the contact form and the launch waitlist. It is built with Echo and templ.
//
// Callers provide the admin templates via the ViewFuncs struct, and
// siteadmin handles the handler logic, middleware and database operations.
package siteadmin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/gumboot/siteadmin/mailer"
	"github.com/gumboot/siteadmin/recaptcha"
)

// ViewFuncs holds the templ components the App renders for HTML routes.
type ViewFuncs struct {
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(data DashboardData) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DashboardData is everything the admin dashboard page shows.
type DashboardData struct {
	SiteName   string
	Config     SiteConfig
	ConfigJSON string
	Posts      []BlogPost
	Downloads  []AppDownload
	Images     []Image
	Waitlist   int
	CSRFToken  string
}

// CaptchaVerifier checks a reCAPTCHA response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (recaptcha.Response, error)
}

// Mailer delivers an outgoing email. Verify checks the connection and
// credentials before a send.
type Mailer interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg mailer.Message) error
}

// App wires together the store, cache, handlers, middleware and views.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *Store
	Cache   *SiteCache
	Views   ViewFuncs
	Logger  zerolog.Logger
	Captcha CaptchaVerifier
	Mailer  Mailer

	customRoutes []func(*App)
	staticDir    string
}

// New creates an App with the given configuration and views. Call Setup
// before serving requests.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Logger:    zerolog.New(os.Stderr).With().Timestamp().Logger(),
		staticDir: cfg.StaticDir,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store and registers middleware and routes. It is split
// from Start so tests can drive a.Echo directly.
func (a *App) Setup() error {
	if a.Config.AdminPassword == "" {
		return errors.New("siteadmin: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("siteadmin: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("siteadmin: init store: %w", err)
		}
		a.Store = store
	}
	a.Cache = NewSiteCache(a.Store, a.Config.CacheTTL)

	if a.Captcha == nil && a.Config.Recaptcha.SecretKey != "" {
		a.Captcha = recaptcha.New(a.Config.Recaptcha.SecretKey, recaptcha.WithVerifyURL(a.Config.Recaptcha.VerifyURL))
	}
	if a.Mailer == nil && a.Config.Email.Configured() {
		e := a.Config.Email
		a.Mailer = mailer.NewSMTP(e.Host, e.Port, e.User, e.Password)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start runs the HTTP server until it is shut down.
func (a *App) Start() error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	a.Logger.Info().Str("addr", a.Config.Addr).Msg("listening")
	if err := a.Echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)

	// Public
	e.GET("/healthz", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/api/site", a.handlePublicSite)
	e.GET("/api/downloads", a.handlePublicDownloads)
	e.GET("/api/blog", a.handlePublicBlog)
	e.GET("/api/blog/:slug", a.handlePublicBlogPost)
	e.POST("/api/contact", a.handleContact)
	e.POST("/api/subscribe", a.handleSubscribe)

	// Admin HTML
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	// Admin API. Oversized bodies get a 413 before any handler reads them.
	jsonLimit := middleware.BodyLimit(jsonBodyLimit)
	api := e.Group("/api/admin", requireAdmin)
	api.GET("/config", a.handleGetConfig)
	api.POST("/config", a.handleSaveConfig, jsonLimit)
	api.POST("/save", a.handleSaveConfig, jsonLimit)
	api.GET("/blog", a.handleListBlog)
	api.POST("/blog", a.handleCreateBlog, jsonLimit)
	api.PUT("/blog/:id", a.handleUpdateBlog, jsonLimit)
	api.DELETE("/blog/:id", a.handleDeleteBlog)
	api.GET("/downloads", a.handleListDownloads)
	api.PUT("/downloads", a.handleReplaceDownloads, jsonLimit)
	api.GET("/images", a.handleImageList)
	api.POST("/images", a.handleImageUpload, middleware.BodyLimit(uploadBodyLimit))
	api.DELETE("/images/:filename", a.handleImageDelete)
	api.GET("/waitlist", a.handleListWaitlist)
}

// Close releases the store. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
