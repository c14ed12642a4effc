package siteadmin

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the site service.
type Config struct {
	Name        string // Site name (default "Gumboot")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for the RSS feed

	Addr        string // Listen address (default ":3000")
	DatabaseURL string // SQLite path or postgres:// URL (default "data/site.db")
	StaticDir   string // Static assets and uploads (default "public")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CacheTTL time.Duration // Public site cache TTL (default 5min)

	Recaptcha RecaptchaConfig
	Email     EmailConfig
}

// RecaptchaConfig configures server-side reCAPTCHA verification of the
// contact form.
type RecaptchaConfig struct {
	SecretKey string
	VerifyURL string // default Google siteverify endpoint
}

// EmailConfig configures SMTP delivery of contact messages.
type EmailConfig struct {
	Host     string
	Port     int // default 587
	User     string
	Password string
	From     string // default "hello@gumboot.app"
}

// Configured reports whether enough SMTP settings are present to send mail.
func (e EmailConfig) Configured() bool {
	return e.Host != "" && e.User != "" && e.Password != ""
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Gumboot"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/site.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Email.From == "" {
		c.Email.From = "hello@gumboot.app"
	}
}

// LoadConfig reads Config from the environment. Call godotenv first if a
// .env file should be honoured.
func LoadConfig() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("site_name", "Gumboot")
	v.SetDefault("site_url", "http://localhost:3000")
	v.SetDefault("site_description", "Get local jobs done. Fast.")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_url", "data/site.db")
	v.SetDefault("static_dir", "public")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("email_port", 587)
	v.SetDefault("default_from_email", "hello@gumboot.app")

	return Config{
		Name:          v.GetString("SITE_NAME"),
		URL:           v.GetString("SITE_URL"),
		Description:   v.GetString("SITE_DESCRIPTION"),
		Addr:          v.GetString("ADDR"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		StaticDir:     v.GetString("STATIC_DIR"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),
		Recaptcha: RecaptchaConfig{
			SecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
			VerifyURL: v.GetString("RECAPTCHA_VERIFY_URL"),
		},
		Email: EmailConfig{
			Host:     v.GetString("EMAIL_HOST"),
			Port:     v.GetInt("EMAIL_PORT"),
			User:     v.GetString("EMAIL_HOST_USER"),
			Password: v.GetString("EMAIL_HOST_PASSWORD"),
			From:     v.GetString("DEFAULT_FROM_EMAIL"),
		},
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the structured logger used for request and error logs.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithStore uses an already opened Store instead of opening
// Config.DatabaseURL in Setup.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithCaptcha overrides the reCAPTCHA verifier built from Config.Recaptcha.
func WithCaptcha(v CaptchaVerifier) Option {
	return func(a *App) {
		a.Captcha = v
	}
}

// WithMailer overrides the SMTP mailer built from Config.Email.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.Mailer = m
	}
}
