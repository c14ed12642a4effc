package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gumboot/siteadmin"
)

const (
	csrfCookieName = "_csrf"
	csrfHeader     = "X-CSRF-Token"
)

// APIError is a non-2xx reply from the admin API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("admin api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("admin api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// Client talks to a siteadmin server. It keeps the session and CSRF cookies
// in a cookie jar, so one Client is one admin session. It implements both
// Authenticator and Backend.
type Client struct {
	base *url.URL
	http *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. Its Jar is replaced by the
// Client's own cookie jar.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		cp := *h
		cp.Jar = c.http.Jar
		c.http = &cp
	}
}

// NewClient returns a Client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("editor: invalid server url %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base: u,
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Authenticate logs in with the shared admin password. A rejected password
// returns ErrWrongPassword.
func (c *Client) Authenticate(ctx context.Context, password string) error {
	// The login page sets the CSRF cookie required by every unsafe request.
	if err := c.do(ctx, http.MethodGet, "/admin/", nil, nil); err != nil {
		return err
	}
	err := c.do(ctx, http.MethodPost, "/admin/login/", map[string]string{"password": password}, nil)
	if IsStatus(err, http.StatusUnauthorized) {
		return ErrWrongPassword
	}
	return err
}

// LoadConfig fetches the site document.
func (c *Client) LoadConfig(ctx context.Context) (siteadmin.SiteConfig, error) {
	var doc siteadmin.SiteConfig
	err := c.do(ctx, http.MethodGet, "/api/admin/config", nil, &doc)
	return doc, err
}

// SaveConfig replaces the site document.
func (c *Client) SaveConfig(ctx context.Context, doc siteadmin.SiteConfig) error {
	return c.do(ctx, http.MethodPost, "/api/admin/config", doc, nil)
}

// ListBlogPosts returns the blog collection.
func (c *Client) ListBlogPosts(ctx context.Context) ([]siteadmin.BlogPost, error) {
	var posts []siteadmin.BlogPost
	err := c.do(ctx, http.MethodGet, "/api/admin/blog", nil, &posts)
	return posts, err
}

// CreateBlogPost adds a post to the blog collection.
func (c *Client) CreateBlogPost(ctx context.Context, in siteadmin.BlogPostInput) (siteadmin.BlogPost, error) {
	var post siteadmin.BlogPost
	err := c.do(ctx, http.MethodPost, "/api/admin/blog", in, &post)
	return post, err
}

// UpdateBlogPost changes the fields set in in.
func (c *Client) UpdateBlogPost(ctx context.Context, id int64, in siteadmin.BlogPostInput) (siteadmin.BlogPost, error) {
	var post siteadmin.BlogPost
	err := c.do(ctx, http.MethodPut, "/api/admin/blog/"+strconv.FormatInt(id, 10), in, &post)
	return post, err
}

// DeleteBlogPost removes a post.
func (c *Client) DeleteBlogPost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/blog/"+strconv.FormatInt(id, 10), nil, nil)
}

// ListDownloads returns the app download links.
func (c *Client) ListDownloads(ctx context.Context) ([]siteadmin.AppDownload, error) {
	var out []siteadmin.AppDownload
	err := c.do(ctx, http.MethodGet, "/api/admin/downloads", nil, &out)
	return out, err
}

// ReplaceDownloads swaps the whole download list and returns what was
// stored.
func (c *Client) ReplaceDownloads(ctx context.Context, items []siteadmin.AppDownload) ([]siteadmin.AppDownload, error) {
	if items == nil {
		items = []siteadmin.AppDownload{}
	}
	var out []siteadmin.AppDownload
	err := c.do(ctx, http.MethodPut, "/api/admin/downloads", items, &out)
	return out, err
}

func (c *Client) csrfToken() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("editor: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("editor: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(csrfHeader, c.csrfToken())
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("editor: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("editor: decode %s %s: %w", method, path, err)
	}
	return nil
}
