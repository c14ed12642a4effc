// Package recaptcha verifies reCAPTCHA response tokens against Google's
// siteverify endpoint.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Google's token verification endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrMissingSecret is returned when the client has no secret key.
var ErrMissingSecret = errors.New("recaptcha: secret key is not set")

// Response is the siteverify reply.
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
	Score       float64  `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// Client posts tokens to the verify endpoint.
type Client struct {
	secret    string
	verifyURL string
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithVerifyURL points the client at a different endpoint. Used by tests.
func WithVerifyURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.verifyURL = u
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a Client for the given secret key.
func New(secret string, opts ...Option) *Client {
	c := &Client{
		secret:    secret,
		verifyURL: DefaultVerifyURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify checks token with the verify endpoint. A well-formed but rejected
// token returns a Response with Success false and a nil error.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (Response, error) {
	if c.secret == "" {
		return Response{}, ErrMissingSecret
	}
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Response{}, fmt.Errorf("recaptcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("recaptcha: verify: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("recaptcha: verify: unexpected status %d", res.StatusCode)
	}
	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("recaptcha: decode response: %w", err)
	}
	return out, nil
}
