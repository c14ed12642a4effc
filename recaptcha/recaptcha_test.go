package recaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifyServer(t *testing.T, status int, resp Response) (*httptest.Server, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = *r
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestVerifySuccess(t *testing.T) {
	srv, got := newVerifyServer(t, http.StatusOK, Response{Success: true, Hostname: "gumboot.app"})
	c := New("s3cret", WithVerifyURL(srv.URL))

	res, err := c.Verify(context.Background(), "tok", "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "gumboot.app", res.Hostname)

	assert.Equal(t, "s3cret", got.PostForm.Get("secret"))
	assert.Equal(t, "tok", got.PostForm.Get("response"))
	assert.Equal(t, "203.0.113.5", got.PostForm.Get("remoteip"))
}

func TestVerifyRejectedToken(t *testing.T) {
	srv, _ := newVerifyServer(t, http.StatusOK, Response{Success: false, ErrorCodes: []string{"invalid-input-response"}})
	c := New("s3cret", WithVerifyURL(srv.URL))

	res, err := c.Verify(context.Background(), "bad", "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"invalid-input-response"}, res.ErrorCodes)
}

func TestVerifyUnexpectedStatus(t *testing.T) {
	srv, _ := newVerifyServer(t, http.StatusBadGateway, Response{})
	c := New("s3cret", WithVerifyURL(srv.URL))

	_, err := c.Verify(context.Background(), "tok", "")
	assert.Error(t, err)
}

func TestVerifyWithoutSecret(t *testing.T) {
	_, err := New("").Verify(context.Background(), "tok", "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
