package editor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumboot/siteadmin"
	"github.com/gumboot/siteadmin/views"
)

const testPassword = "let-me-in"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := siteadmin.NewStore(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)

	app := siteadmin.New(siteadmin.Config{
		AdminPassword: testPassword,
		SessionSecret: "0123456789abcdef0123456789abcdef",
		StaticDir:     t.TempDir(),
	}, views.Funcs(), siteadmin.WithStore(store), siteadmin.WithLogger(zerolog.Nop()))
	require.NoError(t, app.Setup())

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func TestClientWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	gate := NewGate(c)
	assert.ErrorIs(t, gate.Unlock(context.Background(), "nope"), ErrWrongPassword)
	assert.Equal(t, Locked, gate.State())

	_, err = c.LoadConfig(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized), "got %v", err)
}

func TestEditorAgainstServer(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)

	gate := NewGate(c)
	e := New(gate, c)
	assert.ErrorIs(t, e.Load(ctx), ErrLocked)

	require.NoError(t, gate.Unlock(ctx, testPassword))
	require.NoError(t, e.Load(ctx))

	doc, err := e.Document()
	require.NoError(t, err)
	assert.Equal(t, siteadmin.DefaultSiteConfig(), doc)

	require.NoError(t, e.SetHeroField("title", "Help is one tap away"))
	require.NoError(t, e.AddFeature())
	_, err = e.AddBlog()
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx))

	// A fresh session sees the saved document.
	c2, err := NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, c2.Authenticate(ctx, testPassword))
	got, err := c2.LoadConfig(ctx)
	require.NoError(t, err)
	want, _ := e.Document()
	assert.Equal(t, want, got)
}

func TestEditorSaveRejectedKeepsWorkingCopy(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	gate := NewGate(c)
	require.NoError(t, gate.Unlock(ctx, testPassword))
	e := New(gate, c)
	require.NoError(t, e.Load(ctx))

	require.NoError(t, e.SetBlogField(0, "slug", "Not A Slug"))
	err = e.Save(ctx)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest), "got %v", err)

	doc, _ := e.Document()
	assert.Equal(t, "Not A Slug", doc.Blogs[0].Slug)

	stored, err := c.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, siteadmin.DefaultSiteConfig().Blogs[0].Slug, stored.Blogs[0].Slug)
}

func TestClientBlogAndDownloads(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, c.Authenticate(ctx, testPassword))

	slug, title := "first-post", "First post"
	post, err := c.CreateBlogPost(ctx, siteadmin.BlogPostInput{Slug: &slug, Title: &title})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	newTitle := "First post, edited"
	post, err = c.UpdateBlogPost(ctx, post.ID, siteadmin.BlogPostInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, post.Title)
	assert.Equal(t, slug, post.Slug)

	posts, err := c.ListBlogPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	require.NoError(t, c.DeleteBlogPost(ctx, post.ID))
	err = c.DeleteBlogPost(ctx, post.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound), "got %v", err)

	out, err := c.ReplaceDownloads(ctx, []siteadmin.AppDownload{
		{Platform: "ios", Label: "App Store", URL: "https://apps.apple.com/app/gumboot"},
		{Platform: "android", Label: "Google Play"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ios", out[0].Platform)

	list, err := c.ListDownloads(ctx)
	require.NoError(t, err)
	assert.Equal(t, out, list)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url")
	assert.Error(t, err)
}
