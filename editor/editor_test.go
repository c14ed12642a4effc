package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumboot/siteadmin"
)

type memBackend struct {
	doc     siteadmin.SiteConfig
	saves   int
	saveErr error
}

func (m *memBackend) LoadConfig(context.Context) (siteadmin.SiteConfig, error) {
	return m.doc.Clone(), nil
}

func (m *memBackend) SaveConfig(_ context.Context, doc siteadmin.SiteConfig) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.doc = doc.Clone()
	return nil
}

func newLoadedEditor(t *testing.T) (*Editor, *memBackend) {
	t.Helper()
	backend := &memBackend{doc: siteadmin.DefaultSiteConfig()}
	gate := NewGate(SecretAuthenticator("pw"))
	require.NoError(t, gate.Unlock(context.Background(), "pw"))
	e := New(gate, backend)
	require.NoError(t, e.Load(context.Background()))
	return e, backend
}

func TestGate(t *testing.T) {
	ctx := context.Background()
	g := NewGate(SecretAuthenticator("correct horse"))
	assert.Equal(t, Locked, g.State())

	assert.ErrorIs(t, g.Unlock(ctx, "wrong"), ErrWrongPassword)
	assert.Equal(t, Locked, g.State())

	require.NoError(t, g.Unlock(ctx, "correct horse"))
	assert.Equal(t, Unlocked, g.State())
	assert.True(t, g.IsUnlocked())

	// No way back to locked.
	require.NoError(t, g.Unlock(ctx, "wrong"))
	assert.Equal(t, Unlocked, g.State())
}

func TestEmptySecretNeverUnlocks(t *testing.T) {
	g := NewGate(SecretAuthenticator(""))
	assert.ErrorIs(t, g.Unlock(context.Background(), ""), ErrWrongPassword)
	assert.Equal(t, Locked, g.State())
}

func TestLoadRequiresUnlock(t *testing.T) {
	e := New(NewGate(SecretAuthenticator("pw")), &memBackend{})
	assert.ErrorIs(t, e.Load(context.Background()), ErrLocked)
	assert.ErrorIs(t, e.Save(context.Background()), ErrLocked)
	assert.False(t, e.Loaded())
}

func TestMutationsBeforeLoad(t *testing.T) {
	gate := NewGate(SecretAuthenticator("pw"))
	require.NoError(t, gate.Unlock(context.Background(), "pw"))
	e := New(gate, &memBackend{})

	assert.ErrorIs(t, e.SetHeroField("title", "x"), ErrNotLoaded)
	assert.ErrorIs(t, e.AddFeature(), ErrNotLoaded)
	assert.ErrorIs(t, e.Save(context.Background()), ErrNotLoaded)
	_, err := e.Document()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSetHeroField(t *testing.T) {
	e, _ := newLoadedEditor(t)
	before, err := e.Document()
	require.NoError(t, err)

	require.NoError(t, e.SetHeroField("title", "Odd jobs, done."))
	require.NoError(t, e.SetHeroField("playStoreLabel", "Get it on Google Play"))

	after, err := e.Document()
	require.NoError(t, err)
	assert.Equal(t, "Odd jobs, done.", after.Hero.Title)
	assert.Equal(t, "Get it on Google Play", after.Hero.PlayStoreLabel)
	assert.Equal(t, siteadmin.DefaultSiteConfig().Hero.Title, before.Hero.Title, "earlier copy must not change")
	assert.True(t, e.Dirty())

	assert.ErrorIs(t, e.SetHeroField("colour", "red"), ErrUnknownField)
}

func TestFeatureMutations(t *testing.T) {
	e, _ := newLoadedEditor(t)
	orig, _ := e.Document()
	n := len(orig.Features)

	require.NoError(t, e.AddFeature())
	doc, _ := e.Document()
	require.Len(t, doc.Features, n+1)
	assert.Equal(t, siteadmin.Feature{Title: "New feature", Desc: "Describe this feature."}, doc.Features[n])

	require.NoError(t, e.SetFeature(n, "title", "Verified locals"))
	require.NoError(t, e.SetFeature(n, "desc", "Every helper is ID-checked."))
	doc, _ = e.Document()
	assert.Equal(t, siteadmin.Feature{Title: "Verified locals", Desc: "Every helper is ID-checked."}, doc.Features[n])

	assert.ErrorIs(t, e.SetFeature(n, "icon", "x"), ErrUnknownField)
	assert.ErrorIs(t, e.SetFeature(n+1, "title", "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.SetFeature(-1, "title", "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.RemoveFeature(n+1), ErrIndexOutOfRange)

	require.NoError(t, e.RemoveFeature(n))
	doc, _ = e.Document()
	assert.Equal(t, orig.Features, doc.Features)
	assert.False(t, e.Dirty())
}

func TestAddThenRemoveFeatureIsIdentity(t *testing.T) {
	e, _ := newLoadedEditor(t)
	orig, _ := e.Document()

	require.NoError(t, e.AddFeature())
	doc, _ := e.Document()
	require.NoError(t, e.RemoveFeature(len(doc.Features)-1))

	got, _ := e.Document()
	assert.Equal(t, orig, got)
}

func TestRemoveFeatureKeepsOrder(t *testing.T) {
	e, _ := newLoadedEditor(t)
	orig, _ := e.Document()

	require.NoError(t, e.RemoveFeature(1))
	doc, _ := e.Document()
	want := append([]siteadmin.Feature{orig.Features[0]}, orig.Features[2:]...)
	assert.Equal(t, want, doc.Features)
}

func TestBlogMutations(t *testing.T) {
	e, _ := newLoadedEditor(t)
	e.newID = func() uuid.UUID { return uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e") }
	e.today = func() time.Time { return time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC) }
	orig, _ := e.Document()
	n := len(orig.Blogs)

	entry, err := e.AddBlog()
	require.NoError(t, err)
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", entry.ID)
	assert.Equal(t, "new-post-0f8fad5b", entry.Slug)
	assert.Equal(t, "2026-04-02", entry.PublishedAt)

	doc, _ := e.Document()
	require.Len(t, doc.Blogs, n+1)
	assert.Equal(t, entry, doc.Blogs[n])

	require.NoError(t, e.SetBlogField(n, "title", "Spring clean-up"))
	require.NoError(t, e.SetBlogField(n, "image", "/public/uploads/spring.jpg"))
	doc, _ = e.Document()
	assert.Equal(t, "Spring clean-up", doc.Blogs[n].Title)
	assert.Equal(t, "/public/uploads/spring.jpg", doc.Blogs[n].Image)

	assert.ErrorIs(t, e.SetBlogField(n, "author", "x"), ErrUnknownField)
	assert.ErrorIs(t, e.SetBlogField(n+1, "title", "x"), ErrIndexOutOfRange)

	require.NoError(t, e.RemoveBlog(0))
	doc, _ = e.Document()
	assert.Len(t, doc.Blogs, n)
	assert.Equal(t, orig.Blogs[1].ID, doc.Blogs[0].ID)
	assert.ErrorIs(t, e.RemoveBlog(n), ErrIndexOutOfRange)
}

func TestAddBlogSlugsDoNotCollide(t *testing.T) {
	e, _ := newLoadedEditor(t)
	a, err := e.AddBlog()
	require.NoError(t, err)
	b, err := e.AddBlog()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Slug, b.Slug)

	doc, _ := e.Document()
	assert.NoError(t, doc.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	e, backend := newLoadedEditor(t)
	require.NoError(t, e.SetHeroField("tagline", "Near you."))
	require.True(t, e.Dirty())

	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, 1, backend.saves)
	assert.Equal(t, "Near you.", backend.doc.Hero.Tagline)
	assert.False(t, e.Dirty())
}

func TestSaveFailureKeepsWorkingCopy(t *testing.T) {
	e, backend := newLoadedEditor(t)
	require.NoError(t, e.SetHeroField("title", "Unsaved"))

	backend.saveErr = errors.New("connection refused")
	err := e.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.saveErr)

	doc, _ := e.Document()
	assert.Equal(t, "Unsaved", doc.Hero.Title)
	assert.True(t, e.Dirty())

	backend.saveErr = nil
	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, "Unsaved", backend.doc.Hero.Title)
}

func TestJSON(t *testing.T) {
	e, _ := newLoadedEditor(t)
	raw, err := e.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"hero\": {")
	assert.Contains(t, string(raw), `"appStoreLabel"`)
}
