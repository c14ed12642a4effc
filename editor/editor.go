// Package editor is the admin editing session for the site document: a
// password gate, a working copy with immutable updates, and an HTTP client
// for the admin API.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gumboot/siteadmin"
)

var (
	ErrLocked          = errors.New("editor: locked")
	ErrNotLoaded       = errors.New("editor: document not loaded")
	ErrIndexOutOfRange = errors.New("editor: index out of range")
	ErrUnknownField    = errors.New("editor: unknown field")
)

// Backend loads and stores the whole site document.
type Backend interface {
	LoadConfig(ctx context.Context) (siteadmin.SiteConfig, error)
	SaveConfig(ctx context.Context, doc siteadmin.SiteConfig) error
}

// Editor holds the working copy of the site document. Every mutation
// replaces the working copy with an updated clone, so documents returned
// earlier by Document never change.
type Editor struct {
	mu      sync.Mutex
	gate    *Gate
	backend Backend
	doc     *siteadmin.SiteConfig
	saved   siteadmin.SiteConfig

	newID func() uuid.UUID
	today func() time.Time
}

// New returns an Editor guarded by gate.
func New(gate *Gate, backend Backend) *Editor {
	return &Editor{
		gate:    gate,
		backend: backend,
		newID:   uuid.New,
		today:   time.Now,
	}
}

// Load fetches the stored document and makes it the working copy.
func (e *Editor) Load(ctx context.Context) error {
	if !e.gate.IsUnlocked() {
		return ErrLocked
	}
	doc, err := e.backend.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("editor: load: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	working := doc.Clone()
	e.doc = &working
	e.saved = doc.Clone()
	return nil
}

// Save sends the full working copy to the backend. On failure the working
// copy is kept so the save can be retried.
func (e *Editor) Save(ctx context.Context) error {
	if !e.gate.IsUnlocked() {
		return ErrLocked
	}
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	doc := e.doc.Clone()
	e.mu.Unlock()

	if err := e.backend.SaveConfig(ctx, doc); err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}

	e.mu.Lock()
	e.saved = doc
	e.mu.Unlock()
	return nil
}

// Loaded reports whether a working copy exists.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc != nil
}

// Document returns a copy of the working document.
func (e *Editor) Document() (siteadmin.SiteConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return siteadmin.SiteConfig{}, ErrNotLoaded
	}
	return e.doc.Clone(), nil
}

// Dirty reports whether the working copy differs from the last loaded or
// saved document.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc != nil && !reflect.DeepEqual(normalize(*e.doc), normalize(e.saved))
}

// JSON returns the working copy as indented JSON.
func (e *Editor) JSON() ([]byte, error) {
	doc, err := e.Document()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// update applies fn to a clone of the working copy and installs the clone
// only if fn succeeds.
func (e *Editor) update(fn func(doc *siteadmin.SiteConfig) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return ErrNotLoaded
	}
	next := e.doc.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	e.doc = &next
	return nil
}

// SetHeroField sets one hero field by its JSON name.
func (e *Editor) SetHeroField(field, value string) error {
	return e.update(func(doc *siteadmin.SiteConfig) error {
		p, err := heroField(&doc.Hero, field)
		if err != nil {
			return err
		}
		*p = value
		return nil
	})
}

// SetFeature sets the title or desc of feature i.
func (e *Editor) SetFeature(i int, field, value string) error {
	return e.update(func(doc *siteadmin.SiteConfig) error {
		if i < 0 || i >= len(doc.Features) {
			return fmt.Errorf("%w: feature %d of %d", ErrIndexOutOfRange, i, len(doc.Features))
		}
		switch field {
		case "title":
			doc.Features[i].Title = value
		case "desc":
			doc.Features[i].Desc = value
		default:
			return fmt.Errorf("%w: feature.%s", ErrUnknownField, field)
		}
		return nil
	})
}

// AddFeature appends a placeholder feature card.
func (e *Editor) AddFeature() error {
	return e.update(func(doc *siteadmin.SiteConfig) error {
		doc.Features = append(doc.Features, siteadmin.Feature{
			Title: "New feature",
			Desc:  "Describe this feature.",
		})
		return nil
	})
}

// RemoveFeature deletes feature i, keeping the order of the rest.
func (e *Editor) RemoveFeature(i int) error {
	return e.update(func(doc *siteadmin.SiteConfig) error {
		if i < 0 || i >= len(doc.Features) {
			return fmt.Errorf("%w: feature %d of %d", ErrIndexOutOfRange, i, len(doc.Features))
		}
		doc.Features = append(doc.Features[:i], doc.Features[i+1:]...)
		return nil
	})
}

// SetBlogField sets one field of embedded blog i by its JSON name.
func (e *Editor) SetBlogField(i int, field, value string) error {
	return e.update(func(doc *siteadmin.SiteConfig) error {
		if i < 0 || i >= len(doc.Blogs) {
			return fmt.Errorf("%w: blog %d of %d", ErrIndexOutOfRange, i, len(doc.Blogs))
		}
		p, err := blogField(&doc.Blogs[i], field)
		if err != nil {
			return err
		}
		*p = value
		return nil
	})
}

// AddBlog appends a placeholder blog entry dated today and returns it. Its
// id is a random UUID and its slug is derived from the id, so repeated adds
// never collide.
func (e *Editor) AddBlog() (siteadmin.BlogEntry, error) {
	var entry siteadmin.BlogEntry
	err := e.update(func(doc *siteadmin.SiteConfig) error {
		id := e.newID().String()
		entry = siteadmin.BlogEntry{
			ID:          id,
			Slug:        "new-post-" + id[:8],
			Title:       "New blog post",
			Excerpt:     "Short summary of the post.",
			Body:        "Write your post here.",
			PublishedAt: e.today().Format("2006-01-02"),
		}
		doc.Blogs = append(doc.Blogs, entry)
		return nil
	})
	return entry, err
}

// RemoveBlog deletes embedded blog i, keeping the order of the rest.
func (e *Editor) RemoveBlog(i int) error {
	return e.update(func(doc *siteadmin.SiteConfig) error {
		if i < 0 || i >= len(doc.Blogs) {
			return fmt.Errorf("%w: blog %d of %d", ErrIndexOutOfRange, i, len(doc.Blogs))
		}
		doc.Blogs = append(doc.Blogs[:i], doc.Blogs[i+1:]...)
		return nil
	})
}

func heroField(h *siteadmin.Hero, field string) (*string, error) {
	switch field {
	case "title":
		return &h.Title, nil
	case "highlight":
		return &h.Highlight, nil
	case "subtitle":
		return &h.Subtitle, nil
	case "appStoreLabel":
		return &h.AppStoreLabel, nil
	case "playStoreLabel":
		return &h.PlayStoreLabel, nil
	case "tagline":
		return &h.Tagline, nil
	}
	return nil, fmt.Errorf("%w: hero.%s", ErrUnknownField, field)
}

func blogField(b *siteadmin.BlogEntry, field string) (*string, error) {
	switch field {
	case "id":
		return &b.ID, nil
	case "slug":
		return &b.Slug, nil
	case "title":
		return &b.Title, nil
	case "excerpt":
		return &b.Excerpt, nil
	case "image":
		return &b.Image, nil
	case "body":
		return &b.Body, nil
	case "publishedAt":
		return &b.PublishedAt, nil
	}
	return nil, fmt.Errorf("%w: blog.%s", ErrUnknownField, field)
}

// normalize treats nil and empty slices alike for Dirty.
func normalize(doc siteadmin.SiteConfig) siteadmin.SiteConfig {
	if len(doc.Features) == 0 {
		doc.Features = nil
	}
	if len(doc.Blogs) == 0 {
		doc.Blogs = nil
	}
	return doc
}
