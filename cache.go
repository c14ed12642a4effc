package siteadmin

import (
	"context"
	"sync"
	"time"
)

// SiteCache is an in-memory TTL cache of what the public endpoints serve:
// the site document and the published blog posts.
type SiteCache struct {
	mu      sync.RWMutex
	doc     *SiteConfig
	posts   []BlogPost
	fetched time.Time
	ttl     time.Duration
	store   *Store
	now     func() time.Time
}

// NewSiteCache creates a SiteCache backed by the given Store.
func NewSiteCache(s *Store, ttl time.Duration) *SiteCache {
	return &SiteCache{store: s, ttl: ttl, now: time.Now}
}

func (c *SiteCache) valid() bool {
	return c.doc != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SiteCache) Invalidate() {
	c.mu.Lock()
	c.doc = nil
	c.posts = nil
	c.mu.Unlock()
}

func (c *SiteCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	doc, err := c.store.ReadSiteConfig(ctx)
	if err != nil {
		return err
	}
	all, err := c.store.ListBlogPosts(ctx)
	if err != nil {
		return err
	}
	now := c.now()
	published := make([]BlogPost, 0, len(all))
	for _, p := range all {
		if p.Published(now) {
			published = append(published, p)
		}
	}
	c.doc = &doc
	c.posts = published
	c.fetched = now
	return nil
}

// ensureLoaded tries a read lock first and only takes the write lock when a
// reload is needed.
func (c *SiteCache) ensureLoaded(ctx context.Context) (*SiteConfig, []BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		doc, posts := c.doc, c.posts
		c.mu.RUnlock()
		return doc, posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.doc, c.posts, nil
}

// SiteConfig returns a copy of the cached site document.
func (c *SiteCache) SiteConfig(ctx context.Context) (SiteConfig, error) {
	doc, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return SiteConfig{}, err
	}
	return doc.Clone(), nil
}

// PublishedPosts returns blog collection posts whose publish date has passed,
// newest first.
func (c *SiteCache) PublishedPosts(ctx context.Context) ([]BlogPost, error) {
	_, posts, err := c.ensureLoaded(ctx)
	return posts, err
}
