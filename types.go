package siteadmin

import "time"

// SiteConfig is the editable document behind the marketing site: hero copy,
// feature cards and the embedded blog list. Exactly one is persisted.
type SiteConfig struct {
	Hero     Hero        `json:"hero"`
	Features []Feature   `json:"features"`
	Blogs    []BlogEntry `json:"blogs"`
}

// Hero is the copy shown at the top of the home page.
type Hero struct {
	Title          string `json:"title"`
	Highlight      string `json:"highlight"`
	Subtitle       string `json:"subtitle"`
	AppStoreLabel  string `json:"appStoreLabel"`
	PlayStoreLabel string `json:"playStoreLabel"`
	Tagline        string `json:"tagline"`
}

// Feature is one card of the home page feature grid. Order is display order.
type Feature struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// BlogEntry is a blog post embedded in SiteConfig. Body is plain text with
// blank lines between paragraphs.
type BlogEntry struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	Image       string `json:"image,omitempty"`
	Body        string `json:"body"`
	PublishedAt string `json:"publishedAt"`
}

// Clone returns a deep copy so callers can mutate slices freely.
func (c SiteConfig) Clone() SiteConfig {
	out := SiteConfig{Hero: c.Hero}
	if c.Features != nil {
		out.Features = append(make([]Feature, 0, len(c.Features)), c.Features...)
	}
	if c.Blogs != nil {
		out.Blogs = append(make([]BlogEntry, 0, len(c.Blogs)), c.Blogs...)
	}
	return out
}

// BlogPost is a row of the relational blog collection. It is independent of
// SiteConfig.Blogs; nothing keeps the two in sync.
type BlogPost struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body"`
	Image       *string    `json:"image"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Published reports whether the post has a publish date at or before now.
func (p BlogPost) Published(now time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// BlogPostInput carries the writable fields of a BlogPost for create and
// update. A nil field was absent from the request.
type BlogPostInput struct {
	Slug        *string `json:"slug"`
	Title       *string `json:"title"`
	Excerpt     *string `json:"excerpt"`
	Body        *string `json:"body"`
	Image       *string `json:"image"`
	PublishedAt *string `json:"publishedAt"`
}

// AppDownload is a store listing for one platform. Platform acts as a loose
// natural key.
type AppDownload struct {
	Platform string  `json:"platform"`
	Label    string  `json:"label"`
	URL      string  `json:"url"`
	Version  *string `json:"version"`
}

// Image is metadata for an uploaded blog image.
type Image struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int    `json:"size"`
	UploadedAt   string `json:"uploadedAt"`
}

// URL returns the public path the image is served from.
func (i Image) URL() string {
	return "/public/" + uploadsSubdir + "/" + i.Filename
}

// WaitlistEntry is one email address that asked to hear about the launch.
type WaitlistEntry struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
