package siteadmin

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "hero": {"title": "Get local jobs done.", "highlight": "Fast.", "subtitle": "", "appStoreLabel": "", "playStoreLabel": "", "tagline": ""},
  "features": [{"title": "Post a job", "desc": "In seconds."}],
  "blogs": [{"id": "1", "slug": "hello-world", "title": "Hello", "excerpt": "", "body": "", "publishedAt": "2026-01-02"}]
}`

func TestDecodeSiteConfig(t *testing.T) {
	doc, err := DecodeSiteConfig(strings.NewReader(validDoc))
	require.NoError(t, err)
	assert.Equal(t, "Get local jobs done.", doc.Hero.Title)
	assert.Equal(t, []Feature{{Title: "Post a job", Desc: "In seconds."}}, doc.Features)
	require.Len(t, doc.Blogs, 1)
	assert.Equal(t, "hello-world", doc.Blogs[0].Slug)
}

func TestDecodeSiteConfigDefaultIsValid(t *testing.T) {
	assert.NoError(t, DefaultSiteConfig().Validate())
}

func TestDecodeSiteConfigRejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"not json", `nope`, ""},
		{"array body", `[]`, ""},
		{"missing hero", `{"features": [], "blogs": []}`, "hero"},
		{"hero not object", `{"hero": "x", "features": [], "blogs": []}`, "hero"},
		{"missing features", `{"hero": {}, "blogs": []}`, "features"},
		{"features not array", `{"hero": {}, "features": {}, "blogs": []}`, "features"},
		{"feature not object", `{"hero": {}, "features": ["x"], "blogs": []}`, "features.0"},
		{"blogs null", `{"hero": {}, "features": [], "blogs": null}`, "blogs"},
		{"unknown key", `{"hero": {}, "features": [], "blogs": [], "footer": {}}`, ""},
		{"wrong field type", `{"hero": {"title": 5}, "features": [], "blogs": []}`, "hero.title"},
		{"blog without id", `{"hero": {}, "features": [], "blogs": [{"slug": "a"}]}`, "blogs.0.id"},
		{"blog bad slug", `{"hero": {}, "features": [], "blogs": [{"id": "1", "slug": "Not Safe"}]}`, "blogs.0.slug"},
		{"blog bad date", `{"hero": {}, "features": [], "blogs": [{"id": "1", "slug": "a", "publishedAt": "01/02/2026"}]}`, "blogs.0.publishedAt"},
		{"duplicate slugs", `{"hero": {}, "features": [], "blogs": [{"id": "1", "slug": "a"}, {"id": "2", "slug": "a"}]}`, "blogs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSiteConfig(strings.NewReader(tt.body))
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %T %v", err, err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateUpdateAllowsAbsentFields(t *testing.T) {
	assert.NoError(t, BlogPostInput{}.validateUpdate())
	assert.NoError(t, BlogPostInput{Title: strPtr("ok")}.validateUpdate())

	err := BlogPostInput{Title: strPtr("")}.validateUpdate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)
}

func TestParsePublishDate(t *testing.T) {
	d, err := parsePublishDate("2026-05-04")
	require.NoError(t, err)
	assert.Equal(t, "2026-05-04T00:00:00Z", formatTime(d))

	d, err = parsePublishDate("2026-05-04T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-05-04T08:30:00Z", formatTime(d))

	_, err = parsePublishDate("May 4th")
	assert.True(t, IsValidation(err))
}
