package siteadmin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// slugPattern matches lower-case URL-safe slugs such as "how-to-post-a-job".
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// DecodeSiteConfig reads a full SiteConfig document and checks its shape
// before anything is persisted: the hero, features and blogs keys must be
// present, hero must be an object, features and blogs must be arrays of
// objects, and no unknown keys are allowed. The decoded document is then
// validated with Validate.
func DecodeSiteConfig(r io.Reader) (SiteConfig, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("read site config body: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return SiteConfig{}, newValidationError("", "body must be a JSON object")
	}
	if err := requireJSONKind(top, "hero", '{'); err != nil {
		return SiteConfig{}, err
	}
	for _, key := range []string{"features", "blogs"} {
		if err := requireJSONKind(top, key, '['); err != nil {
			return SiteConfig{}, err
		}
		var items []json.RawMessage
		if err := json.Unmarshal(top[key], &items); err != nil {
			return SiteConfig{}, newValidationError(key, "must be an array")
		}
		for i, item := range items {
			if firstByte(item) != '{' {
				return SiteConfig{}, newValidationError(fmt.Sprintf("%s.%d", key, i), "must be an object")
			}
		}
	}

	var doc SiteConfig
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return SiteConfig{}, jsonValidationError(err)
	}
	if err := doc.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return doc, nil
}

func requireJSONKind(top map[string]json.RawMessage, key string, want byte) error {
	v, ok := top[key]
	if !ok {
		return newValidationError(key, "is required")
	}
	if firstByte(v) != want {
		if want == '{' {
			return newValidationError(key, "must be an object")
		}
		return newValidationError(key, "must be an array")
	}
	return nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// Validate checks the field rules of a SiteConfig: every blog entry needs an
// id and a URL-safe slug, slugs are unique across blogs, and publish dates
// use YYYY-MM-DD.
func (c SiteConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Blogs, validation.By(uniqueSlugs)),
	)
	return toValidationError(err)
}

// Validate implements validation.Validatable for embedded blog entries.
func (b BlogEntry) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required.Error("is required")),
		validation.Field(&b.Slug,
			validation.Required.Error("is required"),
			validation.Match(slugPattern).Error("must contain only lower-case letters, digits and single dashes"),
		),
		validation.Field(&b.PublishedAt, validation.Date("2006-01-02").Error("must be YYYY-MM-DD")),
	)
}

func uniqueSlugs(value interface{}) error {
	blogs, _ := value.([]BlogEntry)
	seen := make(map[string]int, len(blogs))
	for i, b := range blogs {
		if b.Slug == "" {
			continue
		}
		if j, ok := seen[b.Slug]; ok {
			return fmt.Errorf("slug %q is used by entries %d and %d", b.Slug, j, i)
		}
		seen[b.Slug] = i
	}
	return nil
}

func (in BlogPostInput) validateCreate() error {
	if in.Slug == nil || strings.TrimSpace(*in.Slug) == "" || in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return newValidationError("", "slug and title are required")
	}
	return nil
}

func (in BlogPostInput) validateUpdate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Slug, validation.When(in.Slug != nil, validation.By(notBlank))),
		validation.Field(&in.Title, validation.When(in.Title != nil, validation.By(notBlank))),
	)
	return toValidationError(err)
}

func notBlank(value interface{}) error {
	s, _ := value.(*string)
	if s == nil {
		if v, ok := value.(string); ok {
			s = &v
		}
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// toValidationError flattens ozzo validation errors into a ValidationError
// whose Field is the dotted path of the first failing field.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return internal.InternalError()
		}
		return &ValidationError{Message: err.Error(), Err: err}
	}
	path, msg := firstFieldError("", verrs)
	return &ValidationError{Field: path, Message: msg, Err: err}
}

func firstFieldError(prefix string, verrs validation.Errors) (string, string) {
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := verrs[k]
		if e == nil {
			continue
		}
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		var nested validation.Errors
		if errors.As(e, &nested) {
			return firstFieldError(path, nested)
		}
		return path, e.Error()
	}
	return prefix, "is invalid"
}

func jsonValidationError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Field: typeErr.Field, Message: "must be of type " + typeErr.Type.String(), Err: err}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ValidationError{Message: "malformed JSON", Err: err}
	}
	return &ValidationError{Message: err.Error(), Err: err}
}
