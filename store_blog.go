package siteadmin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const blogPostColumns = `id, slug, title, excerpt, body, image, published_at, created_at`

// ListBlogPosts returns every post, newest publish date first. Posts without
// a publish date sort last.
func (s *Store) ListBlogPosts(ctx context.Context) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts ORDER BY published_at IS NULL, published_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	posts := []BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return posts, nil
}

// GetBlogPost returns the post with the given id.
func (s *Store) GetBlogPost(ctx context.Context, id int64) (BlogPost, error) {
	return s.getBlogPost(ctx, s.db, id)
}

// GetBlogPostBySlug returns the most recently created post with slug. Slugs
// are not unique in the collection.
func (s *Store) GetBlogPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+blogPostColumns+` FROM blog_posts WHERE slug = ? ORDER BY id DESC LIMIT 1`), slug)
	p, err := scanBlogPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// CreateBlogPost inserts a new post. Slug and title are required; when
// publishedAt is omitted the post is published now.
func (s *Store) CreateBlogPost(ctx context.Context, in BlogPostInput) (BlogPost, error) {
	if err := in.validateCreate(); err != nil {
		return BlogPost{}, err
	}
	publishedAt := time.Now()
	if in.PublishedAt != nil && strings.TrimSpace(*in.PublishedAt) != "" {
		t, err := parsePublishDate(*in.PublishedAt)
		if err != nil {
			return BlogPost{}, err
		}
		publishedAt = t
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`INSERT INTO blog_posts (slug, title, excerpt, body, image, published_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		strings.TrimSpace(*in.Slug),
		strings.TrimSpace(*in.Title),
		deref(in.Excerpt),
		deref(in.Body),
		nullString(emptyToNil(in.Image)),
		formatTime(publishedAt),
		formatTime(time.Now()),
	).Scan(&id)
	if err != nil {
		return BlogPost{}, fmt.Errorf("create blog post: %w", err)
	}
	return s.GetBlogPost(ctx, id)
}

// UpdateBlogPost overwrites the fields present in in. Absent fields keep
// their stored value. Returns ErrNotFound, leaving the store untouched, when
// id does not exist.
func (s *Store) UpdateBlogPost(ctx context.Context, id int64, in BlogPostInput) (BlogPost, error) {
	if err := in.validateUpdate(); err != nil {
		return BlogPost{}, err
	}
	var updated BlogPost
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.getBlogPost(ctx, tx, id)
		if err != nil {
			return err
		}
		if in.Slug != nil {
			cur.Slug = strings.TrimSpace(*in.Slug)
		}
		if in.Title != nil {
			cur.Title = strings.TrimSpace(*in.Title)
		}
		if in.Excerpt != nil {
			cur.Excerpt = *in.Excerpt
		}
		if in.Body != nil {
			cur.Body = *in.Body
		}
		if in.Image != nil {
			cur.Image = emptyToNil(in.Image)
		}
		if in.PublishedAt != nil {
			if strings.TrimSpace(*in.PublishedAt) == "" {
				cur.PublishedAt = nil
			} else {
				t, err := parsePublishDate(*in.PublishedAt)
				if err != nil {
					return err
				}
				cur.PublishedAt = &t
			}
		}
		var published sql.NullString
		if cur.PublishedAt != nil {
			published = sql.NullString{String: formatTime(*cur.PublishedAt), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			s.rebind(`UPDATE blog_posts SET slug = ?, title = ?, excerpt = ?, body = ?, image = ?, published_at = ? WHERE id = ?`),
			cur.Slug, cur.Title, cur.Excerpt, cur.Body, nullString(cur.Image), published, id); err != nil {
			return fmt.Errorf("update blog post %d: %w", id, err)
		}
		updated = cur
		return nil
	})
	if err != nil {
		return BlogPost{}, err
	}
	return updated, nil
}

// DeleteBlogPost removes the post with the given id.
func (s *Store) DeleteBlogPost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM blog_posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete blog post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blog post %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBlogPosts returns the number of rows in the collection.
func (s *Store) CountBlogPosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blog posts: %w", err)
	}
	return n, nil
}

func (s *Store) getBlogPost(ctx context.Context, q querier, id int64) (BlogPost, error) {
	row := q.QueryRowContext(ctx, s.rebind(`SELECT `+blogPostColumns+` FROM blog_posts WHERE id = ?`), id)
	p, err := scanBlogPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlogPost(r rowScanner) (BlogPost, error) {
	var (
		p         BlogPost
		image     sql.NullString
		published sql.NullString
		created   string
	)
	if err := r.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &image, &published, &created); err != nil {
		return BlogPost{}, err
	}
	p.Image = stringPtr(image)
	if published.Valid {
		t, err := parseTime(published.String)
		if err != nil {
			return BlogPost{}, fmt.Errorf("blog post %d: published_at: %w", p.ID, err)
		}
		p.PublishedAt = &t
	}
	t, err := parseTime(created)
	if err != nil {
		return BlogPost{}, fmt.Errorf("blog post %d: created_at: %w", p.ID, err)
	}
	p.CreatedAt = t
	return p, nil
}

// parsePublishDate accepts a calendar date (2006-01-02) or an RFC 3339
// timestamp.
func parsePublishDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	return time.Time{}, newValidationError("publishedAt", "must be YYYY-MM-DD or an RFC 3339 timestamp")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func emptyToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
