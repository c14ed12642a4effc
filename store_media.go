package siteadmin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ListImages returns uploaded image metadata, newest first.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename ASC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("list images: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether metadata for filename is stored.
func (s *Store) ImageExists(ctx context.Context, filename string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM images WHERE filename = ?`), filename).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup image %q: %w", filename, err)
	}
	return true, nil
}

// SaveImage records metadata for an uploaded image.
func (s *Store) SaveImage(ctx context.Context, img Image) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`),
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	if err != nil {
		return fmt.Errorf("save image %q: %w", img.Filename, err)
	}
	return nil
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(ctx context.Context, filename string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM images WHERE filename = ?`), filename)
	if err != nil {
		return fmt.Errorf("delete image %q: %w", filename, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToWaitlist stores email (lower-cased). Adding an address twice is a
// no-op.
func (s *Store) AddToWaitlist(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO waitlist (email, created_at) VALUES (?, ?) ON CONFLICT (email) DO NOTHING`),
		email, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("add to waitlist: %w", err)
	}
	return nil
}

// ListWaitlist returns subscribers in sign-up order.
func (s *Store) ListWaitlist(ctx context.Context) ([]WaitlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, created_at FROM waitlist ORDER BY created_at ASC, email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	defer rows.Close()

	entries := []WaitlistEntry{}
	for rows.Next() {
		var (
			e       WaitlistEntry
			created string
		)
		if err := rows.Scan(&e.Email, &created); err != nil {
			return nil, fmt.Errorf("list waitlist: %w", err)
		}
		t, err := parseTime(created)
		if err != nil {
			return nil, fmt.Errorf("waitlist %q: created_at: %w", e.Email, err)
		}
		e.CreatedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
