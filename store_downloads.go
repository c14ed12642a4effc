package siteadmin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ListDownloads returns the app download links ordered by platform.
func (s *Store) ListDownloads(ctx context.Context) ([]AppDownload, error) {
	return s.listDownloads(ctx, s.db)
}

// ReplaceDownloads deletes every download row and inserts items in their
// place inside one transaction, so readers never observe an empty list
// mid-write. Items without a platform or url are dropped. The resulting list
// is returned.
func (s *Store) ReplaceDownloads(ctx context.Context, items []AppDownload) ([]AppDownload, error) {
	clean := CleanDownloads(items)
	var out []AppDownload
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM app_downloads`); err != nil {
			return fmt.Errorf("clear downloads: %w", err)
		}
		for _, d := range clean {
			if _, err := tx.ExecContext(ctx,
				s.rebind(`INSERT INTO app_downloads (platform, label, url, version) VALUES (?, ?, ?, ?)`),
				d.Platform, d.Label, d.URL, nullString(d.Version)); err != nil {
				return fmt.Errorf("insert download %q: %w", d.Platform, err)
			}
		}
		list, err := s.listDownloads(ctx, tx)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CleanDownloads trims fields and drops entries missing a platform or url.
// An empty version becomes nil.
func CleanDownloads(items []AppDownload) []AppDownload {
	clean := make([]AppDownload, 0, len(items))
	for _, d := range items {
		d.Platform = strings.TrimSpace(d.Platform)
		d.URL = strings.TrimSpace(d.URL)
		d.Label = strings.TrimSpace(d.Label)
		if d.Platform == "" || d.URL == "" {
			continue
		}
		d.Version = emptyToNil(d.Version)
		clean = append(clean, d)
	}
	return clean
}

func (s *Store) listDownloads(ctx context.Context, q querier) ([]AppDownload, error) {
	rows, err := q.QueryContext(ctx, `SELECT platform, label, url, version FROM app_downloads ORDER BY platform ASC`)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	downloads := []AppDownload{}
	for rows.Next() {
		var d AppDownload
		var version sql.NullString
		if err := rows.Scan(&d.Platform, &d.Label, &d.URL, &version); err != nil {
			return nil, fmt.Errorf("list downloads: %w", err)
		}
		d.Version = stringPtr(version)
		downloads = append(downloads, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	return downloads, nil
}
