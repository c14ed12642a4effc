package siteadmin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// siteConfigID is the fixed key of the single SiteConfig row.
const siteConfigID = 1

// ReadSiteConfig returns the persisted site document. If none exists yet the
// static default is inserted and returned. The insert is ON CONFLICT DO
// NOTHING against the primary key, so concurrent first reads create exactly
// one row and all observe the same document.
func (s *Store) ReadSiteConfig(ctx context.Context) (SiteConfig, error) {
	doc, err := s.loadSiteConfig(ctx)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return SiteConfig{}, err
	}

	seed, err := json.Marshal(DefaultSiteConfig())
	if err != nil {
		return SiteConfig{}, fmt.Errorf("encode default site config: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO site_config (id, config, updated_at) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		siteConfigID, string(seed), formatTime(time.Now())); err != nil {
		return SiteConfig{}, fmt.Errorf("seed site config: %w", err)
	}
	return s.loadSiteConfig(ctx)
}

// WriteSiteConfig replaces the persisted document wholesale. Last writer wins.
func (s *Store) WriteSiteConfig(ctx context.Context, doc SiteConfig) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode site config: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO site_config (id, config, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`),
		siteConfigID, string(raw), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("write site config: %w", err)
	}
	return nil
}

func (s *Store) loadSiteConfig(ctx context.Context) (SiteConfig, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT config FROM site_config WHERE id = ?`), siteConfigID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return SiteConfig{}, ErrNotFound
	}
	if err != nil {
		return SiteConfig{}, fmt.Errorf("read site config: %w", err)
	}
	var doc SiteConfig
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return SiteConfig{}, fmt.Errorf("decode site config: %w", err)
	}
	return doc, nil
}
