package storage

import (
	"context"
	"fmt"
	"strings"

	"taskvoice/internal/domain"
)

const (
	keyProfileName       = "profile.name"
	keyProfileOccupation = "profile.occupation"
	keyProfileLocale     = "profile.locale"
)

func (s *SQLiteStore) LoadProfile(ctx context.Context) (domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings WHERE key LIKE 'profile.%'`)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	defer rows.Close()

	var p domain.Profile
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Profile{}, fmt.Errorf("scan profile: %w", err)
		}
		switch key {
		case keyProfileName:
			p.Name = value
		case keyProfileOccupation:
			p.Occupation = value
		case keyProfileLocale:
			p.Locale = value
		}
	}
	return p, rows.Err()
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p domain.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.nowUTC()
	values := map[string]string{
		keyProfileName:       strings.TrimSpace(p.Name),
		keyProfileOccupation: strings.TrimSpace(p.Occupation),
		keyProfileLocale:     strings.TrimSpace(p.Locale),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			key, value, now); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return tx.Commit()
}
