package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commerce-bridge/internal/repository"
)

// SettingsRepo reads the key/value configuration table operators edit
// to point the bridge at their storefront.
type SettingsRepo struct{ q querier }

func NewSettingsRepo(q querier) repository.SettingsRepository {
	return &SettingsRepo{q: q}
}

func (repo *SettingsRepo) Get(ctx context.Context, key, fallback string) (string, error) {
	const query = `SELECT value FROM settings WHERE key = $1 LIMIT 1`
	var value string
	err := repo.q.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("Get %s: %w", key, err)
	}
	return value, nil
}

func (repo *SettingsRepo) Set(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := repo.q.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("Set %s: %w", key, err)
	}
	return nil
}
