package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvisit/scheduler/internal/repository/base"
)

type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

// Get returns the value for key, or the fallback when the key is absent.
func (r *SettingRepository) Get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := base.Conn(ctx, r.pool).QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if base.IsNotFound(err) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}

	return value, nil
}

// Set inserts or overwrites the value for key.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := base.Conn(ctx, r.pool).Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}

	return nil
}
