package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const createSettingsTable = `CREATE TABLE IF NOT EXISTS user_switcher_settings (
	id                      SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	impersonation_minutes   INTEGER NOT NULL,
	watermark_impersonation BOOLEAN NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository implements Repository using a single-row PostgreSQL table
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a PostgreSQL repository. Call EnsureSchema
// once before use.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the settings table if it is missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createSettingsTable); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.db.QueryRow(ctx,
		`SELECT impersonation_minutes, watermark_impersonation FROM user_switcher_settings WHERE id = 1`,
	).Scan(&s.ImpersonationMinutes, &s.WatermarkImpersonation)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s Settings) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_switcher_settings (id, impersonation_minutes, watermark_impersonation, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET impersonation_minutes = EXCLUDED.impersonation_minutes,
			watermark_impersonation = EXCLUDED.watermark_impersonation,
			updated_at = now()`,
		s.ImpersonationMinutes, s.WatermarkImpersonation)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
