package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		balance     NUMERIC(14,2) NOT NULL,
		points      BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
		last_update TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS albums (
		id           UUID PRIMARY KEY,
		user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		id_spotify   TEXT NOT NULL,
		name         TEXT NOT NULL,
		artist_name  TEXT NOT NULL DEFAULT '',
		image_url    TEXT NOT NULL DEFAULT '',
		release_date TEXT NOT NULL DEFAULT '',
		value        NUMERIC(14,2) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS albums_user_item_uidx ON albums (user_id, id_spotify)`,
}

// Migrate creates the tables both services rely on when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("Schema is up to date")
	return nil
}
