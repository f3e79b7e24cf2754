package album

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const sqlStateUniqueViolation = "23505"

// Repository defines sale record persistence
type Repository interface {
	Create(ctx context.Context, a *Album) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Album, error)
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates album repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a. The (user_id, id_spotify) index turns a concurrent
// duplicate into ErrAlreadyPurchased.
func (r *repository) Create(ctx context.Context, a *Album) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO albums (id, user_id, id_spotify, name, artist_name, image_url, release_date, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.UserID, a.IDSpotify, a.Name, a.ArtistName, a.ImageURL, a.ReleaseDate, a.Value, a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation {
			return ErrAlreadyPurchased
		}
		return fmt.Errorf("album repository create: %w", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Album, error) {
	albums := []*Album{}
	err := r.db.SelectContext(ctx, &albums, `
		SELECT id, user_id, id_spotify, name, artist_name, image_url, release_date, value, created_at
		FROM albums
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("album repository list: %w", err)
	}
	return albums, nil
}

// DeleteForUser removes the sale record only when userID owns it.
func (r *repository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("album repository delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlbumNotFound
	}
	return nil
}
