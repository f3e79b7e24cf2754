package album

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Album is a sale record: one catalog item bought by one user.
type Album struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	IDSpotify   string          `db:"id_spotify" json:"id_spotify"`
	Name        string          `db:"name" json:"name"`
	ArtistName  string          `db:"artist_name" json:"artist_name"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	ReleaseDate string          `db:"release_date" json:"release_date"`
	Value       decimal.Decimal `db:"value" json:"value"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
