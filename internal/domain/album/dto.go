package album

import "github.com/shopspring/decimal"

// SaleRequest for POST /albums/sale
type SaleRequest struct {
	IDSpotify   string          `json:"id_spotify" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=255"`
	ArtistName  string          `json:"artist_name" validate:"max=255"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	ReleaseDate string          `json:"release_date" validate:"release_date"`
	Value       decimal.Decimal `json:"value" validate:"money,gt=0"`
}

// SaleResponse reports the stored sale and whether its ledger debit left the
// catalog service.
type SaleResponse struct {
	Album            *Album `json:"album"`
	LedgerDispatched bool   `json:"ledger_dispatched"`
}
