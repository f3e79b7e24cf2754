package album

import "errors"

var (
	ErrAlbumNotFound    = errors.New("album not found")
	ErrAlreadyPurchased = errors.New("album already purchased by user")
	ErrInvalidValue     = errors.New("album value must be positive with at most two decimal places")
)
