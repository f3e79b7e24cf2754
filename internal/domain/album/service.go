package album

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/ledger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/user"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/logger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/money"
)

// UserFinder resolves the buyer. A nil user with a nil error means absent.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// LedgerSender hands a ledger message to the wallet side.
type LedgerSender interface {
	Send(ctx context.Context, msg ledger.Message) error
}

// Service is the purchase guard for album sales.
type Service struct {
	repo   Repository
	users  UserFinder
	ledger LedgerSender
	now    func() time.Time
}

// NewService creates album service
func NewService(repo Repository, users UserFinder, sender LedgerSender) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		ledger: sender,
		now:    time.Now,
	}
}

// Sell records the sale of req's album to buyerEmail and then sends one
// ledger debit for its value. A user owns a catalog item at most once.
//
// When the debit cannot be sent the stored album is still returned together
// with an error wrapping ledger.ErrTransport.
func (s *Service) Sell(ctx context.Context, buyerEmail string, req *SaleRequest) (*Album, error) {
	if money.Check(req.Value) != nil || !req.Value.IsPositive() {
		return nil, ErrInvalidValue
	}

	buyer, err := s.resolve(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}

	owned, err := s.repo.ListByUser(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range owned {
		if a.IDSpotify == req.IDSpotify {
			return nil, ErrAlreadyPurchased
		}
	}

	a := &Album{
		ID:          uuid.New(),
		IDSpotify:   req.IDSpotify,
		Name:        strings.TrimSpace(req.Name),
		ArtistName:  strings.TrimSpace(req.ArtistName),
		ImageURL:    req.ImageURL,
		ReleaseDate: req.ReleaseDate,
		Value:       req.Value,
		UserID:      buyer.ID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	ctx = logger.With(ctx, "album_id", a.ID.String(), "id_spotify", a.IDSpotify)
	if err := s.ledger.Send(ctx, ledger.NewDebit(buyer.Email, a.Value)); err != nil {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("user_email", buyer.Email).
			Str("amount", a.Value.String()).
			Msg("album sold but ledger debit was not dispatched")
		return a, fmt.Errorf("album %s sold: %w", a.ID, err)
	}

	logger.FromContext(ctx).Info().
		Str("user_email", buyer.Email).
		Str("amount", a.Value.String()).
		Msg("album sold")
	return a, nil
}

// GetUserAlbums lists the sale records owned by email.
func (s *Service) GetUserAlbums(ctx context.Context, email string) ([]*Album, error) {
	owner, err := s.resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, owner.ID)
}

// RemoveAlbumByID deletes one of email's sale records. Albums of other users
// are reported as ErrAlbumNotFound.
func (s *Service) RemoveAlbumByID(ctx context.Context, email string, id uuid.UUID) error {
	owner, err := s.resolve(ctx, email)
	if err != nil {
		return err
	}
	return s.repo.DeleteForUser(ctx, id, owner.ID)
}

func (s *Service) resolve(ctx context.Context, email string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}
