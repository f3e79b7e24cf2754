package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/points"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/logger"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/money"
)

// Service is the wallet ledger. Serialization of concurrent writes to one
// wallet is left to Repository.Update.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the processing clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Debit subtracts amount from the balance with no lower bound and adds the
// points awarded for the current processing day. Redelivered debits are applied
// again; there is no deduplication.
func (s *Service) Debit(ctx context.Context, email string, amount decimal.Decimal) error {
	if err := money.Check(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	email = normalizeEmail(email)

	var earned int64
	w, err := s.repo.Update(ctx, email, func(w *Wallet) error {
		now := s.now()
		earned = points.For(now)
		w.Balance = w.Balance.Sub(amount)
		w.Points += earned
		w.touch(now)
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().
		Str("user_email", email).
		Str("amount", amount.String()).
		Int64("points_earned", earned).
		Str("balance", w.Balance.String()).
		Msg("wallet debit applied")
	return nil
}

// Credit adds a positive amount with at most two decimals to the balance.
// Points are untouched.
func (s *Service) Credit(ctx context.Context, email string, amount decimal.Decimal) (*Wallet, error) {
	if err := money.Check(amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	email = normalizeEmail(email)

	w, err := s.repo.Update(ctx, email, func(w *Wallet) error {
		w.Balance = w.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("user_email", email).
		Str("amount", amount.String()).
		Str("balance", w.Balance.String()).
		Msg("wallet credit applied")
	return w, nil
}

// Lookup returns nil, nil when the user has no wallet.
func (s *Service) Lookup(ctx context.Context, email string) (*Wallet, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
