package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/wallet"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/password"
)

// WalletCreator opens a wallet inside the user's creation transaction.
type WalletCreator interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, w *wallet.Wallet) error
}

// TokenIssuer signs access tokens carrying the user's identity.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GetAccessTTL() time.Duration
}

// Service handles user accounts
type Service struct {
	repo           Repository
	wallets        WalletCreator
	tokens         TokenIssuer
	initialBalance decimal.Decimal
}

// NewService creates user service
func NewService(repo Repository, wallets WalletCreator, tokens TokenIssuer, initialBalance decimal.Decimal) *Service {
	return &Service{
		repo:           repo,
		wallets:        wallets,
		tokens:         tokens,
		initialBalance: initialBalance,
	}
}

// Create registers a user and opens their wallet in one transaction.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("create user lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Create(ctx, u, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.wallets.CreateTx(ctx, tx, wallet.New(u.ID, s.initialBalance, now))
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", u.ID.String()).
		Str("user_email", u.Email).
		Str("initial_balance", s.initialBalance.String()).
		Msg("user created with wallet")
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Update renames the account owned by email and sets its password. The stored
// hash is kept when the password is unchanged.
func (s *Service) Update(ctx context.Context, email string, req *UpdateRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Password) == "" {
		return nil, ErrMissingFields
	}

	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		hash, err := password.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	u.Name = name
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials and returns a signed access token.
func (s *Service) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResponse, error) {
	u, err := s.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &AuthResponse{
		UserID:    u.ID,
		Email:     u.Email,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.GetAccessTTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
