package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository persists wallets. Update serializes writers per wallet row.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Wallet, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, w *Wallet) error
	Update(ctx context.Context, email string, fn func(w *Wallet) error) (*Wallet, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetByEmail returns nil, nil when the user has no wallet.
func (r *repository) GetByEmail(ctx context.Context, email string) (*Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT w.id, w.user_id, w.balance, w.points, w.last_update
		FROM wallets w
		JOIN users u ON u.id = w.user_id
		WHERE u.email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("wallet repository get: %w", err)
	}
	return &w, nil
}

// CreateTx inserts w inside a transaction owned by the caller.
func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, w *Wallet) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance, points, last_update)
		VALUES ($1, $2, $3, $4, $5)
	`, w.ID, w.UserID, w.Balance, w.Points, w.LastUpdate)
	if err != nil {
		return fmt.Errorf("wallet repository create: %w", err)
	}
	return nil
}

// Update locks the user's wallet row, lets fn mutate it, and writes balance,
// points and last_update back in a single statement. Nothing is written when
// fn fails.
func (r *repository) Update(ctx context.Context, email string, fn func(w *Wallet) error) (*Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("wallet repository begin: %w", err)
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.GetContext(ctx, &w, `
		SELECT w.id, w.user_id, w.balance, w.points, w.last_update
		FROM wallets w
		JOIN users u ON u.id = w.user_id
		WHERE u.email = $1
		FOR UPDATE OF w
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet repository lock: %w", err)
	}

	if err := fn(&w); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $2, points = $3, last_update = $4
		WHERE id = $1
	`, w.ID, w.Balance, w.Points, w.LastUpdate); err != nil {
		return nil, fmt.Errorf("wallet repository update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("wallet repository commit: %w", err)
	}
	return &w, nil
}
