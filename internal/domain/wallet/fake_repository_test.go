package wallet

import (
	"context"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// fakeRepository serializes Update with a mutex, standing in for the row lock.
type fakeRepository struct {
	mu      sync.Mutex
	wallets map[string]Wallet
	writes  int
	failGet error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{wallets: make(map[string]Wallet)}
}

func (r *fakeRepository) put(email string, w Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[email] = w
}

func (r *fakeRepository) get(email string) (Wallet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[email]
	return w, ok
}

func (r *fakeRepository) GetByEmail(ctx context.Context, email string) (*Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	w, ok := r.wallets[email]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *fakeRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, w *Wallet) error {
	return errors.New("not supported by fake")
}

func (r *fakeRepository) Update(ctx context.Context, email string, fn func(w *Wallet) error) (*Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[email]
	if !ok {
		return nil, ErrWalletNotFound
	}
	if err := fn(&w); err != nil {
		return nil, err
	}
	r.wallets[email] = w
	r.writes++
	return &w, nil
}
