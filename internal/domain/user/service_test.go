package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/domain/wallet"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/jwt"
	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/password"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*User
	updated *User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *User, afterInsert func(ctx context.Context, tx *sqlx.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrEmailAlreadyExists
	}
	if afterInsert != nil {
		if err := afterInsert(ctx, nil); err != nil {
			return err
		}
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email], nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []*User{}
	for _, u := range f.byEmail {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; !ok {
		return ErrUserNotFound
	}
	f.byEmail[u.Email] = u
	f.updated = u
	return nil
}

type fakeWalletCreator struct {
	created []*wallet.Wallet
	err     error
}

func (f *fakeWalletCreator) CreateTx(ctx context.Context, tx *sqlx.Tx, w *wallet.Wallet) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, w)
	return nil
}

func newTestService() (*Service, *fakeUserRepo, *fakeWalletCreator) {
	repo := newFakeUserRepo()
	wallets := &fakeWalletCreator{}
	tokens := jwt.NewService("test-secret", 15*time.Minute)
	return NewService(repo, wallets, tokens, decimal.NewFromInt(100)), repo, wallets
}

func TestCreateOpensWallet(t *testing.T) {
	svc, repo, wallets := newTestService()

	u, err := svc.Create(context.Background(), &CreateRequest{Name: "Ana", Email: " Ana@Example.com ", Password: "s3cret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "s3cret" || !password.Verify("s3cret", u.PasswordHash) {
		t.Fatal("expected bcrypt hash of the password")
	}
	if repo.byEmail["ana@example.com"] == nil {
		t.Fatal("user not stored")
	}
	if len(wallets.created) != 1 {
		t.Fatalf("expected one wallet, got %d", len(wallets.created))
	}
	w := wallets.created[0]
	if w.UserID != u.ID || !w.Balance.Equal(decimal.NewFromInt(100)) || w.Points != 0 {
		t.Fatalf("unexpected opening wallet: %+v", w)
	}
}

func TestCreateRejects(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Create(context.Background(), &CreateRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"blank name", CreateRequest{Name: " ", Email: "b@example.com", Password: "x"}, ErrMissingFields},
		{"blank email", CreateRequest{Name: "B", Email: "", Password: "x"}, ErrMissingFields},
		{"blank password", CreateRequest{Name: "B", Email: "b@example.com", Password: " "}, ErrMissingFields},
		{"duplicate email", CreateRequest{Name: "Ana 2", Email: "ANA@example.com", Password: "x"}, ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Create(context.Background(), &req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateFailsWhenWalletCannotOpen(t *testing.T) {
	svc, repo, wallets := newTestService()
	wallets.err = errors.New("insert failed")

	_, err := svc.Create(context.Background(), &CreateRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.byEmail) != 0 {
		t.Fatal("user must not be stored without a wallet")
	}
}

func TestUpdateKeepsHashForSamePassword(t *testing.T) {
	svc, _, _ := newTestService()
	u, err := svc.Create(context.Background(), &CreateRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	originalHash := u.PasswordHash

	updated, err := svc.Update(context.Background(), "ana@example.com", &UpdateRequest{Name: "Ana Maria", Password: "s3cret"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Ana Maria" {
		t.Fatalf("expected new name, got %q", updated.Name)
	}
	if updated.PasswordHash != originalHash {
		t.Fatal("hash should be kept when password is unchanged")
	}

	updated, err = svc.Update(context.Background(), "ana@example.com", &UpdateRequest{Name: "Ana Maria", Password: "n3w"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !password.Verify("n3w", updated.PasswordHash) {
		t.Fatal("expected new password to verify")
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Update(context.Background(), "ghost@example.com", &UpdateRequest{Name: "G", Password: "x"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	u, err := svc.Create(context.Background(), &CreateRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := svc.Authenticate(context.Background(), &AuthRequest{Email: "ana@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if result.Token == "" || result.UserID != u.ID || result.ExpiresIn != 900 {
		t.Fatalf("unexpected auth response: %+v", result)
	}

	for _, req := range []AuthRequest{
		{Email: "ana@example.com", Password: "wrong"},
		{Email: "ghost@example.com", Password: "s3cret"},
	} {
		req := req
		if _, err := svc.Authenticate(context.Background(), &req); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %s, got %v", req.Email, err)
		}
	}
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newTestService()
	u, err := svc.Create(context.Background(), &CreateRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.GetByID(context.Background(), u.ID)
	if err != nil || got.Email != "ana@example.com" {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}

	if _, err := svc.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
