package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael-saraiva-mielczarski/BootPlay-Backend/internal/pkg/logger"
)

const testEmail = "buyer@example.com"

// friday is 2024-03-08, worth 15 points.
var friday = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

func seededService(t *testing.T, balance string, now time.Time) (*Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	repo.put(testEmail, *New(uuid.New(), decimal.RequireFromString(balance), now.Add(-time.Hour)))
	return NewService(repo).WithClock(func() time.Time { return now }), repo
}

func TestDebitAppliesAmountAndDayPoints(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	require.NoError(t, svc.Debit(context.Background(), testEmail, decimal.NewFromInt(30)))

	w, _ := repo.get(testEmail)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(70)), "balance %s", w.Balance)
	assert.Equal(t, int64(15), w.Points)
	assert.True(t, w.LastUpdate.Equal(friday))
}

func TestDebitAllowsNegativeBalance(t *testing.T) {
	svc, repo := seededService(t, "10", friday)

	require.NoError(t, svc.Debit(context.Background(), testEmail, decimal.RequireFromString("25.50")))

	w, _ := repo.get(testEmail)
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("-15.50")), "balance %s", w.Balance)
}

func TestDebitUnknownWalletWritesNothing(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	err := svc.Debit(context.Background(), "ghost@example.com", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrWalletNotFound)
	assert.Equal(t, 0, repo.writes)

	w, _ := repo.get(testEmail)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))
}

func TestDebitRedeliveryIsAppliedTwice(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Debit(context.Background(), testEmail, decimal.NewFromInt(30)))
	}

	w, _ := repo.get(testEmail)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(40)), "balance %s", w.Balance)
	assert.Equal(t, int64(30), w.Points)
}

func TestDebitNeverMovesLastUpdateBackwards(t *testing.T) {
	repo := newFakeRepository()
	later := friday.Add(time.Hour)
	repo.put(testEmail, *New(uuid.New(), decimal.NewFromInt(100), later))
	svc := NewService(repo).WithClock(func() time.Time { return friday })

	require.NoError(t, svc.Debit(context.Background(), testEmail, decimal.NewFromInt(1)))

	w, _ := repo.get(testEmail)
	assert.True(t, w.LastUpdate.Equal(later))
}

func TestConcurrentDebitsLoseNoUpdates(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Debit(context.Background(), testEmail, decimal.NewFromInt(5)))
		}()
	}
	wg.Wait()

	w, _ := repo.get(testEmail)
	assert.True(t, w.Balance.Equal(decimal.Zero), "balance %s", w.Balance)
	assert.Equal(t, int64(workers*15), w.Points)
}

func TestCreditsCommuteAndKeepPoints(t *testing.T) {
	svc, repo := seededService(t, "0", friday)
	before, _ := repo.get(testEmail)

	amounts := []string{"12.50", "7.25", "0.25"}
	for _, a := range amounts {
		_, err := svc.Credit(context.Background(), testEmail, decimal.RequireFromString(a))
		require.NoError(t, err)
	}

	w, _ := repo.get(testEmail)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(20)), "balance %s", w.Balance)
	assert.Equal(t, int64(0), w.Points)
	assert.True(t, w.LastUpdate.Equal(before.LastUpdate))
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"zero", decimal.Zero},
		{"negative", decimal.NewFromInt(-5)},
		{"sub-cent", decimal.RequireFromString("0.001")},
		{"extreme negative exponent", decimal.RequireFromString("1e-400000000")},
		{"beyond balance range", decimal.RequireFromString("1e400000000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Credit(context.Background(), testEmail, tt.amount)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
	assert.Equal(t, 0, repo.writes)
}

func TestDebitRejectsUnstorableAmounts(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	for _, v := range []string{"1e-400000000", "-1e400000000", "0.005"} {
		err := svc.Debit(context.Background(), testEmail, decimal.RequireFromString(v))
		assert.ErrorIs(t, err, ErrInvalidAmount, v)
	}
	assert.Equal(t, 0, repo.writes)
}

func TestEmailsAreMatchedCaseInsensitively(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	require.NoError(t, svc.Debit(context.Background(), " Buyer@Example.COM ", decimal.NewFromInt(10)))
	_, err := svc.Credit(context.Background(), "BUYER@example.com", decimal.NewFromInt(5))
	require.NoError(t, err)

	w, err := svc.Lookup(context.Background(), "Buyer@Example.com")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(95)), "balance %s", w.Balance)
	assert.Equal(t, 1, len(repo.wallets))
}

func TestCreditUnknownWallet(t *testing.T) {
	svc, _ := seededService(t, "100", friday)

	_, err := svc.Credit(context.Background(), "ghost@example.com", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestLookup(t *testing.T) {
	svc, repo := seededService(t, "100", friday)

	w, err := svc.Lookup(context.Background(), testEmail)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))

	w, err = svc.Lookup(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, w)

	repo.failGet = errors.New("connection reset")
	_, err = svc.Lookup(context.Background(), testEmail)
	assert.Error(t, err)
}

func TestDebitLogsThroughRequestLogger(t *testing.T) {
	svc, _ := seededService(t, "100", friday)

	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := logger.With(logger.WithContext(context.Background(), &base), "queue", "WalletQueue")

	require.NoError(t, svc.Debit(ctx, testEmail, decimal.NewFromInt(30)))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "WalletQueue", entry["queue"])
	assert.Equal(t, testEmail, entry["user_email"])
	assert.Equal(t, "wallet debit applied", entry["message"])
}
