package account_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/domain/account"
	"ledgerd/internal/domain/models"
)

func newTestAccount(balance int64) *models.Account {
	return &models.Account{ID: 1, Balance: balance}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		amount  int64
		want    int64
		wantErr bool
	}{
		{"valid", 1000, 500, 1500, false},
		{"zero rejected", 1000, 0, 1000, true},
		{"negative rejected", 1000, -100, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccount(tt.initial)
			balance, err := account.Add(acc, tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, balance)
			}
			assert.Equal(t, tt.want, acc.Balance)
		})
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		amount  int64
		want    int64
		wantErr bool
	}{
		{"valid", 1000, 300, 700, false},
		{"insufficient funds", 200, 500, 200, true},
		{"negative rejected", 200, -50, 200, true},
		{"exact balance allowed", 500, 500, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccount(tt.initial)
			_, err := account.Remove(acc, tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, acc.Balance)
		})
	}
}

func TestBalance(t *testing.T) {
	acc := newTestAccount(500)
	assert.Equal(t, int64(500), account.Balance(acc))
}

func TestConcurrentAdd(t *testing.T) {
	acc := newTestAccount(0)
	var wg sync.WaitGroup
	n := 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := account.Add(acc, 1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(n), account.Balance(acc))
}

func TestConcurrentAddAndRemove(t *testing.T) {
	acc := newTestAccount(1000)
	var wg sync.WaitGroup
	n := 200
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = account.Add(acc, 2)
		}()
		go func() {
			defer wg.Done()
			_, _ = account.Remove(acc, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000+n), account.Balance(acc))
}
