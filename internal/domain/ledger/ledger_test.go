package ledger_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/domain/ledger"
)

func timeoutAfter(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(5 * time.Second)
}

func TestCreate(t *testing.T) {
	l := ledger.New(2)

	id1, err := l.Create()
	require.NoError(t, err)
	assert.Equal(t, 0, id1)

	id2, err := l.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, id2)

	_, err = l.Create()
	assert.ErrorIs(t, err, ledger.ErrFull)
}

func TestDepositAndWithdraw(t *testing.T) {
	l := ledger.New(10)
	id, err := l.Create()
	require.NoError(t, err)

	balance, err := l.Deposit(id, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)

	balance, err = l.Withdraw(id, 400)
	require.NoError(t, err)
	assert.Equal(t, int64(600), balance)

	_, err = l.Withdraw(id, 10000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	_, err = l.Deposit(id, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = l.Deposit(999, 100)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTransfer(t *testing.T) {
	l := ledger.New(10)
	from, _ := l.Create()
	to, _ := l.Create()
	_, err := l.Deposit(from, 1000)
	require.NoError(t, err)

	fromBalance, err := l.Transfer(from, to, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(700), fromBalance)

	toBalance, err := l.BalanceOf(to)
	require.NoError(t, err)
	assert.Equal(t, int64(300), toBalance)

	_, err = l.Transfer(from, from, 100)
	assert.ErrorIs(t, err, ledger.ErrSameAccount)

	_, err = l.Transfer(from, to, 10000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	_, err = l.Transfer(from, 999, 100)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestBalanceOfUnknownAccount(t *testing.T) {
	l := ledger.New(10)
	_, err := l.BalanceOf(42)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSnapshot(t *testing.T) {
	l := ledger.New(10)
	a, _ := l.Create()
	b, _ := l.Create()
	_, _ = l.Deposit(a, 500)
	_, _ = l.Deposit(b, 250)

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, ledger.AccountBalance{ID: a, Balance: 500}, snapshot[0])
	assert.Equal(t, ledger.AccountBalance{ID: b, Balance: 250}, snapshot[1])
}

// TestConcurrentTransfer mirrors the teacher's concurrent_transfer_test.go:
// a large number of concurrent transfers between the same two accounts
// must land on an exact final balance, never a lost update.
func TestConcurrentTransfer(t *testing.T) {
	l := ledger.New(10)
	from, _ := l.Create()
	to, _ := l.Create()
	_, err := l.Deposit(from, 10000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	n := 200
	amount := int64(10)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Transfer(from, to, amount)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	fromFinal, _ := l.BalanceOf(from)
	toFinal, _ := l.BalanceOf(to)
	assert.Equal(t, int64(10000)-int64(n)*amount, fromFinal)
	assert.Equal(t, int64(n)*amount, toFinal)
}

// TestConcurrentCrossTransfersNoDeadlock exercises transfers running in
// both directions between the same pair of accounts simultaneously —
// the scenario that would deadlock without a total lock order.
func TestConcurrentCrossTransfersNoDeadlock(t *testing.T) {
	l := ledger.New(10)
	a, _ := l.Create()
	b, _ := l.Create()
	_, _ = l.Deposit(a, 100000)
	_, _ = l.Deposit(b, 100000)

	var wg sync.WaitGroup
	n := 500
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = l.Transfer(a, b, 1)
		}()
		go func() {
			defer wg.Done()
			_, _ = l.Transfer(b, a, 1)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("deadlock detected: concurrent cross-transfers did not complete")
	}

	aFinal, _ := l.BalanceOf(a)
	bFinal, _ := l.BalanceOf(b)
	assert.Equal(t, int64(200000), aFinal+bFinal)
}
