package domain

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_DepositWithdraw(t *testing.T) {
	acc := NewAccount("123", decimal.NewFromInt(1000))

	require.NoError(t, acc.Withdraw(decimal.NewFromInt(200)))
	require.NoError(t, acc.Deposit(decimal.RequireFromString("0.5")))
	assert.Equal(t, "800.5", acc.Snapshot().Balance.String())

	err := acc.Withdraw(decimal.NewFromInt(801))
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "123", insufficient.AccountID)
	assert.Equal(t, "800.5", insufficient.Balance.String())
	assert.Equal(t, "800.5", acc.Snapshot().Balance.String())

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		assert.ErrorIs(t, acc.Deposit(amount), ErrAmountMustBePositive)
		assert.ErrorIs(t, acc.Withdraw(amount), ErrAmountMustBePositive)
	}
	assert.Equal(t, "800.5", acc.Snapshot().Balance.String())
}

func TestAccount_CheckFunds(t *testing.T) {
	acc := NewAccount("123", decimal.NewFromInt(100))

	assert.NoError(t, acc.CheckFunds(decimal.NewFromInt(100)))
	assert.ErrorIs(t, acc.CheckFunds(decimal.RequireFromString("100.01")), ErrInsufficientBalance)
}

func TestAccountSnapshot_JSON(t *testing.T) {
	tests := []struct {
		balance string
		want    string
	}{
		{"799.50", `{"id":"123","balance":"799.50"}`},
		{"800", `{"id":"123","balance":"800"}`},
		{"1e3", `{"id":"123","balance":"1000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.balance, func(t *testing.T) {
			data, err := json.Marshal(AccountSnapshot{ID: "123", Balance: decimal.RequireFromString(tt.balance)})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back AccountSnapshot
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, back.Balance.Equal(decimal.RequireFromString(tt.balance)))
		})
	}
}

func TestNewAccount_SequenceIsUnique(t *testing.T) {
	a := NewAccount("x", decimal.Zero)
	b := NewAccount("x", decimal.Zero)
	assert.Less(t, a.seq, b.seq)
}

func TestLockOrder(t *testing.T) {
	a := NewAccount("123", decimal.Zero)
	b := NewAccount("456", decimal.Zero)
	// 同 ID 的不同實例依 seq 排序
	dupFirst := NewAccount("789", decimal.Zero)
	dupSecond := NewAccount("789", decimal.Zero)

	tests := []struct {
		name string
		in   []*Account
		want []*Account
	}{
		{name: "already ordered", in: []*Account{a, b}, want: []*Account{a, b}},
		{name: "reversed", in: []*Account{b, a}, want: []*Account{a, b}},
		{name: "same account twice", in: []*Account{a, a}, want: []*Account{a}},
		{name: "nil ignored", in: []*Account{nil, b, nil}, want: []*Account{b}},
		{name: "tie broken by sequence", in: []*Account{dupSecond, b, dupFirst}, want: []*Account{b, dupFirst, dupSecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lockOrder(tt.in))
		})
	}
}

func TestLockOrderIDs(t *testing.T) {
	a := NewAccount("123", decimal.Zero)
	b := NewAccount("456", decimal.Zero)

	assert.Equal(t, []string{"123", "456"}, LockOrderIDs(b, a))
	assert.Equal(t, []string{"123"}, LockOrderIDs(a, a))
	assert.Equal(t, []string{"123", "456"}, LockOrderIDs(a, b))
}

func TestLockAccounts_SelfLocksOnce(t *testing.T) {
	acc := NewAccount("123", decimal.Zero)

	done := make(chan struct{})
	go func() {
		unlock := LockAccounts(acc, acc)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking the same account twice deadlocked")
	}
	assert.True(t, acc.mu.TryLock())
	acc.mu.Unlock()
}

func TestLockAccounts_UnlockIsIdempotent(t *testing.T) {
	a := NewAccount("123", decimal.Zero)
	b := NewAccount("456", decimal.Zero)

	unlock := LockAccounts(b, a)
	assert.False(t, a.mu.TryLock())
	assert.False(t, b.mu.TryLock())

	unlock()
	unlock()
	require.True(t, a.mu.TryLock())
	require.True(t, b.mu.TryLock())
	a.mu.Unlock()
	b.mu.Unlock()
}

func TestLockAccounts_OppositeOrderDoesNotDeadlock(t *testing.T) {
	a := NewAccount("123", decimal.Zero)
	b := NewAccount("456", decimal.Zero)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			LockAccounts(a, b)()
		}()
		go func() {
			defer wg.Done()
			LockAccounts(b, a)()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("opposite lock order deadlocked")
	}
}
