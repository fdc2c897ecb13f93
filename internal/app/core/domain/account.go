package domain

import (
	"cmp"
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// accountSeq 帳戶的內部流水號，作為鎖順序的第二排序鍵
var accountSeq atomic.Uint64

// Account 帳戶
//
// 結構:
//
//	mu: 帳戶排他鎖，只能透過 LockAccounts 取得
//	seq: 建立時配發的流水號 (ID 相同時的排序依據)
//	id: 帳戶 ID，建立後不可變
//	balance: 餘額
type Account struct {
	mu      sync.Mutex
	seq     uint64
	id      string
	balance decimal.Decimal
}

// AccountSnapshot 帳戶在某一時間點的唯讀副本
type AccountSnapshot struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// MarshalJSON 餘額以 FormatAmount 輸出為字串，與 gRPC 回應相同
func (s AccountSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string `json:"id"`
		Balance string `json:"balance"`
	}{
		ID:      s.ID,
		Balance: FormatAmount(s.Balance),
	})
}

func NewAccount(id string, balance decimal.Decimal) *Account {
	return &Account{
		seq:     accountSeq.Add(1),
		id:      id,
		balance: balance,
	}
}

func (a *Account) ID() string {
	return a.id
}

// Snapshot 取得帳戶目前狀態 (會短暫持有帳戶鎖，不可在 LockAccounts 期間呼叫)
func (a *Account) Snapshot() AccountSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountSnapshot{ID: a.id, Balance: a.balance}
}

// CheckFunds 餘額是否足以支付 amount，呼叫者必須持有帳戶鎖
func (a *Account) CheckFunds(amount decimal.Decimal) error {
	if a.balance.LessThan(amount) {
		return &InsufficientFundsError{AccountID: a.id, Balance: a.balance, Amount: amount}
	}
	return nil
}

// Deposit 存款，呼叫者必須持有帳戶鎖
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Amount: amount, Err: ErrAmountMustBePositive}
	}

	a.balance = a.balance.Add(amount)
	return nil
}

// Withdraw 提款，呼叫者必須持有帳戶鎖
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Amount: amount, Err: ErrAmountMustBePositive}
	}

	if err := a.CheckFunds(amount); err != nil {
		return err
	}

	a.balance = a.balance.Sub(amount)
	return nil
}

// LockAccounts 依照全域固定順序鎖定所有帳戶，回傳解鎖函式
//
// 排序鍵為 (ID, seq)，同一個 *Account 只會鎖一次。
// 任何需要同時持有多個帳戶鎖的程式碼都必須經過這裡，這是避免死鎖的唯一保證。
//
// 參數:
//
//	accounts: 要鎖定的帳戶 (可重複、順序不拘)
//
// 回傳:
//
//	unlock: 以反向順序釋放所有鎖
func LockAccounts(accounts ...*Account) (unlock func()) {
	ordered := lockOrder(accounts)
	for _, acc := range ordered {
		acc.mu.Lock()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(ordered) - 1; i >= 0; i-- {
				ordered[i].mu.Unlock()
			}
		})
	}
}

// LockOrderIDs 回傳 LockAccounts 實際的上鎖順序 (帳戶 ID)
func LockOrderIDs(accounts ...*Account) []string {
	ordered := lockOrder(accounts)
	ids := make([]string, 0, len(ordered))
	for _, acc := range ordered {
		ids = append(ids, acc.id)
	}
	return ids
}

// lockOrder 去除重複 (以指標判斷) 並依 (ID, seq) 排序
func lockOrder(accounts []*Account) []*Account {
	ordered := make([]*Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc == nil || slices.Contains(ordered, acc) {
			continue
		}
		ordered = append(ordered, acc)
	}
	slices.SortFunc(ordered, func(a, b *Account) int {
		if c := cmp.Compare(a.id, b.id); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return ordered
}
