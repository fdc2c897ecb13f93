package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// AccountStore 使用 map + RWMutex 實現的帳戶 store
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	mu: 只保護 map 本身 (帳戶是否存在)，不保護餘額
type AccountStore struct {
	accounts map[string]*domain.Account
	mu       sync.RWMutex
}

// NewAccountStore 建立一個新的 AccountStore 實例
//
// 參數:
//
//	accounts: 初始帳戶 (ID 重複時回傳錯誤)
//
// 回傳:
//
//	*AccountStore: AccountStore 實例
//	error: 初始帳戶 ID 重複
func NewAccountStore(accounts ...*domain.Account) (*AccountStore, error) {
	store := &AccountStore{
		accounts: make(map[string]*domain.Account, len(accounts)),
	}
	for _, account := range accounts {
		if err := store.Create(context.Background(), account); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Create 新增帳戶
//
// 參數:
//
//	ctx: 上下文
//	account: 要新增的帳戶
//
// 回傳:
//
//	error: ID 已存在時回傳 *domain.DuplicateAccountError，原帳戶不受影響
func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID()]; ok {
		return &domain.DuplicateAccountError{AccountID: account.ID()}
	}
	s.accounts[account.ID()] = account
	return nil
}

// Get 取得帳戶
//
// 參數:
//
//	ctx: 上下文
//	id: 帳戶 ID
//
// 回傳:
//
//	*domain.Account: 帳戶 (與 store 共用同一個實例)
//	error: 找不到時回傳 *domain.AccountNotFoundError
func (s *AccountStore) Get(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, &domain.AccountNotFoundError{AccountID: id}
	}
	return account, nil
}

// List 依 ID 排序回傳所有帳戶
func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	accounts := make([]*domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	s.mu.RUnlock()

	slices.SortFunc(accounts, func(a, b *domain.Account) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return accounts, nil
}

var _ usecase.AccountStore = (*AccountStore)(nil)
