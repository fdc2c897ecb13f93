package usecase

import (
	"context"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// AccountStore 帳戶的 keyed store
//
// Create/Get 各自為原子操作，但 store 不負責保護帳戶餘額，那是 TransferEngine 的責任。
type AccountStore interface {
	// Create ID 已存在時回傳 *domain.DuplicateAccountError
	Create(ctx context.Context, account *domain.Account) error
	// Get 找不到時回傳 *domain.AccountNotFoundError
	Get(ctx context.Context, id string) (*domain.Account, error)
	// List 依 ID 排序回傳所有帳戶
	List(ctx context.Context) ([]*domain.Account, error)
}

// Notifier 通知帳戶持有人，實際送達方式對核心不透明
type Notifier interface {
	Notify(ctx context.Context, account *domain.Account, message string) error
}

// AccountLoader 啟動時載入初始帳戶
type AccountLoader interface {
	LoadAllAccounts(ctx context.Context) ([]*domain.Account, error)
}

// AccountLoaderFunc 讓一般函式可以當作 AccountLoader
type AccountLoaderFunc func(ctx context.Context) ([]*domain.Account, error)

func (f AccountLoaderFunc) LoadAllAccounts(ctx context.Context) ([]*domain.Account, error) {
	return f(ctx)
}
