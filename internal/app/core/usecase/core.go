package usecase

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// Service 對外 (gRPC / HTTP) 提供的操作
type Service interface {
	HealthCheck(ctx context.Context) (bool, error)
	CreateAccount(ctx context.Context, id string, balance decimal.Decimal) error
	GetAccount(ctx context.Context, id string) (domain.AccountSnapshot, error)
	ListAccounts(ctx context.Context) ([]domain.AccountSnapshot, error)
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error
}

// New 建立已掛上 middleware 的 Service
func New(store AccountStore, notifier Notifier, logger log.Logger) Service {
	var svc Service
	{
		svc = NewCoreUseCase(store, NewTransferEngine(store, notifier, logger))
		svc = LoggingMiddleware(log.With(logger, "component", "service"))(svc)
	}
	return svc
}

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	store  AccountStore
	engine *TransferEngine
}

func NewCoreUseCase(store AccountStore, engine *TransferEngine) *CoreUseCase {
	return &CoreUseCase{
		store:  store,
		engine: engine,
	}
}

// HealthCheck 服務是否可用
func (c *CoreUseCase) HealthCheck(_ context.Context) (bool, error) {
	return true, nil
}

// CreateAccount 建立帳戶
//
// 參數:
//
//	ctx: 上下文
//	id: 帳戶 ID (不可為空)
//	balance: 初始餘額 (不可為負)
//
// 回傳:
//
//	error: domain.ErrEmptyAccountID / *domain.InvalidAmountError / *domain.DuplicateAccountError
func (c *CoreUseCase) CreateAccount(ctx context.Context, id string, balance decimal.Decimal) error {
	if id == "" {
		return domain.ErrEmptyAccountID
	}
	if balance.IsNegative() {
		return &domain.InvalidAmountError{Amount: balance, Err: domain.ErrNegativeBalance}
	}
	return c.store.Create(ctx, domain.NewAccount(id, balance))
}

// GetAccount 取得帳戶目前餘額
func (c *CoreUseCase) GetAccount(ctx context.Context, id string) (domain.AccountSnapshot, error) {
	account, err := c.store.Get(ctx, id)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	return account.Snapshot(), nil
}

// ListAccounts 取得所有帳戶 (依 ID 排序)
//
// 每個帳戶各自取快照，並非整個帳本的一致性快照
func (c *CoreUseCase) ListAccounts(ctx context.Context) ([]domain.AccountSnapshot, error) {
	accounts, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]domain.AccountSnapshot, 0, len(accounts))
	for _, account := range accounts {
		snapshots = append(snapshots, account.Snapshot())
	}
	return snapshots, nil
}

// Transfer 轉帳
func (c *CoreUseCase) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	return c.engine.Transfer(ctx, fromID, toID, amount)
}

var _ Service = (*CoreUseCase)(nil)
