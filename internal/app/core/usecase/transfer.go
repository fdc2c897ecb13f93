package usecase

import (
	"context"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// TransferEngine 負責在兩個帳戶之間搬移資金
//
// 每個帳戶各自一把鎖，依 domain.LockAccounts 的固定順序取得，
// 不相交的帳戶對可以完全平行，沒有整個服務層級的大鎖。
type TransferEngine struct {
	store    AccountStore
	notifier Notifier
	logger   log.Logger
}

func NewTransferEngine(store AccountStore, notifier Notifier, logger log.Logger) *TransferEngine {
	return &TransferEngine{
		store:    store,
		notifier: notifier,
		logger:   log.With(logger, "component", "transfer_engine"),
	}
}

// Transfer 從 fromID 轉 amount 到 toID
//
// 參數:
//
//	ctx: 上下文 (只傳給 Notifier，不會中斷已開始的轉帳)
//	fromID: 轉出帳戶
//	toID: 轉入帳戶 (可與 fromID 相同，視為驗證後的 no-op)
//	amount: 金額，必須 > 0
//
// 回傳:
//
//	error: *domain.InvalidAmountError / *domain.AccountNotFoundError /
//	       *domain.InsufficientFundsError，或餘額已異動但通知失敗時的 *domain.NotificationError
func (e *TransferEngine) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	tran := domain.NewTransfer(fromID, toID, amount)

	// 1. 不需要鎖的檢查
	if err := tran.Validate(); err != nil {
		return err
	}

	// 2. 取得帳戶 (仍未上鎖)
	fromAccount, err := e.store.Get(ctx, tran.FromID)
	if err != nil {
		return err
	}
	toAccount, err := e.store.Get(ctx, tran.ToID)
	if err != nil {
		return err
	}

	// 3. 依固定順序上鎖，所有路徑都會釋放
	unlock := domain.LockAccounts(fromAccount, toAccount)
	defer unlock()
	_ = level.Debug(e.logger).Log("msg", "accounts locked", "transfer_id", tran.ID, "lock_ids", strings.Join(domain.LockOrderIDs(fromAccount, toAccount), ","))

	return e.apply(ctx, tran, fromAccount, toAccount)
}

// apply 在持有兩把鎖的情況下檢查餘額、異動、通知
func (e *TransferEngine) apply(ctx context.Context, tran *domain.Transfer, fromAccount, toAccount *domain.Account) error {
	if fromAccount == toAccount {
		return fromAccount.CheckFunds(tran.Amount)
	}

	if err := fromAccount.Withdraw(tran.Amount); err != nil {
		return err
	}
	// amount 已驗證為正數，Deposit 不會失敗
	_ = toAccount.Deposit(tran.Amount)

	return e.notify(ctx, tran, fromAccount, toAccount)
}

// notify 兩邊都會嘗試通知，失敗不回滾餘額
func (e *TransferEngine) notify(ctx context.Context, tran *domain.Transfer, fromAccount, toAccount *domain.Account) error {
	var failures []domain.NotificationFailure
	if err := e.notifier.Notify(ctx, fromAccount, tran.SentMessage()); err != nil {
		failures = append(failures, domain.NotificationFailure{AccountID: fromAccount.ID(), Err: err})
	}
	if err := e.notifier.Notify(ctx, toAccount, tran.ReceivedMessage()); err != nil {
		failures = append(failures, domain.NotificationFailure{AccountID: toAccount.ID(), Err: err})
	}
	if len(failures) == 0 {
		return nil
	}

	notifyErr := &domain.NotificationError{Failures: failures}
	_ = level.Warn(e.logger).Log("msg", "transfer applied but notification failed", "transfer_id", tran.ID, "err", notifyErr)
	return notifyErr
}
