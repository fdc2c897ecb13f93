package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-transfer/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        string          `gorm:"primaryKey;size:64"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UpdatedAt int64           `gorm:"autoUpdateTime:milli"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// AccountLoader 啟動時從 MySQL 載入初始帳戶，只讀不寫
type AccountLoader struct {
	client *mysql.Client
}

func NewAccountLoader(client *mysql.Client) *AccountLoader {
	return &AccountLoader{
		client: client,
	}
}

// LoadAllAccounts 載入 accounts 表所有帳戶 (依 ID 排序)
//
// 參數:
//
//	ctx: 上下文
//
// 回傳:
//
//	[]*domain.Account: 帳戶列表
//	error: 查詢錯誤，或資料庫中有負餘額
func (loader *AccountLoader) LoadAllAccounts(ctx context.Context) ([]*domain.Account, error) {
	var rows []sqlAccount
	if err := loader.client.DB().WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	return toDomainAccounts(rows)
}

func toDomainAccounts(rows []sqlAccount) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			return nil, domain.ErrEmptyAccountID
		}
		if row.Balance.IsNegative() {
			return nil, fmt.Errorf("account %s: %w", row.ID, &domain.InvalidAmountError{Amount: row.Balance, Err: domain.ErrNegativeBalance})
		}
		accounts = append(accounts, domain.NewAccount(row.ID, row.Balance))
	}
	return accounts, nil
}

var _ usecase.AccountLoader = (*AccountLoader)(nil)
