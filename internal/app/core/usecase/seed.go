package usecase

import (
	"context"
	"fmt"
)

// SeedAccounts 把 loader 載入的帳戶寫入 store
//
// 參數:
//
//	ctx: 上下文
//	loader: 初始帳戶來源 (設定檔 / MySQL)
//	store: 目標 store
//
// 回傳:
//
//	int: 寫入的帳戶數
//	error: 載入失敗或帳戶 ID 重複
func SeedAccounts(ctx context.Context, loader AccountLoader, store AccountStore) (int, error) {
	accounts, err := loader.LoadAllAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load accounts: %w", err)
	}
	for i, account := range accounts {
		if err := store.Create(ctx, account); err != nil {
			return i, fmt.Errorf("seed account %s: %w", account.ID(), err)
		}
	}
	return len(accounts), nil
}
