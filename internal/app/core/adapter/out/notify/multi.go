package notify

import (
	"context"
	"errors"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// Multi 依序呼叫每個 Notifier，全部都會嘗試，錯誤合併回傳
type Multi []usecase.Notifier

func (m Multi) Notify(ctx context.Context, account *domain.Account, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, account, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ usecase.Notifier = Multi(nil)
