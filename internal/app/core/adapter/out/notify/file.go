package notify

import (
	"context"
	"time"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-transfer/pkg/jsonl"
)

// Notification 寫入檔案 / webhook 的通知內容
type Notification struct {
	AccountID string `json:"account_id"`
	Message   string `json:"message"`
	// SentAt: Unix 毫秒
	SentAt int64 `json:"sent_at"`
}

func newNotification(account *domain.Account, message string) Notification {
	return Notification{
		AccountID: account.ID(),
		Message:   message,
		SentAt:    time.Now().UnixMilli(),
	}
}

// FileNotifier 把通知以 JSON lines 附加到檔案，交給外部程序投遞
type FileNotifier struct {
	file *jsonl.File
}

func NewFileNotifier(file *jsonl.File) *FileNotifier {
	return &FileNotifier{file: file}
}

func (n *FileNotifier) Notify(_ context.Context, account *domain.Account, message string) error {
	return n.file.Append(newNotification(account, message))
}

var _ usecase.Notifier = (*FileNotifier)(nil)
