package notify

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// LogNotifier 把通知寫到 log
type LogNotifier struct {
	logger log.Logger
}

func NewLogNotifier(logger log.Logger) *LogNotifier {
	return &LogNotifier{logger: log.With(logger, "component", "notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, account *domain.Account, message string) error {
	return level.Info(n.logger).Log("msg", "notify account", "account", account.ID(), "message", message)
}

var _ usecase.Notifier = (*LogNotifier)(nil)
