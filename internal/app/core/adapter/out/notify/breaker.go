package notify

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/sony/gobreaker"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// BreakerConfig 熔斷設定
type BreakerConfig struct {
	// ConsecutiveFailures: 連續失敗幾次後斷開
	ConsecutiveFailures uint32
	// OpenTimeout: 斷開多久後進入 half-open 試探
	OpenTimeout time.Duration
}

// BreakerNotifier 以熔斷器包住下游 Notifier
//
// 通知是在持有帳戶鎖的期間送出的，下游掛掉時斷開後直接回錯，不再等待逾時
type BreakerNotifier struct {
	next    usecase.Notifier
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerNotifier(name string, next usecase.Notifier, cfg BreakerConfig, logger log.Logger) *BreakerNotifier {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	logger = log.With(logger, "component", "notifier_breaker", "name", name)
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			_ = level.Warn(logger).Log("msg", "breaker state changed", "from", from.String(), "to", to.String())
		},
	}
	return &BreakerNotifier{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (n *BreakerNotifier) Notify(ctx context.Context, account *domain.Account, message string) error {
	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.next.Notify(ctx, account, message)
	})
	return err
}

// State 目前熔斷狀態 (closed / open / half-open)
func (n *BreakerNotifier) State() string {
	return n.breaker.State().String()
}

var _ usecase.Notifier = (*BreakerNotifier)(nil)
