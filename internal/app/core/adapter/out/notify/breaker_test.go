package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

func TestBreakerNotifier_TripsAfterConsecutiveFailures(t *testing.T) {
	errDown := errors.New("webhook down")
	calls := 0
	next := funcNotifier(func(*domain.Account, string) error {
		calls++
		return errDown
	})
	n := NewBreakerNotifier("webhook", next, BreakerConfig{ConsecutiveFailures: 3, OpenTimeout: time.Minute}, log.NewNopLogger())
	acc := domain.NewAccount("123", decimal.Zero)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, n.Notify(context.Background(), acc, "hi"), errDown)
	}
	assert.Equal(t, "open", n.State())

	// 斷開後不再呼叫下游
	assert.ErrorIs(t, n.Notify(context.Background(), acc, "hi"), gobreaker.ErrOpenState)
	assert.Equal(t, 3, calls)
}

func TestBreakerNotifier_PassesThrough(t *testing.T) {
	var got string
	next := funcNotifier(func(_ *domain.Account, message string) error {
		got = message
		return nil
	})
	n := NewBreakerNotifier("webhook", next, BreakerConfig{}, log.NewNopLogger())

	assert.NoError(t, n.Notify(context.Background(), domain.NewAccount("123", decimal.Zero), "Received 1 from account 456"))
	assert.Equal(t, "Received 1 from account 456", got)
	assert.Equal(t, "closed", n.State())
}
