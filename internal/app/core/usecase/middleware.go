package usecase

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// Middleware 包裝 Service 的裝飾器
type Middleware func(Service) Service

// LoggingMiddleware 每個方法呼叫結束後記錄參數與錯誤
func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger: logger, next: next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) HealthCheck(ctx context.Context) (success bool, err error) {
	defer func() {
		_ = level.Debug(mw.logger).Log("method", "HealthCheck", "success", success, "err", err)
	}()
	return mw.next.HealthCheck(ctx)
}

func (mw loggingMiddleware) CreateAccount(ctx context.Context, id string, balance decimal.Decimal) (err error) {
	defer func() {
		_ = mw.log(err).Log("method", "CreateAccount", "id", id, "balance", balance, "err", err)
	}()
	return mw.next.CreateAccount(ctx, id, balance)
}

func (mw loggingMiddleware) GetAccount(ctx context.Context, id string) (_ domain.AccountSnapshot, err error) {
	defer func() {
		_ = mw.log(err).Log("method", "GetAccount", "id", id, "err", err)
	}()
	return mw.next.GetAccount(ctx, id)
}

func (mw loggingMiddleware) ListAccounts(ctx context.Context) (accounts []domain.AccountSnapshot, err error) {
	defer func() {
		_ = mw.log(err).Log("method", "ListAccounts", "count", len(accounts), "err", err)
	}()
	return mw.next.ListAccounts(ctx)
}

func (mw loggingMiddleware) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (err error) {
	defer func() {
		_ = mw.log(err).Log("method", "Transfer", "from", fromID, "to", toID, "amount", amount, "err", err)
	}()
	return mw.next.Transfer(ctx, fromID, toID, amount)
}

// log 有錯誤時用 warn，否則 info
func (mw loggingMiddleware) log(err error) log.Logger {
	if err != nil {
		return level.Warn(mw.logger)
	}
	return level.Info(mw.logger)
}
