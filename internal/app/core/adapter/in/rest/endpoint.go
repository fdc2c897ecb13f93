package rest

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// Set 轉帳服務對外的所有 endpoint
type Set struct {
	HealthCheckEndpoint   endpoint.Endpoint
	CreateAccountEndpoint endpoint.Endpoint
	GetAccountEndpoint    endpoint.Endpoint
	ListAccountsEndpoint  endpoint.Endpoint
	TransferEndpoint      endpoint.Endpoint
}

// NewSet 把 Service 的每個方法包成 endpoint
//
// 參數:
//
//	svc: usecase.Service - 已套上 LoggingMiddleware 的服務
//
// 回傳:
//
//	Set: 給 NewHTTPHandler 使用的 endpoint 集合
func NewSet(svc usecase.Service) Set {
	return Set{
		HealthCheckEndpoint:   MakeHealthCheckEndpoint(svc),
		CreateAccountEndpoint: MakeCreateAccountEndpoint(svc),
		GetAccountEndpoint:    MakeGetAccountEndpoint(svc),
		ListAccountsEndpoint:  MakeListAccountsEndpoint(svc),
		TransferEndpoint:      MakeTransferEndpoint(svc),
	}
}

func MakeHealthCheckEndpoint(s usecase.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		v, err := s.HealthCheck(ctx)
		return HealthCheckResponse{Success: v, Err: err}, nil
	}
}

func MakeCreateAccountEndpoint(s usecase.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(CreateAccountRequest)
		err := s.CreateAccount(ctx, req.ID, req.Balance)
		return CreateAccountResponse{Success: err == nil, Err: err}, nil
	}
}

func MakeGetAccountEndpoint(s usecase.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(GetAccountRequest)
		account, err := s.GetAccount(ctx, req.ID)
		if err != nil {
			return AccountResponse{Err: err}, nil
		}
		return AccountResponse{Success: true, Account: &account}, nil
	}
}

func MakeListAccountsEndpoint(s usecase.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		accounts, err := s.ListAccounts(ctx)
		return AccountsResponse{Success: err == nil, Accounts: accounts, Err: err}, nil
	}
}

// MakeTransferEndpoint 餘額已搬移但通知失敗時，回傳成功並附上 warning
func MakeTransferEndpoint(s usecase.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TransferRequest)
		err := s.Transfer(ctx, req.FromID, req.ToID, req.Amount)
		if errors.Is(err, domain.ErrNotificationFailed) {
			return TransferResponse{Success: true, Warning: err.Error()}, nil
		}
		return TransferResponse{Success: err == nil, Err: err}, nil
	}
}

// 編譯期檢查: 回應都要實作 endpoint.Failer
var (
	_ endpoint.Failer = HealthCheckResponse{}
	_ endpoint.Failer = CreateAccountResponse{}
	_ endpoint.Failer = AccountResponse{}
	_ endpoint.Failer = AccountsResponse{}
	_ endpoint.Failer = TransferResponse{}
)

// CreateAccountRequest POST /v1/accounts 的 body
type CreateAccountRequest struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// GetAccountRequest ID 取自路徑
type GetAccountRequest struct {
	ID string
}

// TransferRequest POST /v1/transfer 的 body
//
// 結構:
//
//	FromID: 轉出帳戶
//	ToID: 轉入帳戶
//	Amount: 金額，接受 JSON 字串或數字
type TransferRequest struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Amount decimal.Decimal `json:"amount"`
}

type HealthCheckResponse struct {
	Success bool  `json:"success"`
	Err     error `json:"-"`
}

type CreateAccountResponse struct {
	Success bool  `json:"success"`
	Err     error `json:"-"`
}

// AccountResponse 餘額格式見 domain.AccountSnapshot.MarshalJSON
type AccountResponse struct {
	Success bool                    `json:"success"`
	Account *domain.AccountSnapshot `json:"account,omitempty"`
	Err     error                   `json:"-"`
}

type AccountsResponse struct {
	Success  bool                     `json:"success"`
	Accounts []domain.AccountSnapshot `json:"accounts"`
	Err      error                    `json:"-"`
}

// TransferResponse Warning 只在通知失敗時出現
type TransferResponse struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
	Err     error  `json:"-"`
}

func (r HealthCheckResponse) Failed() error { return r.Err }

func (r CreateAccountResponse) Failed() error { return r.Err }

func (r AccountResponse) Failed() error { return r.Err }

func (r AccountsResponse) Failed() error { return r.Err }

func (r TransferResponse) Failed() error { return r.Err }
