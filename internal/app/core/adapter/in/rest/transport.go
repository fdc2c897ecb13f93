package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// HTTP 路由
const (
	HealthCheckPath = "/v1/healthcheck"
	AccountsPath    = "/v1/accounts"
	AccountPath     = "/v1/accounts/{id}"
	TransferPath    = "/v1/transfer"
)

// ErrBadRequest 請求 body 解析失敗
var ErrBadRequest = errors.New("bad request")

// NewHTTPHandler 建立 HTTP handler，把 endpoint 掛到對應的路由
//
// 參數:
//
//	endpoints: Set - NewSet 建立的 endpoint 集合
//	logger: log.Logger - 記錄 transport 層錯誤
//
// 回傳:
//
//	http.Handler: gorilla/mux router
func NewHTTPHandler(endpoints Set, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	m := mux.NewRouter()
	m.Methods(http.MethodGet).Path(HealthCheckPath).Handler(httptransport.NewServer(
		endpoints.HealthCheckEndpoint,
		decodeEmptyRequest,
		encodeResponse,
		options...,
	))
	m.Methods(http.MethodGet).Path(AccountsPath).Handler(httptransport.NewServer(
		endpoints.ListAccountsEndpoint,
		decodeEmptyRequest,
		encodeResponse,
		options...,
	))
	m.Methods(http.MethodPost).Path(AccountsPath).Handler(httptransport.NewServer(
		endpoints.CreateAccountEndpoint,
		decodeCreateAccountRequest,
		encodeResponse,
		options...,
	))
	m.Methods(http.MethodGet).Path(AccountPath).Handler(httptransport.NewServer(
		endpoints.GetAccountEndpoint,
		decodeGetAccountRequest,
		encodeResponse,
		options...,
	))
	m.Methods(http.MethodPost).Path(TransferPath).Handler(httptransport.NewServer(
		endpoints.TransferEndpoint,
		decodeTransferRequest,
		encodeResponse,
		options...,
	))
	return m
}

// errorEncoder 依錯誤種類決定 HTTP 狀態碼，body 統一為 {"success":false,"error":...}
func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err2code(err))
	_ = json.NewEncoder(w).Encode(errorWrapper{Success: false, Error: err.Error()})
}

func err2code(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAmountMustBePositive),
		errors.Is(err, domain.ErrNegativeBalance),
		errors.Is(err, domain.ErrEmptyAccountID),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorWrapper struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func decodeEmptyRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return struct{}{}, nil
}

func decodeCreateAccountRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return req, nil
}

func decodeGetAccountRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return GetAccountRequest{ID: mux.Vars(r)["id"]}, nil
}

func decodeTransferRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return req, nil
}

// encodeResponse 回應帶有錯誤時改走 errorEncoder
func encodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
