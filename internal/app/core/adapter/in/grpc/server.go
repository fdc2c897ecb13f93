package grpc

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

type GrpcServer struct {
	core usecase.Service
}

func NewGrpcServer(core usecase.Service) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	balance, err := decimalField(req, "balance")
	if err != nil {
		return nil, err
	}
	if err := s.core.CreateAccount(ctx, stringField(req, "id"), balance); err != nil {
		return nil, toStatus(err)
	}
	return successResponse("")
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	account, err := s.core.GetAccount(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(accountFields(account))
}

func (s *GrpcServer) ListAccounts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	accounts, err := s.core.ListAccounts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, 0, len(accounts))
	for _, account := range accounts {
		list = append(list, accountFields(account))
	}
	return structpb.NewStruct(map[string]any{"accounts": list})
}

func (s *GrpcServer) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// 1. 解析金額
	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, err
	}

	// 2. 執行轉帳
	err = s.core.Transfer(ctx, stringField(req, "from_id"), stringField(req, "to_id"), amount)
	if err != nil {
		// 餘額已異動，通知失敗只當作警告
		if errors.Is(err, domain.ErrNotificationFailed) {
			return successResponse(err.Error())
		}
		return nil, toStatus(err)
	}
	return successResponse("")
}

// toStatus 把 domain 錯誤轉成 gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrAmountMustBePositive),
		errors.Is(err, domain.ErrNegativeBalance),
		errors.Is(err, domain.ErrEmptyAccountID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func successResponse(warning string) (*structpb.Struct, error) {
	fields := map[string]any{"success": true}
	if warning != "" {
		fields["warning"] = warning
	}
	return structpb.NewStruct(fields)
}

func accountFields(account domain.AccountSnapshot) map[string]any {
	return map[string]any{
		"id":      account.ID,
		"balance": domain.FormatAmount(account.Balance),
	}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// decimalField 金額建議以字串傳遞，數字型別會經過 float64
func decimalField(s *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "missing field %q", key)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s %q: %v", key, kind.StringValue, err)
		}
		return d, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s %v", key, kind.NumberValue)
		}
		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "field %q must be a decimal string", key)
	}
}

var _ TransferServiceServer = (*GrpcServer)(nil)
