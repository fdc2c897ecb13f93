package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// 服務名稱與方法路徑
//
// 訊息一律使用 protobuf well-known types，不需要 protoc 產生程式碼:
//
//	CreateAccount: Struct{id, balance}        -> Struct{success}
//	GetAccount:    StringValue(id)            -> Struct{id, balance}
//	ListAccounts:  Struct{}                   -> Struct{accounts: [{id, balance}]}
//	Transfer:      Struct{from_id, to_id, amount} -> Struct{success, warning?}
//
// 金額一律以十進位字串傳遞，避免浮點誤差
const (
	ServiceName = "transfer.v1.TransferService"

	CreateAccountMethod = "/" + ServiceName + "/CreateAccount"
	GetAccountMethod    = "/" + ServiceName + "/GetAccount"
	ListAccountsMethod  = "/" + ServiceName + "/ListAccounts"
	TransferMethod      = "/" + ServiceName + "/Transfer"
)

// TransferServiceServer gRPC 服務端介面
type TransferServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterTransferServiceServer 註冊服務
func RegisterTransferServiceServer(s grpc.ServiceRegistrar, srv TransferServiceServer) {
	s.RegisterService(&transferServiceDesc, srv)
}

var transferServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransferServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAccount", Handler: createAccountHandler},
		{MethodName: "GetAccount", Handler: getAccountHandler},
		{MethodName: "ListAccounts", Handler: listAccountsHandler},
		{MethodName: "Transfer", Handler: transferHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func createAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransferServiceServer).CreateAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateAccountMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransferServiceServer).CreateAccount(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransferServiceServer).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAccountMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransferServiceServer).GetAccount(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listAccountsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransferServiceServer).ListAccounts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListAccountsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransferServiceServer).ListAccounts(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func transferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransferServiceServer).Transfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TransferMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransferServiceServer).Transfer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
