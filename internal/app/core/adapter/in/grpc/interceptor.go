package grpc

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoveryInterceptor 把 handler 的 panic 轉成 codes.Internal，避免整個行程結束 (帳戶餘額只存在記憶體)
func RecoveryInterceptor(logger log.Logger) grpc.UnaryServerInterceptor {
	logger = log.With(logger, "component", "grpc_recovery")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				_ = level.Error(logger).Log("msg", "panic in handler", "method", info.FullMethod, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
				resp, err = nil, status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
