package grpc

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	grpcpool "github.com/JoeShih716/go-mem-transfer/pkg/grpc"
)

type stubNotifier struct {
	err error
}

func (n stubNotifier) Notify(context.Context, *domain.Account, string) error {
	return n.err
}

// newTestClient 在 bufconn 上啟動服務並透過連線池取得客戶端
func newTestClient(t *testing.T, notifier usecase.Notifier) (*Client, grpc.ClientConnInterface) {
	t.Helper()

	store, err := memory.NewAccountStore(
		domain.NewAccount("123", decimal.NewFromInt(1000)),
		domain.NewAccount("456", decimal.NewFromInt(500)),
	)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(RecoveryInterceptor(log.NewNopLogger())))
	RegisterTransferServiceServer(srv, NewGrpcServer(usecase.New(store, notifier, log.NewNopLogger())))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	pool := grpcpool.NewPool(grpcpool.WithDialOptions(
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	))
	t.Cleanup(func() { _ = pool.Close() })

	conn, err := pool.GetConnection("passthrough:///bufnet")
	require.NoError(t, err)
	again, err := pool.GetConnection("passthrough:///bufnet")
	require.NoError(t, err)
	require.Same(t, conn, again)

	return NewClient(conn), conn
}

func TestGrpc_Transfer(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, stubNotifier{})

	warning, err := client.Transfer(ctx, "123", "456", decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Empty(t, warning)

	from, err := client.GetAccount(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "800", from.Balance.String())
	to, err := client.GetAccount(ctx, "456")
	require.NoError(t, err)
	assert.Equal(t, "700", to.Balance.String())
}

func TestGrpc_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, stubNotifier{})

	tests := []struct {
		name   string
		call   func() error
		code   codes.Code
		detail string
	}{
		{
			name: "insufficient funds",
			call: func() error {
				_, err := client.Transfer(ctx, "456", "123", decimal.NewFromInt(600))
				return err
			},
			code:   codes.FailedPrecondition,
			detail: "Insufficient Funds in account 456",
		},
		{
			name: "unknown account",
			call: func() error {
				_, err := client.Transfer(ctx, "123", "999", decimal.NewFromInt(1))
				return err
			},
			code:   codes.NotFound,
			detail: "account 999 not found",
		},
		{
			name: "zero amount",
			call: func() error {
				_, err := client.Transfer(ctx, "123", "456", decimal.Zero)
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "duplicate account",
			call: func() error {
				return client.CreateAccount(ctx, "123", decimal.NewFromInt(1))
			},
			code:   codes.AlreadyExists,
			detail: "Account id 123 already exists!",
		},
		{
			name: "negative balance",
			call: func() error {
				return client.CreateAccount(ctx, "789", decimal.NewFromInt(-1))
			},
			code: codes.InvalidArgument,
		},
		{
			name: "get unknown account",
			call: func() error {
				_, err := client.GetAccount(ctx, "999")
				return err
			},
			code: codes.NotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(tt.call())
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			if tt.detail != "" {
				assert.Equal(t, tt.detail, st.Message())
			}
		})
	}
}

func TestGrpc_NotificationFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, stubNotifier{err: errors.New("mail server down")})

	warning, err := client.Transfer(ctx, "123", "456", decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Contains(t, warning, "notification failed")

	from, err := client.GetAccount(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "800", from.Balance.String())
}

func TestGrpc_CreateAndListAccounts(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, stubNotifier{})

	require.NoError(t, client.CreateAccount(ctx, "789", decimal.RequireFromString("10.50")))

	accounts, err := client.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "123", accounts[0].ID)
	assert.Equal(t, "789", accounts[2].ID)
	assert.Equal(t, "10.5", accounts[2].Balance.String())
}

func TestGrpc_RawRequests(t *testing.T) {
	ctx := context.Background()
	_, conn := newTestClient(t, stubNotifier{})

	// 數字型別的金額也接受
	in, err := structpb.NewStruct(map[string]any{"from_id": "123", "to_id": "456", "amount": 25})
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, TransferMethod, in, out))
	assert.True(t, out.GetFields()["success"].GetBoolValue())

	missing, err := structpb.NewStruct(map[string]any{"from_id": "123", "to_id": "456"})
	require.NoError(t, err)
	err = conn.Invoke(ctx, TransferMethod, missing, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	garbage, err := structpb.NewStruct(map[string]any{"from_id": "123", "to_id": "456", "amount": "abc"})
	require.NoError(t, err)
	err = conn.Invoke(ctx, TransferMethod, garbage, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGrpc_NonFiniteAmountsRejected(t *testing.T) {
	ctx := context.Background()
	client, conn := newTestClient(t, stubNotifier{})

	for name, v := range map[string]float64{"NaN": math.NaN(), "+Inf": math.Inf(1), "-Inf": math.Inf(-1)} {
		t.Run(name, func(t *testing.T) {
			transfer, err := structpb.NewStruct(map[string]any{"from_id": "123", "to_id": "456", "amount": v})
			require.NoError(t, err)
			err = conn.Invoke(ctx, TransferMethod, transfer, new(structpb.Struct))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))

			create, err := structpb.NewStruct(map[string]any{"id": "nan-" + name, "balance": v})
			require.NoError(t, err)
			err = conn.Invoke(ctx, CreateAccountMethod, create, new(structpb.Struct))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}

	// 服務仍然可用，餘額未變
	from, err := client.GetAccount(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "1000", from.Balance.String())
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(log.NewNopLogger())
	info := &grpc.UnaryServerInfo{FullMethod: TransferMethod}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err = interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
