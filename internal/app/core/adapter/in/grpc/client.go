package grpc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// Client TransferService 的 gRPC 客戶端
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CreateAccount(ctx context.Context, id string, balance decimal.Decimal) error {
	in, err := structpb.NewStruct(map[string]any{
		"id":      id,
		"balance": domain.FormatAmount(balance),
	})
	if err != nil {
		return err
	}
	return c.cc.Invoke(ctx, CreateAccountMethod, in, new(structpb.Struct))
}

func (c *Client) GetAccount(ctx context.Context, id string) (domain.AccountSnapshot, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetAccountMethod, wrapperspb.String(id), out); err != nil {
		return domain.AccountSnapshot{}, err
	}
	return parseAccount(out.GetFields())
}

func (c *Client) ListAccounts(ctx context.Context) ([]domain.AccountSnapshot, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListAccountsMethod, &structpb.Struct{}, out); err != nil {
		return nil, err
	}
	values := out.GetFields()["accounts"].GetListValue().GetValues()
	accounts := make([]domain.AccountSnapshot, 0, len(values))
	for _, v := range values {
		account, err := parseAccount(v.GetStructValue().GetFields())
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Transfer 回傳的 warning 不為空時代表轉帳成功但通知失敗
func (c *Client) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (warning string, err error) {
	in, err := structpb.NewStruct(map[string]any{
		"from_id": fromID,
		"to_id":   toID,
		"amount":  domain.FormatAmount(amount),
	})
	if err != nil {
		return "", err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TransferMethod, in, out); err != nil {
		return "", err
	}
	return out.GetFields()["warning"].GetStringValue(), nil
}

func parseAccount(fields map[string]*structpb.Value) (domain.AccountSnapshot, error) {
	raw := fields["balance"].GetStringValue()
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("invalid balance %q: %w", raw, err)
	}
	return domain.AccountSnapshot{
		ID:      fields["id"].GetStringValue(),
		Balance: balance,
	}, nil
}
