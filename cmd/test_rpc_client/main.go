package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpc_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	grpcpool "github.com/JoeShih716/go-mem-transfer/pkg/grpc"
)

// 壓測參數
var (
	target       string
	accountCount int
	balance      string
	totalCount   int
	concurrency  int
	maxAmount    int64
	timeout      time.Duration
)

// result 壓測統計
type result struct {
	ok       atomic.Int64
	rejected atomic.Int64
	warned   atomic.Int64
	failed   atomic.Int64
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "test_rpc_client",
		Short: "Fire concurrent random transfers at the transfer service",
		Long: `Creates a set of fresh accounts, fires random transfers between them
through one pooled gRPC connection, then checks that the total balance
of those accounts did not change.

Example: test_rpc_client -t localhost:50051 -a 20 -n 100000 -c 200`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&target, "target", "t", "localhost:50051", "gRPC server address")
	rootCmd.Flags().IntVarP(&accountCount, "accounts", "a", 10, "Number of accounts to create")
	rootCmd.Flags().StringVarP(&balance, "balance", "b", "1000", "Initial balance of each account")
	rootCmd.Flags().IntVarP(&totalCount, "count", "n", 10000, "Number of transfers")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 100, "Number of in-flight transfers")
	rootCmd.Flags().Int64VarP(&maxAmount, "max-amount", "m", 100, "Upper bound of a random transfer amount")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 120*time.Second, "Overall deadline")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if accountCount < 2 {
		return errors.New("need at least 2 accounts")
	}
	if concurrency < 1 || maxAmount < 1 {
		return errors.New("concurrency and max-amount must be positive")
	}
	initial, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("invalid balance %q: %w", balance, err)
	}

	var (
		rpcCount atomic.Int64
		rpcNanos atomic.Int64
	)
	pool := grpcpool.NewPool(grpcpool.WithInterceptor(latencyInterceptor(&rpcCount, &rpcNanos)))
	defer pool.Close()
	conn, err := pool.GetConnection(target)
	if err != nil {
		return err
	}
	client := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	// 1. 建立本次壓測專用的帳戶
	ids := make([]string, accountCount)
	for i := range ids {
		ids[i] = uuid.NewString()
		if err := client.CreateAccount(ctx, ids[i], initial); err != nil {
			return fmt.Errorf("create account %s: %w", ids[i], err)
		}
	}
	expected := initial.Mul(decimal.NewFromInt(int64(accountCount)))

	// 2. 併發隨機轉帳
	var (
		wg  sync.WaitGroup
		res result
		sem = make(chan struct{}, concurrency)
	)
	startTime := time.Now()
	for i := 0; i < totalCount; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			from, to := pickPair(len(ids))
			amount := decimal.NewFromInt(rand.Int63n(maxAmount) + 1)
			warning, err := client.Transfer(ctx, ids[from], ids[to], amount)
			switch {
			case err == nil && warning != "":
				res.warned.Add(1)
			case err == nil:
				res.ok.Add(1)
			case status.Code(err) == codes.FailedPrecondition:
				// 餘額不足是預期內的結果
				res.rejected.Add(1)
			default:
				if res.failed.Add(1) == 1 {
					fmt.Fprintf(os.Stderr, "transfer %d failed: %v\n", idx, err)
				}
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(startTime)

	fmt.Printf("Completed %d requests in %v\n", totalCount, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(totalCount)/elapsed.Seconds())
	if n := rpcCount.Load(); n > 0 {
		fmt.Printf("Avg RPC latency: %v\n", time.Duration(rpcNanos.Load()/n))
	}
	fmt.Printf("ok=%d rejected=%d warned=%d failed=%d\n",
		res.ok.Load(), res.rejected.Load(), res.warned.Load(), res.failed.Load())

	// 3. 總額守恆檢查
	total := decimal.Zero
	for _, id := range ids {
		account, err := client.GetAccount(ctx, id)
		if err != nil {
			return fmt.Errorf("get account %s: %w", id, err)
		}
		if account.Balance.IsNegative() {
			return fmt.Errorf("account %s has negative balance %s", id, account.Balance)
		}
		total = total.Add(account.Balance)
	}
	if !total.Equal(expected) {
		return fmt.Errorf("balance not conserved: expected %s, got %s",
			domain.FormatAmount(expected), domain.FormatAmount(total))
	}
	fmt.Printf("Total balance conserved: %s\n", domain.FormatAmount(total))
	return nil
}

// latencyInterceptor 累計每次 RPC 的耗時
func latencyInterceptor(count, nanos *atomic.Int64) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		count.Add(1)
		nanos.Add(int64(time.Since(start)))
		return err
	}
}

// pickPair 隨機挑兩個不同的索引
func pickPair(n int) (int, int) {
	from := rand.Intn(n)
	to := rand.Intn(n - 1)
	if to >= from {
		to++
	}
	return from, to
}
