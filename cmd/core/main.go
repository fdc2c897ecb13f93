package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/oklog/oklog/pkg/group"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/in/rest"
	memory_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/notify"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-transfer/internal/config"
	"github.com/JoeShih716/go-mem-transfer/pkg/jsonl"
	"github.com/JoeShih716/go-mem-transfer/pkg/mysql"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	logger := newLogger(cfg.Log.Level)
	_ = level.Info(logger).Log("msg", "transfer service started")
	defer func() {
		_ = level.Info(logger).Log("msg", "transfer service ended")
	}()

	// 3. 載入初始帳戶
	store, err := memory_adapter.NewAccountStore()
	if err != nil {
		_ = level.Error(logger).Log("during", "NewAccountStore", "err", err)
		os.Exit(1)
	}
	if err := seed(cfg, store, logger); err != nil {
		_ = level.Error(logger).Log("during", "seed", "err", err)
		os.Exit(1)
	}

	// 4. 通知管道
	notifier, closeNotifier, err := newNotifier(cfg.Notifier, logger)
	if err != nil {
		_ = level.Error(logger).Log("during", "newNotifier", "err", err)
		os.Exit(1)
	}
	defer closeNotifier()

	// 5. 初始化 UseCase 與 Driving Adapters
	var (
		service     = usecase.New(store, notifier, logger)
		grpcServer  = grpc_adapter.NewGrpcServer(service)
		httpHandler = rest.NewHTTPHandler(rest.NewSet(service), log.With(logger, "transport", "HTTP"))
	)

	// 6. 啟動 gRPC / HTTP，收到訊號時一起關閉
	var g group.Group
	{
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			_ = level.Error(logger).Log("transport", "gRPC", "during", "Listen", "err", err)
			os.Exit(1)
		}
		s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc_adapter.RecoveryInterceptor(logger)))
		grpc_adapter.RegisterTransferServiceServer(s, grpcServer)
		reflection.Register(s) // 方便 grpcurl 之類的工具測試
		g.Add(func() error {
			_ = level.Info(logger).Log("transport", "gRPC", "addr", cfg.GRPC.Addr)
			return s.Serve(lis)
		}, func(error) {
			s.GracefulStop()
		})
	}
	if cfg.HTTP.Addr != "" {
		httpListener, err := net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			_ = level.Error(logger).Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			_ = level.Info(logger).Log("transport", "HTTP", "addr", cfg.HTTP.Addr)
			return http.Serve(httpListener, httpHandler)
		}, func(error) {
			_ = httpListener.Close()
		})
	}
	{
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	_ = level.Info(logger).Log("exit", g.Run())
}

func newLogger(lvl string) log.Logger {
	var logger log.Logger
	logger = log.NewLogfmtLogger(os.Stderr)
	logger = level.NewFilter(logger, levelOption(lvl))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	return logger
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// seed 依設定的來源把初始帳戶寫入 store
func seed(cfg *config.Config, store usecase.AccountStore, logger log.Logger) error {
	var loader usecase.AccountLoader
	switch cfg.Seed.Source {
	case config.SeedSourceNone:
		return nil
	case config.SeedSourceConfig:
		loader = configLoader(cfg)
	case config.SeedSourceMySQL:
		dbClient, err := mysql.NewClient(cfg.MySQL, logger)
		if err != nil {
			return fmt.Errorf("connect mysql: %w", err)
		}
		// 只在啟動時讀一次，讀完就關
		defer dbClient.Close()
		loader = mysql_adapter.NewAccountLoader(dbClient)
	}

	n, err := usecase.SeedAccounts(context.Background(), loader, store)
	if err != nil {
		return err
	}
	_ = level.Info(logger).Log("msg", "accounts loaded", "source", cfg.Seed.Source, "count", n)
	return nil
}

func configLoader(cfg *config.Config) usecase.AccountLoaderFunc {
	return func(context.Context) ([]*domain.Account, error) {
		balances, err := cfg.SeedBalances()
		if err != nil {
			return nil, err
		}
		accounts := make([]*domain.Account, 0, len(balances))
		for i, acc := range cfg.Seed.Accounts {
			if acc.ID == "" {
				return nil, domain.ErrEmptyAccountID
			}
			if balances[i].IsNegative() {
				return nil, &domain.InvalidAmountError{Amount: balances[i], Err: domain.ErrNegativeBalance}
			}
			accounts = append(accounts, domain.NewAccount(acc.ID, balances[i]))
		}
		return accounts, nil
	}
}

// newNotifier 依設定組合通知管道，回傳的 close 負責釋放檔案
func newNotifier(cfg config.NotifierConfig, logger log.Logger) (usecase.Notifier, func(), error) {
	var (
		notifiers notify.Multi
		closers   []func() error
	)
	if cfg.Log {
		notifiers = append(notifiers, notify.NewLogNotifier(logger))
	}
	if cfg.File != "" {
		var opts []jsonl.Option
		if cfg.FileSync {
			opts = append(opts, jsonl.WithSync())
		}
		file, err := jsonl.Open(cfg.File, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open notification file: %w", err)
		}
		closers = append(closers, file.Close)
		notifiers = append(notifiers, notify.NewFileNotifier(file))
	}
	if cfg.WebhookURL != "" {
		webhook := notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout)
		notifiers = append(notifiers, notify.NewBreakerNotifier("webhook", webhook, notify.BreakerConfig{
			ConsecutiveFailures: cfg.WebhookBreakerFailures,
			OpenTimeout:         cfg.WebhookBreakerTimeout,
		}, logger))
	}
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				_ = level.Warn(logger).Log("during", "close notifier", "err", err)
			}
		}
	}
	return notifiers, closeAll, nil
}
