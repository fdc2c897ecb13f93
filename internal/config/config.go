package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-transfer/pkg/mysql"
)

// 初始帳戶來源
const (
	SeedSourceNone   = "none"
	SeedSourceConfig = "config"
	SeedSourceMySQL  = "mysql"
)

// 環境變數覆寫
const (
	EnvGRPCAddr   = "LEDGER_GRPC_ADDR"
	EnvHTTPAddr   = "LEDGER_HTTP_ADDR"
	EnvLogLevel   = "LEDGER_LOG_LEVEL"
	EnvSeedSource = "LEDGER_SEED_SOURCE"
	EnvWebhookURL = "LEDGER_WEBHOOK_URL"
)

type Config struct {
	GRPC     ServerConfig   `yaml:"grpc"`
	HTTP     ServerConfig   `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Seed     SeedConfig     `yaml:"seed"`
	MySQL    mysql.Config   `yaml:"mysql"`
	Notifier NotifierConfig `yaml:"notifier"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SeedConfig struct {
	Source   string        `yaml:"source"`
	Accounts []SeedAccount `yaml:"accounts"`
}

// SeedAccount 設定檔中的初始帳戶，餘額用字串保留精度
type SeedAccount struct {
	ID      string `yaml:"id"`
	Balance string `yaml:"balance"`
}

type NotifierConfig struct {
	// Log: 是否把通知寫到 log
	Log bool `yaml:"log"`
	// File: JSON lines 檔案路徑，空字串表示停用
	File string `yaml:"file"`
	// FileSync: 每筆通知寫入後 fsync
	FileSync bool `yaml:"file_sync"`
	// WebhookURL: 空字串表示停用
	WebhookURL     string        `yaml:"webhook_url"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`

	// 連續失敗 WebhookBreakerFailures 次後熔斷 WebhookBreakerTimeout
	WebhookBreakerFailures uint32        `yaml:"webhook_breaker_failures"`
	WebhookBreakerTimeout  time.Duration `yaml:"webhook_breaker_timeout"`
}

// Load 讀取 .env (可不存在) 與 YAML 設定檔，套用環境變數與預設值後驗證
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse 解析 YAML 並補上預設值 (不讀環境變數、不驗證)
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Seed.Source == "" {
		c.Seed.Source = SeedSourceConfig
	}
	if c.Notifier.WebhookTimeout == 0 {
		c.Notifier.WebhookTimeout = 5 * time.Second
	}
	if c.Notifier.WebhookBreakerFailures == 0 {
		c.Notifier.WebhookBreakerFailures = 5
	}
	if c.Notifier.WebhookBreakerTimeout == 0 {
		c.Notifier.WebhookBreakerTimeout = 30 * time.Second
	}
	// 補全 MySQL 預設配置 (如果 yaml 沒寫)
	c.MySQL.SetDefaults()
}

func (c *Config) applyEnv() {
	override := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	override(EnvGRPCAddr, &c.GRPC.Addr)
	override(EnvHTTPAddr, &c.HTTP.Addr)
	override(EnvLogLevel, &c.Log.Level)
	override(EnvSeedSource, &c.Seed.Source)
	override(EnvWebhookURL, &c.Notifier.WebhookURL)
}

// Validate 檢查設定值
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	switch c.Seed.Source {
	case SeedSourceNone, SeedSourceMySQL:
	case SeedSourceConfig:
		if _, err := c.SeedBalances(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid seed source %q", c.Seed.Source)
	}
	return nil
}

// SeedBalances 解析設定檔中的初始餘額，順序與 Seed.Accounts 相同
func (c *Config) SeedBalances() ([]decimal.Decimal, error) {
	balances := make([]decimal.Decimal, 0, len(c.Seed.Accounts))
	for _, acc := range c.Seed.Accounts {
		balance, err := decimal.NewFromString(acc.Balance)
		if err != nil {
			return nil, fmt.Errorf("seed account %q: invalid balance %q: %w", acc.ID, acc.Balance, err)
		}
		balances = append(balances, balance)
	}
	return balances, nil
}
