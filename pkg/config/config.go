// Package config はWebhookサービスの設定を読み込む。
//
// 優先順位はデフォルト値 < YAMLファイル（CONFIG_FILE） < 環境変数。
// 環境変数は .env ファイルからも読み込む（既存の環境変数は上書きしない）。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config はWebhookサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `yaml:"port" validate:"required,numeric"`
	// GinMode はGinの動作モード。
	GinMode string `yaml:"gin_mode" validate:"oneof=debug release test"`
	// DBPath はSQLiteデータベースのDSN。
	DBPath string `yaml:"db_path" validate:"required"`
	// WebhookSecret はゲートウェイが X-Notification-Secret ヘッダーで送る共有シークレット。
	// 空の場合、Webhookの受信は無効になる。
	WebhookSecret string `yaml:"webhook_secret"`
	// JWTSecret は管理APIのJWT検証キー。空の場合、管理APIは登録しない。
	JWTSecret string `yaml:"jwt_secret"`
	// EventStoreURL はイベント送信先。空の場合は送信しない。
	EventStoreURL string `yaml:"event_store_url" validate:"omitempty,url"`
	// EventStoreTimeout はイベント送信1回あたりのタイムアウト。
	EventStoreTimeout time.Duration `yaml:"event_store_timeout" validate:"gt=0"`
	// AllowedOrigins は一覧APIへのクロスオリジンアクセスを許可するオリジン。
	AllowedOrigins []string `yaml:"allowed_origins"`
	// LogFile はログの出力先ファイル。空の場合は標準エラー出力のみ。
	LogFile string `yaml:"log_file"`
	// Fetch は通知一覧ビューがリモート取得する際の設定（cmd/webhookview の既定値）。
	Fetch FetchConfig `yaml:"fetch"`
	// Gateway は決済ゲートウェイAPIの設定。
	Gateway GatewayConfig `yaml:"gateway"`
}

// GatewayConfig は決済ゲートウェイAPIへの接続設定。
type GatewayConfig struct {
	// Host はゲートウェイAPIのベースURL。
	Host       string `yaml:"host" validate:"required_if=VerifyOrders true,omitempty,url"`
	APIVersion string `yaml:"api_version" validate:"required"`
	MerchantID string `yaml:"merchant_id" validate:"required_if=VerifyOrders true"`
	// Password はAPIパスワード。
	Password string `yaml:"api_password" validate:"required_if=VerifyOrders true"`
	// VerifyOrders が真の場合、受信した通知の注文をゲートウェイに照会してから保存する。
	VerifyOrders bool `yaml:"verify_orders"`
	// Retries は注文照会の最大試行回数。
	Retries int `yaml:"retries" validate:"min=1,max=10"`
	// Timeout は注文照会1回あたりのタイムアウト。
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// FetchConfig は通知一覧の取得設定。
type FetchConfig struct {
	// Retries は最大試行回数。
	Retries int `yaml:"retries" validate:"min=1,max=10"`
	// Timeout はリクエスト1回あたりのタイムアウト。
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	// Backoff は再試行ごとに加算される待機時間。
	Backoff time.Duration `yaml:"backoff" validate:"gte=0"`
}

// Default はデフォルト設定を返す。
func Default() *Config {
	return &Config{
		Port:    "5000",
		GinMode: "debug",
		DBPath:  "/data/webhook.db?_journal_mode=WAL&_busy_timeout=5000",

		EventStoreTimeout: 5 * time.Second,
		Fetch: FetchConfig{
			Retries: 3,
			Timeout: 10 * time.Second,
			Backoff: 500 * time.Millisecond,
		},
		Gateway: GatewayConfig{
			APIVersion: "100",
			Retries:    2,
			Timeout:    10 * time.Second,
		},
	}
}

// Load は設定を読み込んで検証する。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[Config] .env の読み込みに失敗: %v", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile はYAMLファイルの値でcfgを上書きする。
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルのパースに失敗: %w", err)
	}
	return nil
}

// loadEnv は環境変数の値でcfgを上書きする。
func (c *Config) loadEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.WebhookSecret, "WEBHOOK_SECRET")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.EventStoreURL, "EVENTSTORE_URL")
	setString(&c.LogFile, "LOG_FILE")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}

	setString(&c.Gateway.Host, "GATEWAY_HOST")
	setString(&c.Gateway.APIVersion, "GATEWAY_API_VERSION")
	setString(&c.Gateway.MerchantID, "GATEWAY_MERCHANT_ID")
	setString(&c.Gateway.Password, "GATEWAY_API_PASSWORD")

	for _, f := range []func() error{
		func() error { return setInt(&c.Fetch.Retries, "FETCH_RETRIES") },
		func() error { return setDuration(&c.Fetch.Timeout, "FETCH_TIMEOUT") },
		func() error { return setDuration(&c.Fetch.Backoff, "FETCH_BACKOFF") },
		func() error { return setDuration(&c.EventStoreTimeout, "EVENTSTORE_TIMEOUT") },
		func() error { return setBool(&c.Gateway.VerifyOrders, "GATEWAY_VERIFY_ORDERS") },
		func() error { return setInt(&c.Gateway.Retries, "GATEWAY_RETRIES") },
		func() error { return setDuration(&c.Gateway.Timeout, "GATEWAY_TIMEOUT") },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("設定値が不正です: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s が不正です: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s が不正です: %w", key, err)
	}
	*dst = d
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s が不正です: %w", key, err)
	}
	*dst = b
	return nil
}
