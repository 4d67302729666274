package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// イベント送信先
const (
	BrokerNone     = "none"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNATS     = "nats"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string // JWT検証シークレット

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	TimeZone string         // 予約日時を組み立てるタイムゾーン
	Location *time.Location // TimeZoneを読み込んだもの

	EventBroker    string // none/rabbitmq/nats
	RabbitMQURL    string
	NATSURL        string
	EventsExchange string // RabbitMQのexchange / NATSのsubject prefix

	SweepBatchSize int // 1回のスイープで処理する最大件数
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("GO_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIME_ZONE", "Asia/Tokyo")
	v.SetDefault("EVENT_BROKER", BrokerNone)
	v.SetDefault("EVENTS_EXCHANGE", "orderdesk.events")
	v.SetDefault("SWEEP_BATCH_SIZE", 200)
}

// Loadは .env → 環境変数 → （あれば）設定ファイル の順で読む。
// configFileが空なら設定ファイルは使わない。
func Load(configFile string) (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	return FromViper(v)
}

// テストからも使う
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port: v.GetString("PORT"),

		DatabaseURL:      v.GetString("DATABASE_URL"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetInt("POSTGRES_PORT"),
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		GoEnv:    v.GetString("GO_ENV"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		TimeZone: v.GetString("TIME_ZONE"),

		EventBroker:    strings.ToLower(v.GetString("EVENT_BROKER")),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		NATSURL:        v.GetString("NATS_URL"),
		EventsExchange: v.GetString("EVENTS_EXCHANGE"),

		SweepBatchSize: v.GetInt("SWEEP_BATCH_SIZE"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, errors.New("PORT is required")
	}
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, errors.New("POSTGRES_USER is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, errors.New("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, errors.New("POSTGRES_HOST is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.SweepBatchSize <= 0 {
		return Config{}, errors.New("SWEEP_BATCH_SIZE must be positive")
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("TIME_ZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	switch cfg.EventBroker {
	case BrokerNone:
	case BrokerRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return Config{}, errors.New("RABBITMQ_URL is required when EVENT_BROKER=rabbitmq")
		}
	case BrokerNATS:
		if cfg.NATSURL == "" {
			return Config{}, errors.New("NATS_URL is required when EVENT_BROKER=nats")
		}
	default:
		return Config{}, fmt.Errorf("EVENT_BROKER must be one of none, rabbitmq, nats: %q", cfg.EventBroker)
	}

	return cfg, nil
}

// DSN はgorm postgresドライバに渡す接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PostgresSSLMode),
	}
	return u.String()
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}
