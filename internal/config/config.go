package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストレージ種別
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	Store       string
	DatabaseURL string
	AutoMigrate bool

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration

	// Static shell
	ViewsDir  string
	PublicDir string

	// Rate Limit（req/min/client）
	RateLimitGeneral  int
	RateLimitRegister int
	// リバースプロキシ配下でのみtrueにする
	TrustProxyHeaders bool

	// Events
	KafkaBrokers       []string
	KafkaUserTopic     string
	KafkaExerciseTopic string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// EventsEnabled はKafkaへのイベント発行が有効かを返す。
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// DATABASE_URLはSTORE=postgresの場合のみ必須。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Store = strings.ToLower(getEnvString("STORE", StorePostgres))
	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("invalid STORE %q: must be %q or %q", cfg.Store, StorePostgres, StoreMemory)
	}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.Store == StorePostgres {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", false)
	cfg.ServerPort = getEnvString("PORT", "3001")
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	cfg.ViewsDir = getEnvString("VIEWS_DIR", "views")
	cfg.PublicDir = getEnvString("PUBLIC_DIR", "public")
	cfg.RateLimitGeneral = getEnvPositiveInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitRegister = getEnvPositiveInt("RATE_LIMIT_REGISTER", 20)
	cfg.TrustProxyHeaders = getEnvBool("TRUST_PROXY_HEADERS", false)
	cfg.KafkaBrokers = getEnvList("KAFKA_BROKERS")
	cfg.KafkaUserTopic = getEnvString("KAFKA_USER_TOPIC", "users")
	cfg.KafkaExerciseTopic = getEnvString("KAFKA_EXERCISE_TOPIC", "exercises")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvPositiveInt は正の整数のみを受け付け、それ以外はデフォルト値を返す。
func getEnvPositiveInt(key string, defaultVal int) int {
	if i := getEnvInt(key, defaultVal); i > 0 {
		return i
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの値を空要素を除いて返す。
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
