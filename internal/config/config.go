package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DriftAPIBaseURL string
	DriftAPITimeout time.Duration

	GeolocationAPIURL  string
	GeolocationTimeout time.Duration

	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	LogFile        string
	AllowedOrigins []string

	FirestoreProjectID string
	SearchLogTTLHours  int
}

// Load は.envファイル（なければ環境変数のみ）から設定を読み込む
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DriftAPIBaseURL: getEnv("DRIFT_API_BASE_URL", "http://localhost:8000"),
		DriftAPITimeout: getDurationEnv("DRIFT_API_TIMEOUT", 30*time.Second),

		GeolocationAPIURL:  getEnv("GEOLOCATION_API_URL", "http://ip-api.com/json"),
		GeolocationTimeout: getDurationEnv("GEOLOCATION_TIMEOUT", 10*time.Second),

		SessionTTL:             getDurationEnv("SESSION_TTL", 2*time.Hour),
		SessionCleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", 10*time.Minute),

		LogFile:        getEnv("LOG_FILE", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,https://yurift.vercel.app")),

		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		SearchLogTTLHours:  getIntEnv("SEARCH_LOG_TTL_HOURS", 24*7),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性をチェックする
func (c *Config) Validate() error {
	if c.DriftAPIBaseURL == "" {
		return errors.New("DRIFT_API_BASE_URL環境変数が設定されていません")
	}
	if !strings.HasPrefix(c.DriftAPIBaseURL, "http://") && !strings.HasPrefix(c.DriftAPIBaseURL, "https://") {
		return fmt.Errorf("DRIFT_API_BASE_URLはhttp://またはhttps://で始まる必要があります: %s", c.DriftAPIBaseURL)
	}
	if c.DriftAPITimeout <= 0 || c.GeolocationTimeout <= 0 {
		return errors.New("タイムアウトは正の値を指定してください")
	}
	if c.SessionTTL <= 0 || c.SessionCleanupInterval <= 0 {
		return errors.New("SESSION_TTLとSESSION_CLEANUP_INTERVALは正の値を指定してください")
	}
	if c.SearchLogTTLHours <= 0 {
		return errors.New("SEARCH_LOG_TTL_HOURSは正の整数を指定してください")
	}
	return nil
}

// IsProduction 本番環境かどうか
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SearchLogEnabled Firestoreへの検索ログ保存が有効か
func (c *Config) SearchLogEnabled() bool {
	return c.FirestoreProjectID != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// getDurationEnv は "30s" 形式、または秒数の整数を受け付ける
func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second
	}
	return -1
}

func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
