package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultBackendAPIBaseURL はBACKEND_API_BASE_URL未設定時の転送先。
	DefaultBackendAPIBaseURL = "http://localhost:8080"
	// DefaultTranslateAPIURL は翻訳エンドポイント。
	DefaultTranslateAPIURL = "https://translate.googleapis.com/translate_a/single"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Backend proxy
	BackendAPIBaseURL string
	ProxyTimeout      time.Duration

	// Translation
	TranslateAPIURL  string
	TranslateTimeout time.Duration

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral   int
	RateLimitTranslate int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Dashboard client
	DashboardAPIBaseURL  string
	StoreURL             string
	FallbackExchangeRate float64
	Timezone             string

	// Logging
	LogFormat string
	LogLevel  string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数は上書きしない）。
// URLや数値の形式が不正な場合はエラーを返す。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.BackendAPIBaseURL = normalizeBaseURL(getEnvString("BACKEND_API_BASE_URL", DefaultBackendAPIBaseURL))
	cfg.ProxyTimeout = getEnvDuration("PROXY_TIMEOUT", 10*time.Second)
	cfg.TranslateAPIURL = getEnvString("TRANSLATE_API_URL", DefaultTranslateAPIURL)
	cfg.TranslateTimeout = getEnvDuration("TRANSLATE_TIMEOUT", 10*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitTranslate = getEnvInt("RATE_LIMIT_TRANSLATE", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "3000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.DashboardAPIBaseURL = normalizeBaseURL(getEnvString("DASHBOARD_API_BASE_URL", "http://localhost:3000"))
	cfg.StoreURL = getEnvString("STORE_URL", "sqlite://./data/travelboard.db")
	cfg.FallbackExchangeRate = getEnvFloat("FALLBACK_EXCHANGE_RATE", 42)
	cfg.Timezone = getEnvString("TRAVEL_TIMEZONE", "Local")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "json")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	var invalid []string
	for name, raw := range map[string]string{
		"BACKEND_API_BASE_URL":   cfg.BackendAPIBaseURL,
		"TRANSLATE_API_URL":      cfg.TranslateAPIURL,
		"DASHBOARD_API_BASE_URL": cfg.DashboardAPIBaseURL,
	} {
		if !isHTTPURL(raw) {
			invalid = append(invalid, name)
		}
	}
	if cfg.RateLimitGeneral <= 0 {
		invalid = append(invalid, "RATE_LIMIT_GENERAL")
	}
	if cfg.RateLimitTranslate <= 0 {
		invalid = append(invalid, "RATE_LIMIT_TRANSLATE")
	}
	if cfg.FallbackExchangeRate <= 0 {
		invalid = append(invalid, "FALLBACK_EXCHANGE_RATE")
	}
	if _, err := cfg.Location(); err != nil {
		invalid = append(invalid, "TRAVEL_TIMEZONE")
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	return cfg, nil
}

// Location は日付計算に使うタイムゾーンを返す。
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// normalizeBaseURL は前後の空白と末尾のスラッシュを1つ取り除く。
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	return strings.TrimSuffix(raw, "/")
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
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

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
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
