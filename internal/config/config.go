package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Portal Link API
	APIBaseURL string        `validate:"required,url"`
	APITimeout time.Duration `validate:"gt=0"`

	// Server
	ServerPort string `validate:"required,numeric"`
	PublicURL  string `validate:"required,url"`

	// Cookie
	CookieSecure bool
	CookieDomain string

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral int `validate:"gt=0"`
	RateLimitAuth    int `validate:"gt=0"`

	// CORS
	CORSAllowedOrigin string `validate:"omitempty,url"`

	// CLI
	CredentialsFile string `validate:"required"`

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`

	// Site
	AppTitle       string `validate:"required"`
	AppDescription string
}

// Load は.envファイル（存在する場合）と環境変数からConfigを読み込む。
// 値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	// .envが無いのは本番では通常の状態
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		APIBaseURL:        getEnvString("PORTAL_API_BASE", "http://localhost:8080/api/v1"),
		APITimeout:        getEnvDuration("API_TIMEOUT", 10*time.Second),
		ServerPort:        getEnvString("SERVER_PORT", "3000"),
		PublicURL:         getEnvString("PUBLIC_URL", "http://localhost:3000"),
		CookieDomain:      getEnvString("COOKIE_DOMAIN", ""),
		RateLimitGeneral:  getEnvInt("RATE_LIMIT_GENERAL", 120),
		RateLimitAuth:     getEnvInt("RATE_LIMIT_AUTH", 10),
		CORSAllowedOrigin: getEnvString("CORS_ALLOWED_ORIGIN", ""),
		CredentialsFile:   getEnvString("CREDENTIALS_FILE", defaultCredentialsFile()),
		LogLevel:          strings.ToLower(getEnvString("LOG_LEVEL", "info")),
		AppTitle:          getEnvString("APP_TITLE", "Portal Link"),
		AppDescription:    getEnvString("APP_DESCRIPTION", "Create your own link portal page"),
	}
	cfg.CookieSecure = strings.HasPrefix(cfg.PublicURL, "https://")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultCredentialsFile はCLIの資格情報ファイルの既定パスを返す。
func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".portallink-credentials.json"
	}
	return filepath.Join(dir, "portallink", "credentials.json")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
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
