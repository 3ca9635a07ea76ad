// Package session はアクセストークンの保持と認証状態の導出を提供する。
//
// Storeはトークンの唯一の情報源であり、認証状態は保存済みトークンから
// 読み取りのたびに導出する（独立したフラグは持たない）。
package session

import (
	"log/slog"
	"time"
)

const (
	// TokenKey はアクセストークンを保存するキー（Cookie名を兼ねる）。
	TokenKey = "access_token"
	// TokenMaxAge はトークンの最大有効期間。保存時点から24時間。
	TokenMaxAge = 24 * time.Hour

	// SignInPath はログアウト後の遷移先。
	SignInPath = "/signin"
	// DashboardPath は認証成功後の遷移先。
	DashboardPath = "/dashboard"
)

// CredentialStore はクライアント側の資格情報ストア。
// 有効期限切れのエントリは存在しないものとして読み取られる。
type CredentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string, maxAge time.Duration)
	Delete(key string)
}

// Navigator は画面遷移の副作用を表す。
type Navigator interface {
	Navigate(path string) error
}

// Store は現在のアクセストークンを管理する。
type Store struct {
	creds     CredentialStore
	navigator Navigator
	logger    *slog.Logger
}

// NewStore はStoreを生成する。loggerがnilの場合はslog.Default()を使う。
func NewStore(creds CredentialStore, navigator Navigator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		creds:     creds,
		navigator: navigator,
		logger:    logger,
	}
}

// SetToken はトークンを24時間の有効期限付きで保存する。
// 空文字列は有効な資格情報ではないため、ClearTokenと同じ扱いになる。
func (s *Store) SetToken(token string) {
	if token == "" {
		s.ClearToken()
		return
	}
	s.creds.Set(TokenKey, token, TokenMaxAge)
}

// ClearToken は保存済みトークンを無条件に削除する。冪等。
func (s *Store) ClearToken() {
	s.creds.Delete(TokenKey)
}

// Logout はトークンを削除し、ログイン画面へ遷移する。
// 遷移に失敗してもトークンの削除は取り消さない。
func (s *Store) Logout() {
	s.ClearToken()
	if s.navigator == nil {
		return
	}
	if err := s.navigator.Navigate(SignInPath); err != nil {
		s.logger.Error("failed to navigate after logout",
			slog.String("path", SignInPath),
			slog.String("error", err.Error()),
		)
	}
}

// AccessToken は有効なトークンを返す。存在しない・空・期限切れの場合はfalse。
func (s *Store) AccessToken() (string, bool) {
	token, ok := s.creds.Get(TokenKey)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// IsAuthenticated はトークンが存在するかを返す。
func (s *Store) IsAuthenticated() bool {
	_, ok := s.AccessToken()
	return ok
}
