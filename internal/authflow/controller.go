// Package authflow はサインアップ・サインインの1回の試行を制御する。
//
// Controllerは呼び出し元（フォーム等）に対してloading/errorの状態を公開する。
// 失敗はerrorとして呼び出し元へ送出せず、戻り値の真偽値とError()でのみ観測できる。
// 同時呼び出しの排他は行わない（最後に完了した試行の状態が残る）。
package authflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hitoshi/portallink/internal/metrics"
	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/session"
)

// 操作ごとの表示用フォールバック文言
const (
	SignUpFailedMessage = "註冊失敗"
	SignInFailedMessage = "登入失敗"
)

// AuthAPI はControllerが必要とするAPIクライアントの部分集合。
type AuthAPI interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResponse, error)
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error)
}

// SessionStore はControllerが必要とするセッション操作。session.Storeが満たす。
type SessionStore interface {
	SetToken(token string)
	Logout()
}

// Controller は認証フローの状態を保持する。
type Controller struct {
	api       AuthAPI
	session   SessionStore
	navigator session.Navigator
	metrics   metrics.MetricsCollector
	logger    *slog.Logger

	mu      sync.Mutex
	loading bool
	errMsg  *string
}

// NewController はControllerを生成する。
func NewController(
	api AuthAPI,
	store SessionStore,
	navigator session.Navigator,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Controller {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:       api,
		session:   store,
		navigator: navigator,
		metrics:   collector,
		logger:    logger,
	}
}

// Loading は呼び出し中であればtrueを返す。
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Error は直前の失敗メッセージを返す。
func (c *Controller) Error() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errMsg == nil {
		return "", false
	}
	return *c.errMsg, true
}

// SignUp はユーザー登録を試行し、成功したかを返す。
func (c *Controller) SignUp(ctx context.Context, req *model.SignUpRequest) bool {
	return c.attempt(ctx, "signup", SignUpFailedMessage, func() (string, error) {
		resp, err := c.api.SignUp(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.AccessToken, nil
	})
}

// SignIn はログインを試行し、成功したかを返す。
func (c *Controller) SignIn(ctx context.Context, req *model.SignInRequest) bool {
	return c.attempt(ctx, "signin", SignInFailedMessage, func() (string, error) {
		resp, err := c.api.SignIn(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.AccessToken, nil
	})
}

// Logout はセッションのログアウトに委譲する。
func (c *Controller) Logout() {
	c.session.Logout()
}

// attempt はSignUp/SignInに共通する手順を実行する。
// loadingはどの経路で抜けても必ずfalseに戻す。
func (c *Controller) attempt(ctx context.Context, flow, fallback string, call func() (string, error)) (ok bool) {
	c.begin()
	defer c.end()
	defer func() {
		c.metrics.RecordAuthAttempt(flow, ok)
	}()

	token, err := call()
	if err != nil {
		c.fail(ctx, flow, fallback, err)
		return false
	}

	c.session.SetToken(token)

	if c.navigator != nil {
		if err := c.navigator.Navigate(session.DashboardPath); err != nil {
			c.fail(ctx, flow, fallback, err)
			return false
		}
	}

	return true
}

func (c *Controller) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	c.errMsg = nil
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}

// fail はエラーメッセージを設定する。メッセージが空の場合はフォールバック文言を使う。
func (c *Controller) fail(ctx context.Context, flow, fallback string, err error) {
	msg := fallback
	var apiErr *model.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
	case err.Error() != "":
		msg = err.Error()
	}

	c.logger.InfoContext(ctx, "auth attempt failed",
		slog.String("flow", flow),
		slog.String("error", err.Error()),
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = &msg
}
