// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// NewSessionMiddleware はリクエストごとにCookieを資格情報ストアとするsession.Storeを生成し、
// リクエストコンテキストに注入する。
// 認証の要否は判定しない（NewRequireAuthMiddlewareと組み合わせる）。
func NewSessionMiddleware(config session.CookieConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := session.NewStore(
				session.NewCookieStore(w, r, config),
				session.NewRedirectNavigator(w, r),
				logger,
			)
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), store)))
		})
	}
}

// NewRequireAuthMiddleware は未認証リクエストに401を返すミドルウェアを返す。
// JSON APIのルートに使う。
func NewRequireAuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAuthenticated(r.Context()) {
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewRequireAuthRedirectMiddleware は未認証リクエストをログイン画面へリダイレクトする。
// HTMLページのルートに使う。
func NewRequireAuthRedirectMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAuthenticated(r.Context()) {
				http.Redirect(w, r, session.SignInPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAuthenticated(ctx context.Context) bool {
	store, ok := SessionFromContext(ctx)
	return ok && store.IsAuthenticated()
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) (*session.Store, bool) {
	store, ok := ctx.Value(sessionContextKey).(*session.Store)
	return store, ok && store != nil
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, sessionContextKey, store)
}
