// Package handler はPortal LinkのWebフロント（BFF）のHTTPハンドラーを提供する。
//
// 各ハンドラーはセッションミドルウェアが注入したリクエストごとのsession.Storeを取り出し、
// それを資格情報の供給元としてAPIクライアントを生成する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/hitoshi/portallink/internal/apiclient"
	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/session"
)

// PortalClient はハンドラーが必要とするPortal Link APIの操作。
// *apiclient.Clientが満たす。
type PortalClient interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResponse, error)
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error)
	CreatePortalPage(ctx context.Context, req *model.CreatePortalPageRequest) (*model.CreatePortalPageResponse, error)
	ListPortalPages(ctx context.Context) (*model.ListPortalPagesResponse, error)
	GetPortalPageByID(ctx context.Context, id int) (*model.FindPortalPageByIDResponse, error)
	UpdatePortalPage(ctx context.Context, id int, req *model.UpdatePortalPageRequest) (*model.UpdatePortalPageResponse, error)
	GetPortalPageBySlug(ctx context.Context, slug string) (*model.FindPortalPageBySlugResponse, error)
}

// ClientFactory はトークン供給元を束縛したPortalClientを返す。
// tokensがnilの場合はAuthorizationヘッダーを付けないクライアントを返す。
type ClientFactory func(tokens apiclient.TokenSource) PortalClient

// NewClientFactory は共有の*apiclient.ClientからClientFactoryを生成する。
func NewClientFactory(c *apiclient.Client) ClientFactory {
	return func(tokens apiclient.TokenSource) PortalClient {
		return c.WithTokenSource(tokens)
	}
}

// requestSession はリクエストのセッションを取得する。
// セッションミドルウェアを経由していない場合は500を書き込んでfalseを返す。
func requestSession(w http.ResponseWriter, r *http.Request) (*session.Store, bool) {
	store, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		slog.Error("session not found in request context",
			slog.String("path", r.URL.Path),
		)
		middleware.WriteInternalServerError(w)
		return nil, false
	}
	return store, true
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// relayAPIError はAPIエラーをそのままのステータスと本文で中継する。
// 401の場合はリモート側でトークンが無効になっているため、保存済みトークンも破棄する。
func relayAPIError(w http.ResponseWriter, store *session.Store, err error) {
	apiErr := model.AsAPIError(err)
	if apiErr.Kind() == model.ErrUnauthorized && store != nil {
		store.ClearToken()
	}
	middleware.WriteAPIError(w, apiErr)
}

// isJSONRequest はリクエストボディがJSONかを返す。
func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON はリクエストボディをvにデコードする。失敗時は400を書き込んでfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteAPIError(w, model.NewInvalidParamsError("invalid request body"))
		return false
	}
	return true
}

const maxRequestBodySize = 1 << 20
