package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portallink/internal/apiclient"
	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/session"
)

// --- モック定義 ---

// mockPortalClient はPortalClientのモック実装。
// 未設定の操作は汎用の内部エラーを返す。
type mockPortalClient struct {
	signUpFn              func(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResponse, error)
	signInFn              func(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error)
	createPortalPageFn    func(ctx context.Context, req *model.CreatePortalPageRequest) (*model.CreatePortalPageResponse, error)
	listPortalPagesFn     func(ctx context.Context) (*model.ListPortalPagesResponse, error)
	getPortalPageByIDFn   func(ctx context.Context, id int) (*model.FindPortalPageByIDResponse, error)
	updatePortalPageFn    func(ctx context.Context, id int, req *model.UpdatePortalPageRequest) (*model.UpdatePortalPageResponse, error)
	getPortalPageBySlugFn func(ctx context.Context, slug string) (*model.FindPortalPageBySlugResponse, error)

	// ファクトリーに渡されたトークン供給元
	tokenSources []apiclient.TokenSource
}

func (m *mockPortalClient) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResponse, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, req)
	}
	return nil, model.NewInternalError()
}

func (m *mockPortalClient) SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, req)
	}
	return nil, model.NewInternalError()
}

func (m *mockPortalClient) CreatePortalPage(ctx context.Context, req *model.CreatePortalPageRequest) (*model.CreatePortalPageResponse, error) {
	if m.createPortalPageFn != nil {
		return m.createPortalPageFn(ctx, req)
	}
	return nil, model.NewInternalError()
}

func (m *mockPortalClient) ListPortalPages(ctx context.Context) (*model.ListPortalPagesResponse, error) {
	if m.listPortalPagesFn != nil {
		return m.listPortalPagesFn(ctx)
	}
	return nil, model.NewInternalError()
}

func (m *mockPortalClient) GetPortalPageByID(ctx context.Context, id int) (*model.FindPortalPageByIDResponse, error) {
	if m.getPortalPageByIDFn != nil {
		return m.getPortalPageByIDFn(ctx, id)
	}
	return nil, model.NewInternalError()
}

func (m *mockPortalClient) UpdatePortalPage(ctx context.Context, id int, req *model.UpdatePortalPageRequest) (*model.UpdatePortalPageResponse, error) {
	if m.updatePortalPageFn != nil {
		return m.updatePortalPageFn(ctx, id, req)
	}
	return nil, model.NewInternalError()
}

func (m *mockPortalClient) GetPortalPageBySlug(ctx context.Context, slug string) (*model.FindPortalPageBySlugResponse, error) {
	if m.getPortalPageBySlugFn != nil {
		return m.getPortalPageBySlugFn(ctx, slug)
	}
	return nil, model.NewInternalError()
}

// factory はモックを返すClientFactoryを返す。
func (m *mockPortalClient) factory() ClientFactory {
	return func(tokens apiclient.TokenSource) PortalClient {
		m.tokenSources = append(m.tokenSources, tokens)
		return m
	}
}

// --- テストヘルパー ---

// newTestSession はメモリ上のセッションを生成する。tokenが空でなければ保存済みにする。
func newTestSession(token string, navigator session.Navigator) *session.Store {
	store := session.NewStore(session.NewMemoryStore(nil), navigator, nil)
	if token != "" {
		store.SetToken(token)
	}
	return store
}

// withSession はリクエストコンテキストにセッションを注入するヘルパー。
func withSession(r *http.Request, store *session.Store) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), store))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからエラーレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var result model.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v\nraw: %s", err, w.Body.String())
	}
	return result
}

// --- 共通処理のテスト ---

func TestRequestSession_MissingReturns500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	w := httptest.NewRecorder()

	if _, ok := requestSession(w, req); ok {
		t.Fatal("requestSession() ok = true, want false")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRelayAPIError_UnauthorizedClearsToken(t *testing.T) {
	store := newTestSession("stale", nil)
	w := httptest.NewRecorder()

	relayAPIError(w, store, model.NewUnauthorizedError())

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if store.IsAuthenticated() {
		t.Error("token should be cleared after 401")
	}
	if body := parseAPIErrorResponse(t, w); body.Error != string(model.ErrUnauthorized) {
		t.Errorf("error = %q, want %q", body.Error, model.ErrUnauthorized)
	}
}

func TestRelayAPIError_OtherErrorsKeepToken(t *testing.T) {
	store := newTestSession("tok", nil)
	w := httptest.NewRecorder()

	relayAPIError(w, store, &model.APIError{Status: http.StatusForbidden, Code: model.ErrForbidden, Message: "not yours"})

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if !store.IsAuthenticated() {
		t.Error("token should be kept for non-401 errors")
	}
}

func TestIsJSONRequest(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/x-www-form-urlencoded", false},
		{"", false},
		{"text/plain", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		if got := isJSONRequest(req); got != tt.want {
			t.Errorf("isJSONRequest(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
