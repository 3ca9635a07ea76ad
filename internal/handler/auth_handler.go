package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/portallink/internal/authflow"
	"github.com/hitoshi/portallink/internal/metrics"
	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/session"
)

// AuthHandler はサインアップ・サインイン・ログアウトのHTTPハンドラー。
// 1リクエストにつき1つのauthflow.Controllerを生成する。
type AuthHandler struct {
	clients ClientFactory
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	site    SiteConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(clients ClientFactory, collector metrics.MetricsCollector, logger *slog.Logger, site SiteConfig) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		clients: clients,
		metrics: collector,
		logger:  logger,
		site:    site,
	}
}

// authFailureResponse は認証失敗時のJSONレスポンス。
type authFailureResponse struct {
	Error string `json:"error"`
}

// SignInForm はログイン画面を表示する。認証済みならダッシュボードへ遷移する。
// GET /signin
func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "signin.html", "登入")
}

// SignUpForm はユーザー登録画面を表示する。
// GET /signup
func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "signup.html", "註冊")
}

func (h *AuthHandler) renderForm(w http.ResponseWriter, r *http.Request, name, heading string) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}
	if store.IsAuthenticated() {
		http.Redirect(w, r, session.DashboardPath, http.StatusSeeOther)
		return
	}
	renderPage(w, http.StatusOK, name, &pageData{
		Site:      h.site,
		Heading:   heading,
		CSRFToken: middleware.CSRFTokenFromContext(r),
	})
}

// SignUp はユーザー登録を処理する。
// POST /signup（JSONまたはフォーム）
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	var req model.SignUpRequest
	if isJSONRequest(r) {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		req = model.SignUpRequest{
			Name:     r.PostFormValue("name"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
	}

	ctrl := h.newController(w, r, store)
	if ctrl.SignUp(r.Context(), &req) {
		return
	}

	msg, _ := ctrl.Error()
	h.writeFailure(w, r, "signup.html", "註冊", msg, &pageData{Name: req.Name, Email: req.Email})
}

// SignIn はログインを処理する。
// POST /signin（JSONまたはフォーム）
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	var req model.SignInRequest
	if isJSONRequest(r) {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		req = model.SignInRequest{
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
	}

	ctrl := h.newController(w, r, store)
	if ctrl.SignIn(r.Context(), &req) {
		return
	}

	msg, _ := ctrl.Error()
	h.writeFailure(w, r, "signin.html", "登入", msg, &pageData{Email: req.Email})
}

// Logout はトークンを破棄してログイン画面へ遷移する。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}
	store.Logout()
}

// newController はこのリクエスト用のControllerを生成する。
// 成功時の遷移は303リダイレクトとして応答に書き込まれる。
func (h *AuthHandler) newController(w http.ResponseWriter, r *http.Request, store *session.Store) *authflow.Controller {
	return authflow.NewController(
		h.clients(store),
		store,
		session.NewRedirectNavigator(w, r),
		h.metrics,
		h.logger,
	)
}

// writeFailure は失敗メッセージを返す。JSONリクエストにはJSONで、フォームには画面を再表示する。
func (h *AuthHandler) writeFailure(w http.ResponseWriter, r *http.Request, name, heading, msg string, data *pageData) {
	if isJSONRequest(r) {
		writeJSON(w, http.StatusBadRequest, authFailureResponse{Error: msg})
		return
	}
	data.Site = h.site
	data.Heading = heading
	data.Error = msg
	data.CSRFToken = middleware.CSRFTokenFromContext(r)
	renderPage(w, http.StatusBadRequest, name, data)
}
