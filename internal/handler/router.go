package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/portallink/internal/metrics"
	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/security"
	"github.com/hitoshi/portallink/internal/session"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// APIクライアント
	Clients ClientFactory

	// 表示
	Sanitizer security.ContentSanitizerService
	Site      SiteConfig

	// 観測
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// ミドルウェア依存
	RateLimiter       *middleware.RateLimiter
	Cookie            session.CookieConfig
	CSRF              middleware.CSRFConfig
	CORSAllowedOrigin string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders
//	  → CORS → RateLimit(General) → Session → CSRF
//
// /healthと/metricsはCORS以降のチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.Get("/health", Health)
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	authHandler := NewAuthHandler(deps.Clients, deps.Metrics, logger, deps.Site)
	pageHandler := NewPageHandler(deps.Clients, deps.Sanitizer, logger, deps.Site)
	portalHandler := NewPortalPageHandler(deps.Clients)
	siteHandler := NewSiteHandler(deps.Site)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewSessionMiddleware(deps.Cookie, logger))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		r.Get("/", siteHandler.Index)
		r.Get("/api/session", siteHandler.Session)
		r.Handle("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))

		// 認証
		r.Get("/signup", authHandler.SignUpForm)
		r.Get("/signin", authHandler.SignInForm)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/signup", authHandler.SignUp)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/signin", authHandler.SignIn)
		r.Post("/logout", authHandler.Logout)

		// 公開ページ
		r.Get("/p/{slug}", pageHandler.PublicPage)

		// ログイン必須のHTMLページ
		r.With(middleware.NewRequireAuthRedirectMiddleware()).Get("/dashboard", pageHandler.Dashboard)

		// ログイン必須のJSON API
		r.Route("/api/portal-pages", func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware())
			r.Get("/", portalHandler.List)
			r.Post("/", portalHandler.Create)
			r.Get("/{id}", portalHandler.Get)
			r.Put("/{id}", portalHandler.Update)
		})
	})

	return r
}
