package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/model"
	"github.com/hitoshi/portallink/internal/security"
	"github.com/hitoshi/portallink/internal/session"
)

// PageHandler はHTMLページ（ダッシュボードと公開Portal Page）のハンドラー。
type PageHandler struct {
	clients   ClientFactory
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
	site      SiteConfig
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(clients ClientFactory, sanitizer security.ContentSanitizerService, logger *slog.Logger, site SiteConfig) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{
		clients:   clients,
		sanitizer: sanitizer,
		logger:    logger,
		site:      site,
	}
}

// Dashboard はログイン中ユーザーのPortal Page一覧を表示する。
// GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	resp, err := h.clients(store).ListPortalPages(r.Context())
	if err != nil {
		apiErr := model.AsAPIError(err)
		if apiErr.Kind() == model.ErrUnauthorized {
			store.ClearToken()
			http.Redirect(w, r, session.SignInPath, http.StatusSeeOther)
			return
		}
		h.logger.Warn("failed to list portal pages",
			slog.Int("status", apiErr.Status),
			slog.String("code", string(apiErr.Code)),
		)
		h.renderError(w, r, apiErr)
		return
	}

	renderPage(w, http.StatusOK, "dashboard.html", &pageData{
		Site:      h.site,
		Heading:   "Dashboard",
		CSRFToken: middleware.CSRFTokenFromContext(r),
		Pages:     resp.PortalPages,
	})
}

// PublicPage はslugで指定された公開Portal Pageを表示する。認証は不要。
// GET /p/{slug}
func (h *PageHandler) PublicPage(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		h.renderError(w, r, &model.APIError{
			Status:  http.StatusNotFound,
			Code:    model.ErrPortalPageNotFound,
			Message: "Portal page not found",
		})
		return
	}

	page, err := h.clients(nil).GetPortalPageBySlug(r.Context(), slug)
	if err != nil {
		apiErr := model.AsAPIError(err)
		if errors.Is(apiErr, &model.APIError{Code: model.ErrPortalPageNotFound}) ||
			errors.Is(apiErr, &model.APIError{Code: model.ErrNotFound}) {
			apiErr = &model.APIError{
				Status:  http.StatusNotFound,
				Code:    apiErr.Code,
				Message: "Portal page not found",
			}
		}
		h.renderError(w, r, apiErr)
		return
	}

	clean := h.sanitizer.SanitizePage(page)
	renderPage(w, http.StatusOK, "portal.html", &pageData{
		Site:    h.site,
		Heading: clean.Title,
		Theme:   clean.Theme,
		Page:    clean,
		// SanitizePageで許可タグ以外は除去済み
		Bio: template.HTML(clean.Bio),
	})
}

// renderError はAPIエラーをエラーページとして表示する。
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *model.APIError) {
	status := apiErr.Status
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	msg := apiErr.Message
	if msg == "" {
		msg = model.GenericErrorMessage
	}
	renderPage(w, status, "error.html", &pageData{
		Site:      h.site,
		Heading:   http.StatusText(status),
		CSRFToken: middleware.CSRFTokenFromContext(r),
		Error:     msg,
	})
}
