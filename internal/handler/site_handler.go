package handler

import (
	"net/http"
)

// SiteHandler はサイト情報とセッション状態を返すハンドラー。
type SiteHandler struct {
	site SiteConfig
}

// NewSiteHandler はSiteHandlerを生成する。
func NewSiteHandler(site SiteConfig) *SiteHandler {
	return &SiteHandler{site: site}
}

// siteResponse はGET /のレスポンス。
type siteResponse struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Authenticated bool   `json:"authenticated"`
}

// sessionResponse はGET /api/sessionのレスポンス。
type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Index はサイトのメタ情報と認証状態を返す。
// GET /
func (h *SiteHandler) Index(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, siteResponse{
		Title:         h.site.Title,
		Description:   h.site.Description,
		Authenticated: store.IsAuthenticated(),
	})
}

// Session は現在の認証状態を返す。
// GET /api/session
func (h *SiteHandler) Session(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: store.IsAuthenticated()})
}

// Health はヘルスチェック用に200 okを返す。
// GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
