package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/model"
)

// PortalPageHandler は自分のPortal Pageを操作するJSON APIのハンドラー。
// リクエストをPortal Link APIへ中継し、エラーはステータスと本文をそのまま返す。
type PortalPageHandler struct {
	clients ClientFactory
}

// NewPortalPageHandler はPortalPageHandlerを生成する。
func NewPortalPageHandler(clients ClientFactory) *PortalPageHandler {
	return &PortalPageHandler{clients: clients}
}

// List は自分のPortal Page一覧を返す。
// GET /api/portal-pages
func (h *PortalPageHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	resp, err := h.clients(store).ListPortalPages(r.Context())
	if err != nil {
		relayAPIError(w, store, err)
		return
	}
	if resp.PortalPages == nil {
		resp.PortalPages = []model.PortalPageSummary{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create はPortal Pageを作成する。
// POST /api/portal-pages
func (h *PortalPageHandler) Create(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	var req model.CreatePortalPageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.clients(store).CreatePortalPage(r.Context(), &req)
	if err != nil {
		relayAPIError(w, store, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get はPortal PageをIDで取得する。
// GET /api/portal-pages/{id}
func (h *PortalPageHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	id, ok := portalPageID(w, r)
	if !ok {
		return
	}

	resp, err := h.clients(store).GetPortalPageByID(r.Context(), id)
	if err != nil {
		relayAPIError(w, store, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update はPortal Pageを更新する。Linksはリクエストの順序のまま中継する。
// PUT /api/portal-pages/{id}
func (h *PortalPageHandler) Update(w http.ResponseWriter, r *http.Request) {
	store, ok := requestSession(w, r)
	if !ok {
		return
	}

	id, ok := portalPageID(w, r)
	if !ok {
		return
	}

	var req model.UpdatePortalPageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.clients(store).UpdatePortalPage(r.Context(), id, &req)
	if err != nil {
		relayAPIError(w, store, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// portalPageID はURLパラメータのIDを解析する。不正な場合は400を書き込む。
func portalPageID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		middleware.WriteAPIError(w, model.NewInvalidParamsError("invalid portal page id"))
		return 0, false
	}
	return id, true
}
