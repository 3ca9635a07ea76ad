package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/portallink/internal/model"
)

// WriteAPIError はAPIエラーを{error, message}形式のJSONで書き込む。
// Portal Link APIから受け取ったエラーもこの形式のまま中継する。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	status := apiErr.Status
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:   string(apiErr.Code),
		Message: apiErr.Message,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError())
}
