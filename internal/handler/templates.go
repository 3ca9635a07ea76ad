package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/portallink/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SiteConfig はページのメタ情報。
type SiteConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// pageData はHTMLテンプレートに渡す値。
type pageData struct {
	Site      SiteConfig
	Heading   string
	Theme     model.Theme
	CSRFToken string
	Error     string

	// フォームの再表示用
	Name  string
	Email string

	Pages []model.PortalPageSummary
	Page  *model.PortalPage
	Bio   template.HTML
}

// renderPage はテンプレートをバッファに描画してから書き込む。
// 描画に失敗した場合は部分的な出力を送らずに500を返す。
func renderPage(w http.ResponseWriter, status int, name string, data *pageData) {
	if data.Theme == "" {
		data.Theme = model.DefaultTheme
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
