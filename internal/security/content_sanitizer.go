// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は公開Portal Pageに含まれるユーザー入力を表示前に無害化する。
// テキストはbluemondayのStrictPolicyでタグを除去し、紹介文（bio）のみ
// 許可リストベースのポリシーで最小限の装飾を残す。
// リンク先とアイコン画像のURLはスキームを検査し、安全でないものは破棄する。
package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/portallink/internal/model"
)

// ContentSanitizerService はPortal Pageのサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// SanitizePage は表示用に無害化したPortal Pageのコピーを返す。
	// 安全でないURLを持つLinkは除外し、残りの順序は保持する。
	SanitizePage(page *model.PortalPage) *model.PortalPage
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなので共有する。
type contentSanitizer struct {
	text *bluemonday.Policy
	bio  *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// bioのポリシー:
//   - 許可タグ: p, br, strong, em, a
//   - aのhref: http, https, mailtoのみ。target="_blank"とrel="noreferrer"を付与
func NewContentSanitizer() *contentSanitizer {
	bio := bluemonday.NewPolicy()
	bio.AllowElements("p", "br", "strong", "em")
	bio.AllowAttrs("href").OnElements("a")
	bio.AllowURLSchemes("http", "https", "mailto")
	bio.AllowRelativeURLs(false)
	bio.AddTargetBlankToFullyQualifiedLinks(true)
	bio.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		text: bluemonday.StrictPolicy(),
		bio:  bio,
	}
}

// SanitizeText はタグを全て除去したプレーンテキストを返す。
// 出力側（html/template）でエスケープするため、エンティティは元の文字に戻す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.text.Sanitize(raw)))
}

// SanitizeBio は許可タグのみを残したHTMLを返す。
func (s *contentSanitizer) SanitizeBio(raw string) string {
	return strings.TrimSpace(s.bio.Sanitize(raw))
}

// SanitizePage は表示用に無害化したPortal Pageのコピーを返す。
func (s *contentSanitizer) SanitizePage(page *model.PortalPage) *model.PortalPage {
	if page == nil {
		return nil
	}

	out := &model.PortalPage{
		ID:              page.ID,
		Slug:            page.Slug,
		Title:           s.SanitizeText(page.Title),
		Bio:             s.SanitizeBio(page.Bio),
		ProfileImageURL: SafeImageURL(page.ProfileImageURL),
		Theme:           page.Theme,
		Links:           make([]model.LinkDetail, 0, len(page.Links)),
	}
	if !out.Theme.IsValid() {
		out.Theme = model.DefaultTheme
	}

	for _, l := range page.Links {
		href, ok := SafeLinkURL(l.URL)
		if !ok {
			continue
		}
		title := s.SanitizeText(l.Title)
		if title == "" {
			title = href
		}
		out.Links = append(out.Links, model.LinkDetail{
			ID:           l.ID,
			Title:        title,
			URL:          href,
			Description:  s.SanitizeText(l.Description),
			IconURL:      SafeImageURL(l.IconURL),
			DisplayOrder: l.DisplayOrder,
		})
	}

	return out
}

// SafeLinkURL はリンク先として安全なURLであれば正規化した文字列を返す。
// 許可スキーム: http, https, mailto（javascript:, data: 等は拒否）
func SafeLinkURL(raw string) (string, bool) {
	u, ok := parseAbsolute(raw)
	if !ok {
		return "", false
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", false
		}
	case "mailto":
		if u.Opaque == "" {
			return "", false
		}
	default:
		return "", false
	}
	return u.String(), true
}

// SafeImageURL は画像URLがhttpsであればそのまま、そうでなければ空文字列を返す。
func SafeImageURL(raw string) string {
	u, ok := parseAbsolute(raw)
	if !ok || u.Scheme != "https" || u.Host == "" {
		return ""
	}
	return u.String()
}

func parseAbsolute(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, true
}
