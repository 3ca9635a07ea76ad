package model

// Theme はPortal Pageの配色テーマ。
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme はテーマ未指定時に使われる値。
const DefaultTheme = ThemeLight

// IsValid はThemeが有効な値かを返す。
func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}

// CreatePortalPageRequest はPortal Page作成リクエスト。
type CreatePortalPageRequest struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Bio             string `json:"bio,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Theme           Theme  `json:"theme,omitempty"`
}

// CreatePortalPageResponse はPortal Page作成レスポンス。
type CreatePortalPageResponse struct {
	ID int `json:"id"`
}

// UpdatePortalPageRequest はPortal Page更新リクエスト。
// Linksは送信した順序のまま送られる。
type UpdatePortalPageRequest struct {
	Slug            string        `json:"slug,omitempty"`
	Title           string        `json:"title,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	Theme           Theme         `json:"theme,omitempty"`
	Links           []LinkRequest `json:"links"`
}

// UpdatePortalPageResponse はPortal Page更新レスポンス。
type UpdatePortalPageResponse struct {
	ID int `json:"id"`
}

// LinkRequest は作成・更新時のLink。IDが無いものは新規作成扱い。
type LinkRequest struct {
	ID           *int   `json:"id,omitempty"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description,omitempty"`
	IconURL      string `json:"icon_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// LinkDetail はサーバーから返されるLink。
type LinkDetail struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description,omitempty"`
	IconURL      string `json:"icon_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// PortalPage はリンクを含むPortal Page全体。
// Linksの並びはサーバーが返した順のまま保持し、クライアント側で並べ替えない。
type PortalPage struct {
	ID              int          `json:"id"`
	Slug            string       `json:"slug"`
	Title           string       `json:"title"`
	Bio             string       `json:"bio,omitempty"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	Theme           Theme        `json:"theme"`
	Links           []LinkDetail `json:"links"`
}

// FindPortalPageByIDResponse はID指定取得のレスポンス。
type FindPortalPageByIDResponse = PortalPage

// FindPortalPageBySlugResponse はslug指定（公開）取得のレスポンス。
type FindPortalPageBySlugResponse = PortalPage

// PortalPageSummary は一覧表示用の要約。
type PortalPageSummary struct {
	ID    int    `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// ListPortalPagesResponse はPortal Page一覧レスポンス。
type ListPortalPagesResponse struct {
	PortalPages []PortalPageSummary `json:"portal_pages"`
}
