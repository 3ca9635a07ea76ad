package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/portallink/internal/model"
)

// 操作名（メトリクスのラベルに使う）
const (
	OpSignUp              = "sign_up"
	OpSignIn              = "sign_in"
	OpCreatePortalPage    = "create_portal_page"
	OpListPortalPages     = "list_portal_pages"
	OpGetPortalPageByID   = "get_portal_page_by_id"
	OpUpdatePortalPage    = "update_portal_page"
	OpGetPortalPageBySlug = "get_portal_page_by_slug"
)

// SignUp はユーザー登録を行う。
// POST /user/signup
func (c *Client) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.SignUpResponse, error) {
	var resp model.SignUpResponse
	if err := c.do(ctx, OpSignUp, http.MethodPost, "/user/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignIn はログインを行う。
// POST /user/signin
func (c *Client) SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error) {
	var resp model.SignInResponse
	if err := c.do(ctx, OpSignIn, http.MethodPost, "/user/signin", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePortalPage はPortal Pageを作成する。
// POST /me/portal-pages
func (c *Client) CreatePortalPage(ctx context.Context, req *model.CreatePortalPageRequest) (*model.CreatePortalPageResponse, error) {
	var resp model.CreatePortalPageResponse
	if err := c.do(ctx, OpCreatePortalPage, http.MethodPost, "/me/portal-pages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPortalPages は自分のPortal Page一覧を取得する。
// GET /me/portal-pages
func (c *Client) ListPortalPages(ctx context.Context) (*model.ListPortalPagesResponse, error) {
	var resp model.ListPortalPagesResponse
	if err := c.do(ctx, OpListPortalPages, http.MethodGet, "/me/portal-pages", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPortalPageByID は自分のPortal PageをIDで取得する。
// GET /me/portal-pages/{id}
func (c *Client) GetPortalPageByID(ctx context.Context, id int) (*model.FindPortalPageByIDResponse, error) {
	var resp model.FindPortalPageByIDResponse
	if err := c.do(ctx, OpGetPortalPageByID, http.MethodGet, portalPagePath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePortalPage はPortal Pageを更新する。Linksは渡された順序のまま送信する。
// PUT /me/portal-pages/{id}
func (c *Client) UpdatePortalPage(ctx context.Context, id int, req *model.UpdatePortalPageRequest) (*model.UpdatePortalPageResponse, error) {
	var resp model.UpdatePortalPageResponse
	if err := c.do(ctx, OpUpdatePortalPage, http.MethodPut, portalPagePath(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPortalPageBySlug は公開Portal Pageをslugで取得する。
// GET /portal-pages/{slug}
func (c *Client) GetPortalPageBySlug(ctx context.Context, slug string) (*model.FindPortalPageBySlugResponse, error) {
	var resp model.FindPortalPageBySlugResponse
	if err := c.do(ctx, OpGetPortalPageBySlug, http.MethodGet, "/portal-pages/"+url.PathEscape(slug), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func portalPagePath(id int) string {
	return "/me/portal-pages/" + strconv.Itoa(id)
}
