package session

import (
	"fmt"
	"net/http"
	"strings"
)

// RedirectNavigator はNavigateをHTTPリダイレクトとして応答に書き込む。
// 遷移先は同一オリジン内の絶対パスに限る。
type RedirectNavigator struct {
	w      http.ResponseWriter
	r      *http.Request
	status int

	navigated string
}

// NewRedirectNavigator は303 See OtherでリダイレクトするRedirectNavigatorを生成する。
func NewRedirectNavigator(w http.ResponseWriter, r *http.Request) *RedirectNavigator {
	return &RedirectNavigator{w: w, r: r, status: http.StatusSeeOther}
}

// Navigate はpathへのリダイレクトを書き込む。同じ応答に2回は書き込まない。
func (n *RedirectNavigator) Navigate(path string) error {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return fmt.Errorf("navigate: %q is not a local path", path)
	}
	if n.navigated != "" {
		return fmt.Errorf("navigate: response already redirected to %s", n.navigated)
	}
	http.Redirect(n.w, n.r, path, n.status)
	n.navigated = path
	return nil
}

// Navigated はリダイレクト済みであればその遷移先を返す。
func (n *RedirectNavigator) Navigated() (string, bool) {
	return n.navigated, n.navigated != ""
}
