package session

import (
	"net/http"
	"time"
)

// CookieConfig はCookieの属性設定。
type CookieConfig struct {
	Domain string
	Secure bool
}

// CookieStore は1リクエストに束縛されたCookieベースのCredentialStore。
// 有効期限はブラウザがMax-Ageで管理するため、リクエストに含まれるCookieは期限内とみなす。
// 同一リクエスト内で書き込んだ値は以降の読み取りに反映される。
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	config  CookieConfig
	written map[string]*string // nilは削除済み
}

// NewCookieStore はCookieStoreを生成する。
func NewCookieStore(w http.ResponseWriter, r *http.Request, config CookieConfig) *CookieStore {
	return &CookieStore{
		w:       w,
		r:       r,
		config:  config,
		written: make(map[string]*string),
	}
}

// Get はCookieの値を返す。
func (c *CookieStore) Get(key string) (string, bool) {
	if v, ok := c.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	cookie, err := c.r.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set はMax-Age付きのHTTP Only Cookieを書き込む。
func (c *CookieStore) Set(key, value string, maxAge time.Duration) {
	if maxAge <= 0 {
		c.Delete(key)
		return
	}

	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Domain:   c.config.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.written[key] = &value
}

// Delete はCookieを失効させる。
func (c *CookieStore) Delete(key string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Domain:   c.config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.written[key] = nil
}
