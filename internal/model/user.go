package model

// SignUpRequest はユーザー登録リクエスト。
// 入力値の検証はリモートサービス側で行う。
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpResponse はユーザー登録レスポンス。
type SignUpResponse struct {
	AccessToken string `json:"access_token"`
}

// SignInRequest はログインリクエスト。
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse はログインレスポンス。
type SignInResponse struct {
	AccessToken string `json:"access_token"`
}
