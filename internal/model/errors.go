// Package model はドメインモデルとAPIの入出力型を定義する。
package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode はPortal Link APIが返すエラーコード。
type ErrorCode string

// 定義済みエラーコード（閉じた集合）
const (
	ErrInvalidParams      ErrorCode = "ErrInvalidParams"
	ErrEmailExists        ErrorCode = "ErrEmailExists"
	ErrInvalidCredentials ErrorCode = "ErrInvalidCredentials"
	ErrUnauthorized       ErrorCode = "ErrUnauthorized"
	ErrForbidden          ErrorCode = "ErrForbidden"
	ErrNotFound           ErrorCode = "ErrNotFound"
	ErrPortalPageNotFound ErrorCode = "ErrPortalPageNotFound"
	ErrSlugExists         ErrorCode = "ErrSlugExists"
	ErrInternal           ErrorCode = "ErrInternal"
)

// GenericErrorMessage は構造化されたエラーを得られなかった場合にユーザーへ表示する文言。
const GenericErrorMessage = "網路錯誤，請稍後再試"

// IsKnown はエラーコードが定義済みの集合に含まれるかを返す。
func (c ErrorCode) IsKnown() bool {
	switch c {
	case ErrInvalidParams, ErrEmailExists, ErrInvalidCredentials,
		ErrUnauthorized, ErrForbidden, ErrNotFound,
		ErrPortalPageNotFound, ErrSlugExists, ErrInternal:
		return true
	default:
		return false
	}
}

// ErrorResponse はAPIのエラーレスポンスボディ。
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// APIError はリモート呼び出しの分類済み失敗を表す。
// Codeにはサーバーが返した値をそのまま保持する（未知のコードも含む）。
type APIError struct {
	Status  int
	Code    ErrorCode
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d %s] %s", e.Status, e.Code, e.Message)
}

// Kind は分類に使うエラーコードを返す。
// 未知のコードはErrInternalとして扱う。
func (e *APIError) Kind() ErrorCode {
	if e.Code.IsKnown() {
		return e.Code
	}
	return ErrInternal
}

// Is はerrors.Isで同じ分類のAPIErrorを判定できるようにする。
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind() == e.Kind()
}

// NewInternalError は汎用の内部エラーを生成する。
// ネットワーク障害やパース失敗など、サーバーのエラー構造を得られない場合に使う。
func NewInternalError() *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    ErrInternal,
		Message: GenericErrorMessage,
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Code:    ErrUnauthorized,
		Message: "Invalid access token",
	}
}

// NewInvalidParamsError はパラメータ不正エラーを生成する。
func NewInvalidParamsError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    ErrInvalidParams,
		Message: message,
	}
}

// AsAPIError はerrからAPIErrorを取り出す。
// APIErrorでないエラーは汎用の内部エラーに変換する。nilにはnilを返す。
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError()
}
