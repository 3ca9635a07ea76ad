// Package apiclient はPortal Link APIの型付きクライアントを提供する。
//
// すべての操作は成功時にレスポンス型を、失敗時に*model.APIErrorを返す。
// トランスポート層の失敗（ネットワーク障害、タイムアウト、JSONでないボディ等）は
// ErrInternalに一律で畳み込む。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/portallink/internal/metrics"
	"github.com/hitoshi/portallink/internal/middleware"
	"github.com/hitoshi/portallink/internal/model"
)

const (
	// DefaultBaseURL はAPIベースURLの既定値。
	DefaultBaseURL = "http://localhost:8080/api/v1"

	userAgent = "PortalLink/1.0"

	// maxBodySize はレスポンスボディの読み取り上限。
	maxBodySize = 1 << 20
)

// TokenSource は現在のアクセストークンを提供する。session.Storeが満たす。
type TokenSource interface {
	AccessToken() (string, bool)
}

// Client はPortal Link APIのクライアント。
// セッションごとにWithTokenSourceで束縛したコピーを使う。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
	baseURL    string
	tokens     TokenSource
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientがnilの場合はhttp.DefaultClient、collectorがnilの場合は記録しない。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    collector,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// WithTokenSource はトークン供給元を束縛したClientのコピーを返す。
func (c *Client) WithTokenSource(src TokenSource) *Client {
	cp := *c
	cp.tokens = src
	return &cp
}

// BaseURL は設定されたAPIベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do は1回のAPI呼び出しを行い、成功時はoutにデコードする。
// 返すエラーは常に*model.APIError。
func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	start := time.Now()

	status, err := c.roundTrip(ctx, method, path, in, out)

	apiErr := model.AsAPIError(err)
	code := ""
	if apiErr != nil {
		code = string(apiErr.Kind())
	}
	c.metrics.RecordAPICall(operation, status, code, time.Since(start))

	if apiErr != nil {
		return apiErr
	}
	return nil
}

// roundTrip はHTTPステータス（レスポンスが無い場合は0）とエラーを返す。
func (c *Client) roundTrip(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, c.internal(method, path, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, c.internal(method, path, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	// トークンが無い場合はヘッダー自体を付けない
	if c.tokens != nil {
		if token, ok := c.tokens.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if requestID, ok := middleware.RequestIDFromContext(ctx); ok {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.internal(method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, c.internal(method, path, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody model.ErrorResponse
		if err := json.Unmarshal(data, &errBody); err != nil {
			return resp.StatusCode, c.internal(method, path, fmt.Errorf("decode error body (status %d): %w", resp.StatusCode, err))
		}

		apiErr := &model.APIError{
			Status:  resp.StatusCode,
			Code:    model.ErrorCode(errBody.Error),
			Message: errBody.Message,
		}
		c.logger.WarnContext(ctx, "portal link API returned an error",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", apiErr.Status),
			slog.String("error_code", string(apiErr.Code)),
		)
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, c.internal(method, path, fmt.Errorf("decode response: %w", err))
		}
	}

	return resp.StatusCode, nil
}

// internal は原因をログに残し、汎用の内部エラーを返す。
// 呼び出し側からは原因を区別できないが、運用上の診断情報はログで保持する。
func (c *Client) internal(method, path string, cause error) *model.APIError {
	var apiErr *model.APIError
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	c.logger.Error("portal link API call failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("error", cause.Error()),
	)
	return model.NewInternalError()
}
