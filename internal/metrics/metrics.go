// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// APIクライアントと認証フローから利用する。
type MetricsCollector interface {
	RecordAPICall(operation string, statusCode int, errorCode string, duration time.Duration)
	RecordAuthAttempt(flow string, success bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	apiRequests  *prometheus.CounterVec
	apiErrors    *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	authAttempts *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portallink_api_requests_total",
			Help: "Portal Link API呼び出しの合計数（操作・HTTPステータス別）",
		}, []string{"operation", "status_code"}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portallink_api_errors_total",
			Help: "Portal Link API呼び出しの失敗数（エラーコード別）",
		}, []string{"operation", "error_code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portallink_api_request_duration_seconds",
			Help:    "Portal Link API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portallink_auth_attempts_total",
			Help: "サインアップ・サインインの試行数",
		}, []string{"flow", "result"}),
	}

	reg.MustRegister(
		c.apiRequests,
		c.apiErrors,
		c.apiLatency,
		c.authAttempts,
	)

	return c
}

// RecordAPICall はAPI呼び出し1回分を記録する。
// errorCodeが空でない場合は失敗として数える。
// レスポンスを得られなかった場合のstatusCodeは0。
func (c *Collector) RecordAPICall(operation string, statusCode int, errorCode string, duration time.Duration) {
	c.apiRequests.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	if errorCode != "" {
		c.apiErrors.WithLabelValues(operation, errorCode).Inc()
	}
	c.apiLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAuthAttempt は認証フローの試行結果を記録する。
func (c *Collector) RecordAuthAttempt(flow string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttempts.WithLabelValues(flow, result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordAPICall(string, int, string, time.Duration) {}

func (NopCollector) RecordAuthAttempt(string, bool) {}
