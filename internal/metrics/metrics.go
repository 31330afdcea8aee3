// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 上流呼び出しの結果区分。
const (
	OutcomeOK            = "ok"
	OutcomeUpstreamError = "upstream_error"
	OutcomeParseError    = "parse_error"
	OutcomeNetworkError  = "network_error"
	OutcomeRejected      = "rejected"
)

// MetricsCollector はメトリクス収集のインターフェース。
// プロキシや翻訳ハンドラーから利用する。
type MetricsCollector interface {
	RecordUpstreamRequest(route, outcome string)
	RecordUpstreamLatency(route string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordTranslation(outcome string)
	RecordRateLimited(scope string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	httpStatus       *prometheus.CounterVec
	translations     *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelboard_upstream_requests_total",
			Help: "バックエンドAPIへの転送数（ルート・結果別）",
		}, []string{"route", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "travelboard_upstream_latency_seconds",
			Help:    "バックエンドAPIのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelboard_upstream_http_status_total",
			Help: "上流HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelboard_translations_total",
			Help: "翻訳リクエスト数（結果別）",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "travelboard_rate_limited_total",
			Help: "レート制限で拒否したリクエスト数",
		}, []string{"scope"}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.httpStatus,
		c.translations,
		c.rateLimited,
	)

	return c
}

// RecordUpstreamRequest は上流呼び出しの結果を記録する。
func (c *Collector) RecordUpstreamRequest(route, outcome string) {
	c.upstreamRequests.WithLabelValues(route, outcome).Inc()
}

// RecordUpstreamLatency は上流呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(route string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordHTTPStatus は上流のHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordTranslation は翻訳リクエストの結果を記録する。
func (c *Collector) RecordTranslation(outcome string) {
	c.translations.WithLabelValues(outcome).Inc()
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(scope string) {
	c.rateLimited.WithLabelValues(scope).Inc()
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordUpstreamRequest(string, string)        {}
func (NopCollector) RecordUpstreamLatency(string, time.Duration) {}
func (NopCollector) RecordHTTPStatus(int)                        {}
func (NopCollector) RecordTranslation(string)                    {}
func (NopCollector) RecordRateLimited(string)                    {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
