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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(duration time.Duration)
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordRegistration()
	RecordRateLimitDenied(limitType string)
	RecordOrderCreated(lineCount int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	loginSuccess    prometheus.Counter
	loginFail       *prometheus.CounterVec
	registrations   prometheus.Counter
	rateLimitDenied *prometheus.CounterVec
	ordersCreated   prometheus.Counter
	orderLines      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mogumogu_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mogumogu_http_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mogumogu_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mogumogu_login_fail_total",
			Help: "失敗理由別のログイン失敗数",
		}, []string{"reason"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mogumogu_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
		rateLimitDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mogumogu_rate_limit_denied_total",
			Help: "制限種別ごとのレート制限拒否数",
		}, []string{"limit_type"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mogumogu_orders_created_total",
			Help: "作成された注文の合計数",
		}),
		orderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mogumogu_order_lines_total",
			Help: "作成された注文明細行の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.loginSuccess,
		c.loginFail,
		c.registrations,
		c.rateLimitDenied,
		c.ordersCreated,
		c.orderLines,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を失敗理由とともに記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordRateLimitDenied はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimitDenied(limitType string) {
	c.rateLimitDenied.WithLabelValues(limitType).Inc()
}

// RecordOrderCreated は注文の作成を明細行数とともに記録する。
func (c *Collector) RecordOrderCreated(lineCount int) {
	c.ordersCreated.Inc()
	c.orderLines.Add(float64(lineCount))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
