// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// クレーム失敗理由のラベル値。
const (
	ReasonValidation = "validation"
	ReasonNotFound   = "not_found"
	ReasonStore      = "store"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordClaim(points int)
	RecordClaimFailure(reason string)
	RecordHistoryAppendFailure()
	RecordUserCreated()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	claims             prometheus.Counter
	pointsAwarded      prometheus.Counter
	pointsDistribution prometheus.Histogram
	claimFail          *prometheus.CounterVec
	historyAppendFail  prometheus.Counter
	usersCreated       prometheus.Counter
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_claims_total",
			Help: "成功したクレームの合計数",
		}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_points_awarded_total",
			Help: "クレームで付与したポイントの合計",
		}),
		pointsDistribution: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaderboard_claim_points",
			Help:    "1回のクレームで付与したポイントの分布",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		claimFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_claim_fail_total",
			Help: "失敗したクレームの理由別の数",
		}, []string{"reason"}),
		historyAppendFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_claim_history_append_fail_total",
			Help: "ポイント加算後に履歴の追記に失敗した数",
		}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_users_created_total",
			Help: "作成されたユーザーの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaderboard_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.claims,
		c.pointsAwarded,
		c.pointsDistribution,
		c.claimFail,
		c.historyAppendFail,
		c.usersCreated,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordClaim は成功したクレームと付与ポイントを記録する。
func (c *Collector) RecordClaim(points int) {
	c.claims.Inc()
	c.pointsAwarded.Add(float64(points))
	c.pointsDistribution.Observe(float64(points))
}

// RecordClaimFailure はクレーム失敗を理由別に記録する。
func (c *Collector) RecordClaimFailure(reason string) {
	c.claimFail.WithLabelValues(reason).Inc()
}

// RecordHistoryAppendFailure は履歴追記の失敗を記録する。
func (c *Collector) RecordHistoryAppendFailure() {
	c.historyAppendFail.Inc()
}

// RecordUserCreated はユーザー作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
