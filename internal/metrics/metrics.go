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
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordUserRegistered()
	RecordExerciseLogged()
	RecordLogQuery(entries int)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	usersRegistered prometheus.Counter
	exercisesLogged prometheus.Counter
	logQueries      prometheus.Counter
	logEntries      prometheus.Histogram
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exercisetracker_users_registered_total",
			Help: "登録されたユーザーの合計数",
		}),
		exercisesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exercisetracker_exercises_logged_total",
			Help: "記録されたエクササイズの合計数",
		}),
		logQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exercisetracker_log_queries_total",
			Help: "エクササイズログ取得の合計数",
		}),
		logEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exercisetracker_log_entries_returned",
			Help:    "ログ取得1回あたりの返却件数",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exercisetracker_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exercisetracker_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.usersRegistered,
		c.exercisesLogged,
		c.logQueries,
		c.logEntries,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordUserRegistered はユーザー登録を記録する。
func (c *Collector) RecordUserRegistered() {
	c.usersRegistered.Inc()
}

// RecordExerciseLogged はエクササイズ記録を記録する。
func (c *Collector) RecordExerciseLogged() {
	c.exercisesLogged.Inc()
}

// RecordLogQuery はログ取得と返却件数を記録する。
func (c *Collector) RecordLogQuery(entries int) {
	c.logQueries.Inc()
	c.logEntries.Observe(float64(entries))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
