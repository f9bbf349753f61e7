// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// メタデータ呼び出しの結果ラベル
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// メタデータクライアント、ワーカー、サービス層から利用する。
type MetricsCollector interface {
	RecordMetadataRequest(endpoint, outcome string)
	RecordMetadataLatency(endpoint string, duration time.Duration)
	RecordTokenExchange(success bool)
	RecordHTTPStatus(statusCode int)
	RecordResponse(method string, statusCode int)
	RecordBackfill(updated, failed int)
	RecordMutation(kind string)
	RecordActivityPruned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	metadataRequests *prometheus.CounterVec
	metadataLatency  *prometheus.HistogramVec
	tokenExchanges   *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	responses        *prometheus.CounterVec
	backfillUpdated  prometheus.Counter
	backfillFailed   prometheus.Counter
	mutations        *prometheus.CounterVec
	activityPruned   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		metadataRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamevault_metadata_requests_total",
			Help: "ゲーム情報APIの呼び出し数（エンドポイント・結果別）",
		}, []string{"endpoint", "outcome"}),
		metadataLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamevault_metadata_latency_seconds",
			Help:    "ゲーム情報API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		tokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamevault_token_exchanges_total",
			Help: "アクセストークン取得の回数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamevault_metadata_http_status_total",
			Help: "ゲーム情報APIのHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamevault_http_responses_total",
			Help: "APIサーバーが返したレスポンス数（メソッド・ステータスコード別）",
		}, []string{"method", "status_code"}),
		backfillUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamevault_backfill_updated_total",
			Help: "カバーアート補完で更新されたゲーム数",
		}),
		backfillFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamevault_backfill_failed_total",
			Help: "カバーアート補完で取得できなかったゲーム数",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamevault_collection_mutations_total",
			Help: "コレクション変更操作の回数（種別別）",
		}, []string{"kind"}),
		activityPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamevault_activity_pruned_total",
			Help: "保持期間を過ぎて削除されたアクティビティ数",
		}),
	}

	reg.MustRegister(
		c.metadataRequests,
		c.metadataLatency,
		c.tokenExchanges,
		c.httpStatus,
		c.responses,
		c.backfillUpdated,
		c.backfillFailed,
		c.mutations,
		c.activityPruned,
	)

	return c
}

// RecordMetadataRequest はゲーム情報APIの呼び出し結果を記録する。
func (c *Collector) RecordMetadataRequest(endpoint, outcome string) {
	c.metadataRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordMetadataLatency はゲーム情報API呼び出しのレイテンシを記録する。
func (c *Collector) RecordMetadataLatency(endpoint string, duration time.Duration) {
	c.metadataLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordTokenExchange はアクセストークン取得の結果を記録する。
func (c *Collector) RecordTokenExchange(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.tokenExchanges.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はゲーム情報APIのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordResponse はAPIサーバーが返したレスポンスを記録する。
func (c *Collector) RecordResponse(method string, statusCode int) {
	c.responses.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordBackfill はカバーアート補完の結果を記録する。
func (c *Collector) RecordBackfill(updated, failed int) {
	c.backfillUpdated.Add(float64(updated))
	c.backfillFailed.Add(float64(failed))
}

// RecordMutation はコレクション変更操作を記録する。
func (c *Collector) RecordMutation(kind string) {
	c.mutations.WithLabelValues(kind).Inc()
}

// RecordActivityPruned は削除されたアクティビティ数を記録する。
func (c *Collector) RecordActivityPruned(count int64) {
	c.activityPruned.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。メトリクスが不要なテストやCLIで使う。
type Nop struct{}

func (Nop) RecordMetadataRequest(string, string) {}
func (Nop) RecordMetadataLatency(string, time.Duration) {}
func (Nop) RecordTokenExchange(bool) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordResponse(string, int) {}
func (Nop) RecordBackfill(int, int) {}
func (Nop) RecordMutation(string) {}
func (Nop) RecordActivityPruned(int64) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
