package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は名前とラベルが一致するメトリクスを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string)
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordMetadataRequest_LabelsByEndpointAndOutcome はエンドポイント・結果別に数えることを検証する。
func TestRecordMetadataRequest_LabelsByEndpointAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMetadataRequest("search", OutcomeOK)
	c.RecordMetadataRequest("search", OutcomeOK)
	c.RecordMetadataRequest("search", OutcomeUnavailable)

	ok := findMetric(t, reg, "gamevault_metadata_requests_total", map[string]string{"endpoint": "search", "outcome": "ok"})
	if v := ok.GetCounter().GetValue(); v != 2 {
		t.Errorf("ok = %v, want 2", v)
	}
	unavailable := findMetric(t, reg, "gamevault_metadata_requests_total", map[string]string{"endpoint": "search", "outcome": "unavailable"})
	if v := unavailable.GetCounter().GetValue(); v != 1 {
		t.Errorf("unavailable = %v, want 1", v)
	}
}

// TestRecordMetadataLatency_ObservesHistogram はレイテンシが記録されることを検証する。
func TestRecordMetadataLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMetadataLatency("top", 250*time.Millisecond)

	m := findMetric(t, reg, "gamevault_metadata_latency_seconds", map[string]string{"endpoint": "top"})
	if n := m.GetHistogram().GetSampleCount(); n != 1 {
		t.Errorf("sample count = %d, want 1", n)
	}
	if s := m.GetHistogram().GetSampleSum(); s != 0.25 {
		t.Errorf("sample sum = %v, want 0.25", s)
	}
}

// TestRecordTokenExchange はトークン取得の成否が別ラベルで数えられることを検証する。
func TestRecordTokenExchange(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenExchange(true)
	c.RecordTokenExchange(false)
	c.RecordTokenExchange(false)

	if v := findMetric(t, reg, "gamevault_token_exchanges_total", map[string]string{"result": "success"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("success = %v, want 1", v)
	}
	if v := findMetric(t, reg, "gamevault_token_exchanges_total", map[string]string{"result": "failure"}).GetCounter().GetValue(); v != 2 {
		t.Errorf("failure = %v, want 2", v)
	}
}

// TestRecordHTTPStatus はステータスコード別に数えることを検証する。
func TestRecordHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(401)

	if v := findMetric(t, reg, "gamevault_metadata_http_status_total", map[string]string{"status_code": "401"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("401 = %v, want 1", v)
	}
}

// TestRecordResponse はサーバーのレスポンスをメソッド・ステータス別に数えることを検証する。
func TestRecordResponse(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordResponse("GET", 200)
	c.RecordResponse("GET", 200)
	c.RecordResponse("POST", 404)

	if v := findMetric(t, reg, "gamevault_http_responses_total", map[string]string{"method": "GET", "status_code": "200"}).GetCounter().GetValue(); v != 2 {
		t.Errorf("GET 200 = %v, want 2", v)
	}
	if v := findMetric(t, reg, "gamevault_http_responses_total", map[string]string{"method": "POST", "status_code": "404"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("POST 404 = %v, want 1", v)
	}
}

// TestRecordBackfillAndMutations はバックフィル・変更操作・削除数のカウンタを検証する。
func TestRecordBackfillAndMutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBackfill(3, 1)
	c.RecordBackfill(2, 0)
	c.RecordMutation("toggle_sale")
	c.RecordActivityPruned(7)

	if v := findMetric(t, reg, "gamevault_backfill_updated_total", nil).GetCounter().GetValue(); v != 5 {
		t.Errorf("backfill updated = %v, want 5", v)
	}
	if v := findMetric(t, reg, "gamevault_backfill_failed_total", nil).GetCounter().GetValue(); v != 1 {
		t.Errorf("backfill failed = %v, want 1", v)
	}
	if v := findMetric(t, reg, "gamevault_collection_mutations_total", map[string]string{"kind": "toggle_sale"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("mutations = %v, want 1", v)
	}
	if v := findMetric(t, reg, "gamevault_activity_pruned_total", nil).GetCounter().GetValue(); v != 7 {
		t.Errorf("pruned = %v, want 7", v)
	}
}

// TestCollector_ImplementsInterface はインターフェースの実装を検証する。
func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
	var _ MetricsCollector = Nop{}
}
