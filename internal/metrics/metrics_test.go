package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は指定名のメトリクスファミリーを返す。見つからない場合はnil。
func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

// labelValue は指定ラベルの値を返す。
func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordUpstreamRequest_CountsByRouteAndOutcome は転送数がルートと結果ごとに数えられることを検証する。
func TestRecordUpstreamRequest_CountsByRouteAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpstreamRequest("weather", OutcomeOK)
	c.RecordUpstreamRequest("weather", OutcomeOK)
	c.RecordUpstreamRequest("spots", OutcomeNetworkError)

	mf := findMetric(t, reg, "travelboard_upstream_requests_total")
	if mf == nil {
		t.Fatal("travelboard_upstream_requests_total metric not found")
	}
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		route := labelValue(m, "route")
		outcome := labelValue(m, "outcome")
		val := m.GetCounter().GetValue()
		switch {
		case route == "weather" && outcome == OutcomeOK:
			if val != 2 {
				t.Errorf("weather/ok = %v, want 2", val)
			}
		case route == "spots" && outcome == OutcomeNetworkError:
			if val != 1 {
				t.Errorf("spots/network_error = %v, want 1", val)
			}
		default:
			t.Errorf("unexpected labels: route=%s outcome=%s", route, outcome)
		}
	}
}

// TestRecordUpstreamLatency_ObservesHistogram はレイテンシがヒストグラムに記録されることを検証する。
func TestRecordUpstreamLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpstreamLatency("exchange-rates", 150*time.Millisecond)
	c.RecordUpstreamLatency("exchange-rates", 250*time.Millisecond)

	mf := findMetric(t, reg, "travelboard_upstream_latency_seconds")
	if mf == nil {
		t.Fatal("travelboard_upstream_latency_seconds metric not found")
	}
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if sum := h.GetSampleSum(); sum < 0.39 || sum > 0.41 {
		t.Errorf("sample sum = %v, want ≈0.4", sum)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(502)

	mf := findMetric(t, reg, "travelboard_upstream_http_status_total")
	if mf == nil {
		t.Fatal("travelboard_upstream_http_status_total metric not found")
	}
	for _, m := range mf.GetMetric() {
		val := m.GetCounter().GetValue()
		switch labelValue(m, "status_code") {
		case "200":
			if val != 2 {
				t.Errorf("status_code=200 = %v, want 2", val)
			}
		case "502":
			if val != 1 {
				t.Errorf("status_code=502 = %v, want 1", val)
			}
		default:
			t.Errorf("unexpected label: %v", m.GetLabel())
		}
	}
}

// TestRecordTranslation_IncrementsCounter は翻訳結果カウンタが増加することを検証する。
func TestRecordTranslation_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTranslation(OutcomeOK)
	c.RecordTranslation(OutcomeRejected)
	c.RecordTranslation(OutcomeRejected)

	mf := findMetric(t, reg, "travelboard_translations_total")
	if mf == nil {
		t.Fatal("travelboard_translations_total metric not found")
	}
	for _, m := range mf.GetMetric() {
		val := m.GetCounter().GetValue()
		switch labelValue(m, "outcome") {
		case OutcomeOK:
			if val != 1 {
				t.Errorf("ok = %v, want 1", val)
			}
		case OutcomeRejected:
			if val != 2 {
				t.Errorf("rejected = %v, want 2", val)
			}
		}
	}
}

// TestRecordRateLimited_IncrementsCounter はレート制限カウンタが増加することを検証する。
func TestRecordRateLimited_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRateLimited("translate")

	mf := findMetric(t, reg, "travelboard_rate_limited_total")
	if mf == nil {
		t.Fatal("travelboard_rate_limited_total metric not found")
	}
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 1 {
		t.Errorf("rate_limited_total = %v, want 1", val)
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同じレジストリへの二重登録がパニックすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

// TestNopCollector_DoesNotPanic はNopCollectorが何もしないことを検証する。
func TestNopCollector_DoesNotPanic(t *testing.T) {
	var c MetricsCollector = NopCollector{}
	c.RecordUpstreamRequest("weather", OutcomeOK)
	c.RecordUpstreamLatency("weather", time.Second)
	c.RecordHTTPStatus(200)
	c.RecordTranslation(OutcomeOK)
	c.RecordRateLimited("general")
}
