package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveRun("transit", 25*time.Millisecond, 2, 140, 7)

	if got := testutil.ToFloat64(collector.LightCurves.WithLabelValues("transit")); got != 1 {
		t.Fatalf("spotsim_light_curves_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.TransitEvents); got != 2 {
		t.Fatalf("spotsim_transit_events_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.OverlapEvaluations); got != 140 {
		t.Fatalf("spotsim_overlap_evaluations_total = %v, want 140", got)
	}
	if got := testutil.ToFloat64(collector.SpotCount); got != 7 {
		t.Fatalf("spotsim_spots = %v, want 7", got)
	}

	if count := histogramSampleCount(t, reg, "spotsim_light_curve_duration_seconds", map[string]string{
		"mode": "transit",
	}); count != 1 {
		t.Fatalf("spotsim_light_curve_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestObserveRunOnNilCollectorIsSafe(t *testing.T) {
	var collector *EngineCollector
	collector.ObserveRun("rotation", time.Second, 0, 0, 0)
}

func TestDuplicateRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("first NewEngineCollector: %v", err)
	}
	second, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}

	first.ObserveRun("rotation", time.Millisecond, 0, 10, 1)
	second.ObserveRun("rotation", time.Millisecond, 0, 15, 1)

	if got := testutil.ToFloat64(second.OverlapEvaluations); got != 25 {
		t.Fatalf("shared counter = %v, want 25 across both collectors", got)
	}
}

func TestMetricsHandlerExposesEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.ObserveRun("rotation", 5*time.Millisecond, 0, 32, 3)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"spotsim_light_curves_total",
		"spotsim_light_curve_duration_seconds",
		"spotsim_transit_events_total",
		"spotsim_overlap_evaluations_total",
		"spotsim_spots",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
