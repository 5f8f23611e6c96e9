package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the light-curve engine and
// provides a ready-made /metrics handler for long ensemble runs.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	LightCurves        *prometheus.CounterVec
	Durations          *prometheus.HistogramVec
	TransitEvents      prometheus.Counter
	OverlapEvaluations prometheus.Counter
	SpotCount          prometheus.Gauge
}

// NewEngineCollector registers the engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lightCurves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spotsim_light_curves_total",
		Help: "Total number of assembled light curves, labeled by mode (rotation or transit).",
	}, []string{"mode"})
	lightCurves, err := registerCounterVec(reg, lightCurves, "spotsim_light_curves_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spotsim_light_curve_duration_seconds",
		Help:    "Light-curve assembly latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
	}, []string{"mode"})
	durations, err = registerHistogramVec(reg, durations, "spotsim_light_curve_duration_seconds")
	if err != nil {
		return nil, err
	}

	transitEvents, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotsim_transit_events_total",
		Help: "Total number of transit events processed by the occultation engine.",
	}), "spotsim_transit_events_total")
	if err != nil {
		return nil, err
	}

	overlapEvals, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spotsim_overlap_evaluations_total",
		Help: "Total number of planet-spot overlap evaluations.",
	}), "spotsim_overlap_evaluations_total")
	if err != nil {
		return nil, err
	}

	spotCount, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spotsim_spots",
		Help: "Number of spots in the most recently computed scenario.",
	}), "spotsim_spots")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:           gatherer,
		LightCurves:        lightCurves,
		Durations:          durations,
		TransitEvents:      transitEvents,
		OverlapEvaluations: overlapEvals,
		SpotCount:          spotCount,
	}, nil
}

// ObserveRun records one completed light-curve computation.
func (c *EngineCollector) ObserveRun(mode string, d time.Duration, transitEvents, overlapEvals, spots int) {
	if c == nil {
		return
	}
	if c.LightCurves != nil {
		c.LightCurves.WithLabelValues(mode).Inc()
	}
	if c.Durations != nil {
		c.Durations.WithLabelValues(mode).Observe(d.Seconds())
	}
	if c.TransitEvents != nil {
		c.TransitEvents.Add(float64(transitEvents))
	}
	if c.OverlapEvaluations != nil {
		c.OverlapEvaluations.Add(float64(overlapEvals))
	}
	if c.SpotCount != nil {
		c.SpotCount.Set(float64(spots))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
