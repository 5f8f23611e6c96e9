package core

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/starspot-simulator/internal/logging"
	"github.com/signalsfoundry/starspot-simulator/model"
)

// ActiveStarConfig describes an accumulating spot-population star.
type ActiveStarConfig struct {
	LimbDarkening  LimbDarkening
	RotationPeriod float64 // days
	Inclination    float64 // radians
	Times          []float64
	// NChannels fixes the number of contrast channels (wavelength bins).
	// Zero lets the first added spectrum define it; scalar-contrast spots
	// default it to 1.
	NChannels int
	Estimator OverlapEstimator
	Logger    logging.Logger
}

// ActiveStar is the growable counterpart of Star: spots are appended
// incrementally, each carrying its own contrast: a scalar, or one value
// per wavelength channel so a single population yields chromatic light
// curves. Spot parameters are held as parallel arrays keyed by spot index;
// AddSpot validates ranges and shape compatibility before appending.
type ActiveStar struct {
	ld             LimbDarkening
	rotationPeriod float64
	inclination    float64
	times          []float64

	lon, lat, rad []float64
	contrast      [][]float64 // (nSpots, nChannels)
	nChannels     int

	f0        float64
	estimator OverlapEstimator
	log       logging.Logger
	tracer    trace.Tracer
}

// NewActiveStar builds an empty active star.
func NewActiveStar(cfg ActiveStarConfig) (*ActiveStar, error) {
	if !(cfg.RotationPeriod > 0) {
		return nil, &model.DomainError{
			Param: "rotation_period", Value: cfg.RotationPeriod,
			Msg: "rotation period must be positive",
		}
	}
	f0 := cfg.LimbDarkening.TotalFlux()
	if math.IsNaN(f0) || f0 <= 0 {
		return nil, &model.DomainError{
			Param: "u_ld", Value: f0,
			Msg: "limb-darkening pair yields a non-positive total flux",
		}
	}
	est := cfg.Estimator
	if est == nil {
		est = NewExactOverlap()
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	return &ActiveStar{
		ld:             cfg.LimbDarkening,
		rotationPeriod: cfg.RotationPeriod,
		inclination:    cfg.Inclination,
		times:          append([]float64(nil), cfg.Times...),
		nChannels:      cfg.NChannels,
		f0:             f0,
		estimator:      est,
		log:            log,
		tracer:         otel.Tracer(tracerName),
	}, nil
}

// NSpots returns the number of accumulated spots.
func (a *ActiveStar) NSpots() int { return len(a.lon) }

// NChannels returns the number of contrast channels, or 0 before the first
// spot fixes it.
func (a *ActiveStar) NChannels() int { return a.nChannels }

// AddSpot appends one spot whose scalar contrast is broadcast across every
// contrast channel.
func (a *ActiveStar) AddSpot(lon, lat, rad, contrast float64) error {
	n := a.nChannels
	if n == 0 {
		n = 1
	}
	row := make([]float64, n)
	for i := range row {
		row[i] = contrast
	}
	return a.AddSpotSpectrum(lon, lat, rad, row)
}

// AddSpotSpectrum appends one spot with a per-channel contrast row. The row
// width must match the star's channel count; the first spot fixes the count
// when the configuration left it open.
func (a *ActiveStar) AddSpotSpectrum(lon, lat, rad float64, contrast []float64) error {
	probe := &model.SpotSet{}
	if err := probe.AddSpot(lon, lat, rad); err != nil {
		return err
	}
	if len(contrast) == 0 {
		return &model.ConfigurationError{Msg: "spot contrast row is empty"}
	}
	if a.nChannels == 0 {
		a.nChannels = len(contrast)
	} else if len(contrast) != a.nChannels {
		return &model.ConfigurationError{
			Msg: fmt.Sprintf("contrast row has %d channels, star has %d", len(contrast), a.nChannels),
		}
	}
	for _, c := range contrast {
		if math.IsNaN(c) || c < 0 || c > 1 {
			return &model.DomainError{Param: "contrast", Value: c, Msg: "spot contrast must be in [0, 1]"}
		}
	}
	a.lon = append(a.lon, lon)
	a.lat = append(a.lat, lat)
	a.rad = append(a.rad, rad)
	a.contrast = append(a.contrast, append([]float64(nil), contrast...))
	return nil
}

// RotationModel returns the out-of-transit flux versus time and contrast
// channel, with rotational phase zero at t0. Shape: (n_times, n_channels).
func (a *ActiveStar) RotationModel(ctx context.Context, t0 float64) ([][]float64, error) {
	if len(a.times) == 0 {
		return nil, &model.ConfigurationError{Msg: "active star has no observation times"}
	}
	_, span := a.tracer.Start(ctx, "activestar.rotation_model", trace.WithAttributes(
		attribute.Int("spots", a.NSpots()),
		attribute.Int("channels", a.channelsOrOne()),
	))
	defer span.End()

	proj := a.project(t0, 0)
	deficit := rotationalDeficitSpectral(proj, a.ld, a.contrastAt, a.channelsOrOne())

	flux := make([][]float64, len(a.times))
	for t := range flux {
		row := make([]float64, a.channelsOrOne())
		for ch := range row {
			row[ch] = 1 - deficit[t][ch]/a.f0
		}
		flux[t] = row
	}
	return flux, nil
}

// TransitLightCurve combines the rotational modulation with the transit of
// the supplied planet, correcting λ_e channel by channel when the planet
// occults a spot. The star's own time grid drives the computation.
// Shape: (n_times, n_channels).
func (a *ActiveStar) TransitLightCurve(ctx context.Context, planet model.Planet, tm TransitModel) ([][]float64, error) {
	if len(a.times) == 0 {
		return nil, &model.ConfigurationError{Msg: "active star has no observation times"}
	}
	if tm == nil {
		return nil, &model.ConfigurationError{Msg: "transit model is required"}
	}
	if err := planet.Validate(); err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "activestar.transit_light_curve", trace.WithAttributes(
		attribute.Int("spots", a.NSpots()),
		attribute.Int("channels", a.channelsOrOne()),
	))
	defer span.End()

	proj := a.project(planet.T0, planet.Lambda)
	deficit := rotationalDeficitSpectral(proj, a.ld, a.contrastAt, a.channelsOrOne())

	lambdaE, err := tm.FluxLoss(a.times)
	if err != nil {
		return nil, fmt.Errorf("transit model flux loss: %w", err)
	}
	pos, err := tm.Positions(a.times)
	if err != nil {
		return nil, fmt.Errorf("transit model positions: %w", err)
	}
	if len(lambdaE) != len(a.times) || len(pos) != len(a.times) {
		return nil, &model.ConfigurationError{
			Msg: fmt.Sprintf("transit model returned %d flux and %d position samples for %d times",
				len(lambdaE), len(pos), len(a.times)),
		}
	}

	corr, events, evals := occultationCorrections(proj, pos, occultationConfig{
		estimator: a.estimator,
		ld:        a.ld,
		radius:    planet.Radius,
		contrast:  a.contrastAt,
		nChannels: a.channelsOrOne(),
	})
	span.SetAttributes(
		attribute.Int("transit_events", events),
		attribute.Int("overlap_evaluations", evals),
	)

	flux := make([][]float64, len(a.times))
	for t := range flux {
		row := make([]float64, a.channelsOrOne())
		for ch := range row {
			row[ch] = 1 - deficit[t][ch]/a.f0 - (lambdaE[t] - corr[t][ch])
		}
		flux[t] = row
	}
	return flux, nil
}

// project computes the single-realization projection of the accumulated
// spots over the star's time grid.
func (a *ActiveStar) project(t0, misalignment float64) [][]ProjectedSpot {
	spots := &model.SpotSet{}
	for i := range a.lon {
		// Parameters were validated on AddSpot.
		_ = spots.AddSpot(a.lon[i], a.lat[i], a.rad[i])
	}
	phases := make([]float64, len(a.times))
	for i, t := range a.times {
		phases[i] = 2 * math.Pi * (t - t0) / a.rotationPeriod
	}
	proj := projectSpots(spots, []float64{a.inclination}, phases, misalignment)
	out := make([][]ProjectedSpot, len(proj))
	for t := range proj {
		out[t] = make([]ProjectedSpot, len(proj[t]))
		for i := range proj[t] {
			out[t][i] = proj[t][i][0]
		}
	}
	return out
}

func (a *ActiveStar) contrastAt(spot, channel int) float64 {
	return a.contrast[spot][channel]
}

func (a *ActiveStar) channelsOrOne() int {
	if a.nChannels == 0 {
		return 1
	}
	return a.nChannels
}
