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

const tracerName = "github.com/signalsfoundry/starspot-simulator/core"

// StarConfig describes a star (or an ensemble of identically-spotted stars)
// prior to construction.
type StarConfig struct {
	// SpotContrast is the relative brightness of spots versus the
	// photosphere: 0 is perfectly dark, 1 indistinguishable.
	SpotContrast float64
	// LimbDarkening holds the quadratic law coefficients.
	LimbDarkening LimbDarkening
	// Phases fixes the rotational phases (radians) for out-of-transit light
	// curves. When nil and NPhases > 0, NPhases phases are spaced evenly
	// over [0, 2π).
	Phases  []float64
	NPhases int
	// RotationPeriod (days) converts observation times into rotational
	// phases when a transiting planet supplies a time grid.
	RotationPeriod float64
	// Estimator selects the planet-spot overlap strategy. Defaults to the
	// exact polygon-clipping estimator.
	Estimator OverlapEstimator
	// Logger receives numerical warnings and per-run diagnostics.
	Logger logging.Logger
}

// Star is the immutable light-curve engine for a fixed spot contrast and
// limb-darkening law. The baseline disk flux f0 is integrated once at
// construction; everything else is recomputed per call.
type Star struct {
	contrast       float64
	ld             LimbDarkening
	phases         []float64
	rotationPeriod float64
	f0             float64
	estimator      OverlapEstimator
	log            logging.Logger
	tracer         trace.Tracer
}

// NewStar validates the configuration and precomputes the baseline flux.
func NewStar(cfg StarConfig) (*Star, error) {
	if cfg.SpotContrast < 0 || cfg.SpotContrast > 1 || math.IsNaN(cfg.SpotContrast) {
		return nil, &model.DomainError{
			Param: "spot_contrast", Value: cfg.SpotContrast,
			Msg: "spot contrast must be in [0, 1]",
		}
	}
	phases := cfg.Phases
	if phases == nil && cfg.NPhases > 0 {
		phases = make([]float64, cfg.NPhases)
		for i := range phases {
			phases[i] = 2 * math.Pi * float64(i) / float64(cfg.NPhases)
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
	return &Star{
		contrast:       cfg.SpotContrast,
		ld:             cfg.LimbDarkening,
		phases:         phases,
		rotationPeriod: cfg.RotationPeriod,
		f0:             f0,
		estimator:      est,
		log:            log,
		tracer:         otel.Tracer(tracerName),
	}, nil
}

// F0 returns the total baseline disk flux of the limb-darkened star.
func (s *Star) F0() float64 { return s.f0 }

// LimbDarkening returns the star's limb-darkening coefficients.
func (s *Star) LimbDarkening() LimbDarkening { return s.ld }

// LightCurveResult carries the assembled flux series plus occultation
// statistics for observability.
type LightCurveResult struct {
	// Flux has one row per phase or time sample and one column per stellar
	// inclination realization.
	Flux [][]float64

	TransitEvents      int
	OverlapEvaluations int
}

// LightCurve assembles the observed flux series for the spot population seen
// at the given stellar inclinations (radians).
//
// Without a transit the star's phase grid drives the rotation and the result
// has shape (n_phases, n_inclinations). With a transit the observation times
// drive both the rotation and the planet's orbit, the result has shape
// (n_times, 1), and supplying more than one inclination is a
// ConfigurationError: transit geometry is single-star only.
func (s *Star) LightCurve(ctx context.Context, spots *model.SpotSet, incStellar []float64, transit *TransitConfig) (*LightCurveResult, error) {
	if spots == nil {
		spots = &model.SpotSet{}
	}
	if err := s.checkShapes(spots, incStellar, transit); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "star.light_curve", trace.WithAttributes(
		attribute.Int("spots", spots.NSpots()),
		attribute.Int("realizations", len(incStellar)),
		attribute.Bool("transit", transit != nil),
	))
	defer span.End()

	var (
		phases       []float64
		misalignment float64
	)
	if transit == nil {
		phases = s.phases
	} else {
		phases = make([]float64, len(transit.Times))
		for i, t := range transit.Times {
			phases[i] = 2 * math.Pi * (t - transit.Planet.T0) / s.rotationPeriod
		}
		misalignment = transit.Planet.Lambda
	}

	proj := projectSpots(spots, incStellar, phases, misalignment)
	deficit := rotationalDeficit(proj, s.ld, s.contrast, len(incStellar))

	res := &LightCurveResult{}
	lambdaE := make([]float64, len(phases))
	if transit != nil {
		var err error
		lambdaE, res.TransitEvents, res.OverlapEvaluations, err = s.transitCorrection(ctx, proj, transit)
		if err != nil {
			return nil, err
		}
	}

	res.Flux = make([][]float64, len(phases))
	for t := range res.Flux {
		row := make([]float64, len(incStellar))
		for j := range row {
			row[j] = 1 - deficit[t][j]/s.f0 - lambdaE[t]
		}
		res.Flux[t] = row
	}

	span.SetAttributes(
		attribute.Int("transit_events", res.TransitEvents),
		attribute.Int("overlap_evaluations", res.OverlapEvaluations),
	)
	return res, nil
}

// transitCorrection evaluates the external transit model and subtracts the
// largest concurrent spot-occultation correction from λ_e at each time.
func (s *Star) transitCorrection(ctx context.Context, proj [][][]ProjectedSpot, transit *TransitConfig) ([]float64, int, int, error) {
	_, span := s.tracer.Start(ctx, "star.occultations")
	defer span.End()

	lambdaE, err := transit.Model.FluxLoss(transit.Times)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("transit model flux loss: %w", err)
	}
	pos, err := transit.Model.Positions(transit.Times)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("transit model positions: %w", err)
	}
	if len(lambdaE) != len(transit.Times) || len(pos) != len(transit.Times) {
		return nil, 0, 0, &model.ConfigurationError{
			Msg: fmt.Sprintf("transit model returned %d flux and %d position samples for %d times",
				len(lambdaE), len(pos), len(transit.Times)),
		}
	}

	// Flatten to the single transiting realization.
	single := make([][]ProjectedSpot, len(proj))
	for t := range proj {
		single[t] = make([]ProjectedSpot, len(proj[t]))
		for i := range proj[t] {
			single[t][i] = proj[t][i][0]
		}
	}

	contrast := s.contrast
	corr, events, evals := occultationCorrections(single, pos, occultationConfig{
		estimator: s.estimator,
		ld:        s.ld,
		radius:    transit.Planet.Radius,
		contrast:  func(int, int) float64 { return contrast },
		nChannels: 1,
	})

	out := make([]float64, len(lambdaE))
	for t := range lambdaE {
		out[t] = lambdaE[t] - corr[t][0]
	}
	return out, events, evals, nil
}

// DiskSnapshot projects the spot population at a single rotational phase for
// one inclination. It is a read-only query for plotting and reporting
// collaborators and takes no part in the flux computation.
func (s *Star) DiskSnapshot(spots *model.SpotSet, incStellar, phase, misalignment float64) ([]ProjectedSpot, error) {
	if spots == nil {
		spots = &model.SpotSet{}
	}
	if err := spots.Validate(); err != nil {
		return nil, err
	}
	proj := projectSpots(spots, []float64{incStellar}, []float64{phase}, misalignment)
	out := make([]ProjectedSpot, spots.NSpots())
	for i := range proj[0] {
		out[i] = proj[0][i][0]
	}
	return out, nil
}

func (s *Star) checkShapes(spots *model.SpotSet, incStellar []float64, transit *TransitConfig) error {
	if err := spots.Validate(); err != nil {
		return err
	}
	if len(incStellar) == 0 {
		return &model.ConfigurationError{Msg: "at least one stellar inclination is required"}
	}
	if n := spots.NRealizations(); n > 1 && n != len(incStellar) {
		return &model.ConfigurationError{
			Msg: fmt.Sprintf("spot set has %d realization columns but %d inclinations were supplied",
				n, len(incStellar)),
		}
	}
	if transit == nil {
		if len(s.phases) == 0 {
			return &model.ConfigurationError{Msg: "star has no phase grid; set Phases or NPhases"}
		}
		return nil
	}
	if len(incStellar) != 1 {
		return &model.ConfigurationError{
			Msg: "transiting planets are supported for single stars only, but multiple stellar inclinations were supplied",
		}
	}
	if transit.Model == nil {
		return &model.ConfigurationError{Msg: "transit config has no transit model"}
	}
	if len(transit.Times) == 0 {
		return &model.ConfigurationError{Msg: "transit config has no observation times"}
	}
	if !(s.rotationPeriod > 0) {
		return &model.ConfigurationError{Msg: "a positive rotation period is required with a transiting planet"}
	}
	return transit.Planet.Validate()
}
