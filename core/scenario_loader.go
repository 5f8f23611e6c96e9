// core/scenario_loader.go
package core

import (
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-yaml"

	"github.com/signalsfoundry/starspot-simulator/model"
)

// Scenario is a fully parsed observation scenario: the star, its spot
// population, the viewing geometry, and optionally a transiting planet with
// an observation time grid.
type Scenario struct {
	Star         StarConfig
	Spots        *model.SpotSet
	Inclinations []float64 // radians
	Planet       *model.Planet
	Times        []float64
	Overlap      OverlapChoice
}

// OverlapChoice selects the overlap strategy named in the scenario file.
type OverlapChoice struct {
	Strategy string // "exact" (default) or "montecarlo"
	Samples  int
	Seed     int64
}

// Internal YAML shapes - kept unexported so the wire format can evolve
// independently of the engine types. Angles are degrees on the wire and
// radians in the engine.
type scenarioYAML struct {
	Star struct {
		SpotContrast       float64   `yaml:"spot_contrast"`
		LimbDarkening      []float64 `yaml:"limb_darkening"`
		NPhases            int       `yaml:"n_phases"`
		PhasesDeg          []float64 `yaml:"phases_deg"`
		RotationPeriodDays float64   `yaml:"rotation_period_days"`
	} `yaml:"star"`
	Spots []struct {
		LonDeg float64 `yaml:"lon_deg"`
		LatDeg float64 `yaml:"lat_deg"`
		Rad    float64 `yaml:"rad"`
	} `yaml:"spots"`
	InclinationsDeg []float64   `yaml:"inclinations_deg"`
	Planet          *planetYAML `yaml:"planet"`
	Times           *timesYAML  `yaml:"times"`
	Overlap         struct {
		Strategy string `yaml:"strategy"`
		Samples  int    `yaml:"samples"`
		Seed     int64  `yaml:"seed"`
	} `yaml:"overlap"`
}

type planetYAML struct {
	PeriodDays      float64 `yaml:"period_days"`
	SemiMajorAxis   float64 `yaml:"semi_major_axis"`
	Radius          float64 `yaml:"radius"`
	InclinationDeg  float64 `yaml:"inclination_deg"`
	Eccentricity    float64 `yaml:"eccentricity"`
	ArgPeriapsisDeg float64 `yaml:"arg_periapsis_deg"`
	T0              float64 `yaml:"t0"`
	LambdaDeg       float64 `yaml:"lambda_deg"`
}

type timesYAML struct {
	Values []float64 `yaml:"values"`
	Start  float64   `yaml:"start"`
	End    float64   `yaml:"end"`
	N      int       `yaml:"n"`
}

// LoadScenario reads a YAML scenario from r and converts it into engine
// types. It fails on structural and unit errors; range validation of the
// converted values happens at the light-curve API boundary, the same way
// directly constructed inputs are treated.
func LoadScenario(r io.Reader) (*Scenario, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var wire scenarioYAML
	if err := yaml.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	sc := &Scenario{}

	if n := len(wire.Star.LimbDarkening); n != 2 {
		return nil, fmt.Errorf("star.limb_darkening must have exactly 2 coefficients, got %d", n)
	}
	sc.Star = StarConfig{
		SpotContrast: wire.Star.SpotContrast,
		LimbDarkening: LimbDarkening{
			U1: wire.Star.LimbDarkening[0],
			U2: wire.Star.LimbDarkening[1],
		},
		NPhases:        wire.Star.NPhases,
		RotationPeriod: wire.Star.RotationPeriodDays,
	}
	if len(wire.Star.PhasesDeg) > 0 {
		sc.Star.Phases = degSlice(wire.Star.PhasesDeg)
	}

	sc.Spots = &model.SpotSet{}
	for i, sp := range wire.Spots {
		if err := sc.Spots.AddSpot(deg(sp.LonDeg), deg(sp.LatDeg), sp.Rad); err != nil {
			return nil, fmt.Errorf("spot %d: %w", i, err)
		}
	}

	if len(wire.InclinationsDeg) == 0 {
		return nil, fmt.Errorf("at least one entry in inclinations_deg is required")
	}
	sc.Inclinations = degSlice(wire.InclinationsDeg)

	if wire.Planet != nil {
		sc.Planet = &model.Planet{
			Period:        wire.Planet.PeriodDays,
			SemiMajorAxis: wire.Planet.SemiMajorAxis,
			Radius:        wire.Planet.Radius,
			Inc:           deg(wire.Planet.InclinationDeg),
			Ecc:           wire.Planet.Eccentricity,
			Omega:         deg(wire.Planet.ArgPeriapsisDeg),
			T0:            wire.Planet.T0,
			Lambda:        deg(wire.Planet.LambdaDeg),
		}
	}

	if wire.Times != nil {
		switch {
		case len(wire.Times.Values) > 0:
			sc.Times = append([]float64(nil), wire.Times.Values...)
		case wire.Times.N > 1 && wire.Times.End > wire.Times.Start:
			sc.Times = make([]float64, wire.Times.N)
			step := (wire.Times.End - wire.Times.Start) / float64(wire.Times.N-1)
			for i := range sc.Times {
				sc.Times[i] = wire.Times.Start + float64(i)*step
			}
		default:
			return nil, fmt.Errorf("times must carry either values or start/end/n")
		}
	}
	if sc.Planet != nil && sc.Times == nil {
		return nil, fmt.Errorf("a planet requires an observation time grid")
	}

	sc.Overlap = OverlapChoice{
		Strategy: wire.Overlap.Strategy,
		Samples:  wire.Overlap.Samples,
		Seed:     wire.Overlap.Seed,
	}
	switch sc.Overlap.Strategy {
	case "", "exact", "montecarlo":
	default:
		return nil, fmt.Errorf("unknown overlap strategy %q", sc.Overlap.Strategy)
	}

	return sc, nil
}

func deg(d float64) float64 { return d * math.Pi / 180 }

func degSlice(ds []float64) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = deg(d)
	}
	return out
}
