package orbit

import (
	"math"

	"github.com/signalsfoundry/starspot-simulator/core"
	"github.com/signalsfoundry/starspot-simulator/internal/quadrature"
	"github.com/signalsfoundry/starspot-simulator/model"
)

// Model is the default implementation of core.TransitModel: a Keplerian
// orbit projected per Winn (2011) eqns 1-5, with the limb-darkened flux
// loss evaluated by direct integration of the occulted intensity.
//
// The mean anomaly is referenced to the mid-transit epoch T0, which is
// exact for ω = π/2 and a good approximation at the small eccentricities
// transit surveys deal in.
type Model struct {
	planet model.Planet
	ld     core.LimbDarkening
}

// NewModel validates the planet parameters and binds them to the star's
// limb-darkening law.
func NewModel(planet model.Planet, ld core.LimbDarkening) (*Model, error) {
	if err := planet.Validate(); err != nil {
		return nil, err
	}
	return &Model{planet: planet, ld: ld}, nil
}

// Positions returns the planet's orbital-frame position at each time. The
// observer sits at X → -∞: the planet is in front of the star iff X < 0.
// Y runs along the transit chord and Z carries the impact-parameter offset;
// both are in units of the stellar radius, shared with the sky plane of the
// projected spots.
func (m *Model) Positions(times []float64) ([]core.PlanetPosition, error) {
	p := m.planet
	out := make([]core.PlanetPosition, len(times))
	sinI, cosI := math.Sincos(p.Inc)
	for i, t := range times {
		meanAnomaly := 2 * math.Pi * (t - p.T0) / p.Period
		f, err := TrueAnomaly(meanAnomaly, p.Ecc)
		if err != nil {
			return nil, err
		}
		r := p.SemiMajorAxis * (1 - p.Ecc*p.Ecc) / (1 + p.Ecc*math.Cos(f))
		sinWF, cosWF := math.Sincos(p.Omega + f)
		out[i] = core.PlanetPosition{
			X: -r * sinWF * sinI,
			Y: -r * cosWF,
			Z: -r * sinWF * cosI,
		}
	}
	return out, nil
}

// FluxLoss returns λ_e(t): the fraction of the spotless limb-darkened disk
// flux hidden by the planet at each time. The quadratic law integrates to
// exactly 1 over the disk, so the occulted intensity integral is the
// fractional loss directly.
func (m *Model) FluxLoss(times []float64) ([]float64, error) {
	pos, err := m.Positions(times)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(times))
	for i, p := range pos {
		if !p.InFront() {
			continue
		}
		out[i] = m.occultedFlux(math.Hypot(p.Y, p.Z))
	}
	return out, nil
}

// occultedFlux integrates the stellar intensity over the planet-star
// overlap: ∫ I(r)·2α(r)·r dr across the covered radial band, where α(r) is
// the half-angle of the circle of radius r lying behind the planet disk.
func (m *Model) occultedFlux(d float64) float64 {
	rp := m.planet.Radius
	if d >= 1+rp {
		return 0
	}
	if d+1 <= rp {
		return 1 // star entirely behind the planet
	}

	lo := d - rp
	if lo < 0 {
		lo = 0
	}
	hi := d + rp
	if hi > 1 {
		hi = 1
	}

	intensity := func(r float64) float64 {
		v, _ := m.ld.Flux(r) // r stays within [0, 1] here
		return v
	}
	alpha := func(r float64) float64 {
		if d == 0 || r == 0 {
			if r < rp {
				return math.Pi
			}
			return 0
		}
		c := (d*d + r*r - rp*rp) / (2 * d * r)
		// Clamping covers the fully-inside (α=π) and fully-outside (α=0)
		// radial bands without branching.
		if c <= -1 {
			return math.Pi
		}
		if c >= 1 {
			return 0
		}
		return math.Acos(c)
	}

	return quadrature.AdaptiveSimpson(func(r float64) float64 {
		return intensity(r) * 2 * alpha(r) * r
	}, lo, hi, 1e-8)
}
