package core

import (
	"math"

	"github.com/signalsfoundry/starspot-simulator/internal/quadrature"
	"github.com/signalsfoundry/starspot-simulator/model"
)

// LimbDarkening holds the two coefficients of the quadratic limb-darkening
// law. The zero value is a uniform disk.
type LimbDarkening struct {
	U1, U2 float64
}

// Flux returns the specific intensity at normalized radius r under the
// quadratic law
//
//	I(r) = (1 - u1(1-μ) - u2(1-μ)²) / (1 - u1/3 - u2/6) / π,  μ = √(1-r²).
//
// The normalization makes the intensity integrate to exactly 1 over the
// stellar disk. The denominator does not depend on r, so the law is safe at
// the limb (r=1, μ=0). Radii outside the disk are a DomainError.
func (ld LimbDarkening) Flux(r float64) (float64, error) {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return 0, &model.DomainError{Param: "r", Value: r, Msg: "evaluation radius must be in [0, 1]"}
	}
	return ld.flux(r), nil
}

// NormalizedFlux returns Flux(r) divided by the central intensity Flux(0),
// so the disk centre is exactly 1.
func (ld LimbDarkening) NormalizedFlux(r float64) (float64, error) {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return 0, &model.DomainError{Param: "r", Value: r, Msg: "evaluation radius must be in [0, 1]"}
	}
	return ld.normalizedFlux(r), nil
}

// TotalFlux integrates 2π·r·NormalizedFlux(r) over the disk. The result is
// the baseline flux f0 used to normalize rotational spot deficits; it is
// computed once per Star at construction.
func (ld LimbDarkening) TotalFlux() float64 {
	return 2 * math.Pi * quadrature.AdaptiveSimpson(func(r float64) float64 {
		return r * ld.normalizedFlux(r)
	}, 0, 1, 1e-8)
}

func (ld LimbDarkening) flux(r float64) float64 {
	oneMinusMu := 1 - mu(r)
	return (1 - ld.U1*oneMinusMu - ld.U2*oneMinusMu*oneMinusMu) /
		(1 - ld.U1/3 - ld.U2/6) / math.Pi
}

func (ld LimbDarkening) normalizedFlux(r float64) float64 {
	return ld.flux(r) / ld.flux(0)
}

func mu(r float64) float64 {
	m := 1 - r*r
	if m < 0 {
		m = 0
	}
	return math.Sqrt(m)
}
