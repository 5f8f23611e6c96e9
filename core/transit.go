package core

import "github.com/signalsfoundry/starspot-simulator/model"

// PlanetPosition is the transiting planet's orbital-frame position at one
// instant. The observer sits at X → −∞ in this frame (note the opposite
// sense from the spot frame, following the orbital-elements convention):
// the planet is in front of the star iff X < 0. (Y, Z) is the planet centre
// in the same sky plane as the projected spot ellipses, with Y along the
// transit chord.
type PlanetPosition struct {
	X, Y, Z float64
}

// InFront reports whether the planet is between the star and the observer.
func (p PlanetPosition) InFront() bool { return p.X < 0 }

// TransitModel is the external transit-only primitive consumed by the
// light-curve assembler: the spot-free fractional flux loss λ_e and the
// planet's position at each time. The orbit package provides the default
// implementation.
type TransitModel interface {
	// FluxLoss returns λ_e(t), the fractional flux lost to the planet's
	// silhouette over a spotless limb-darkened disk, per time.
	FluxLoss(times []float64) ([]float64, error)
	// Positions returns the planet's orbital-frame position per time.
	Positions(times []float64) ([]PlanetPosition, error)
}

// TransitConfig attaches a transiting planet to a light-curve call.
type TransitConfig struct {
	Planet model.Planet
	Model  TransitModel
	Times  []float64 // observation times, days
}
