package model

import "math"

// Planet holds the orbital parameters of a single transiting planet. The
// planet is consumed by the light-curve engine, never mutated.
//
// Distances are in units of the stellar radius, times and periods in days,
// angles in radians. T0 is the mid-transit reference epoch. Lambda is the
// sky-projected spin-orbit misalignment between the stellar spin axis and
// the orbit normal (0 for an aligned orbit).
type Planet struct {
	Period        float64
	SemiMajorAxis float64
	Radius        float64
	Inc           float64
	Ecc           float64
	Omega         float64
	T0            float64
	Lambda        float64
}

// Validate checks the orbital parameters against their physical ranges.
func (p Planet) Validate() error {
	if !(p.Period > 0) {
		return &DomainError{Param: "period", Value: p.Period, Msg: "orbital period must be positive"}
	}
	if !(p.SemiMajorAxis > 0) {
		return &DomainError{Param: "semi_major_axis", Value: p.SemiMajorAxis, Msg: "semi-major axis must be positive"}
	}
	if !(p.Radius > 0) {
		return &DomainError{Param: "radius", Value: p.Radius, Msg: "planet radius must be positive"}
	}
	if p.Ecc < 0 || p.Ecc >= 1 {
		return &DomainError{Param: "ecc", Value: p.Ecc, Msg: "eccentricity must be in [0, 1)"}
	}
	if math.IsNaN(p.Inc) || p.Inc < 0 || p.Inc > math.Pi {
		return &DomainError{Param: "inc", Value: p.Inc, Msg: "orbital inclination must be in [0, π]"}
	}
	return nil
}
