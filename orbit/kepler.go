// Package orbit implements the Keplerian primitives consumed by the
// light-curve assembler: the mean-to-true anomaly conversion and the
// transit-only model (spot-free flux loss plus sky-projected planet
// positions).
package orbit

import (
	"math"

	"github.com/signalsfoundry/starspot-simulator/model"
)

// keplerTol is the convergence tolerance on the eccentric anomaly.
const keplerTol = 1e-12

// SolveKepler inverts Kepler's equation M = E - e·sin(E) for the eccentric
// anomaly E, by Newton-Raphson iteration. The eccentricity must be in
// [0, 1); circular orbits return E == M immediately.
func SolveKepler(meanAnomaly, ecc float64) (float64, error) {
	if ecc < 0 || ecc >= 1 || math.IsNaN(ecc) {
		return 0, &model.DomainError{Param: "ecc", Value: ecc, Msg: "eccentricity must be in [0, 1)"}
	}
	if ecc == 0 {
		return meanAnomaly, nil
	}

	e := meanAnomaly + ecc*math.Sin(meanAnomaly)
	for i := 0; i < 50; i++ {
		delta := (e - ecc*math.Sin(e) - meanAnomaly) / (1 - ecc*math.Cos(e))
		e -= delta
		if math.Abs(delta) < keplerTol {
			break
		}
	}
	return e, nil
}

// TrueAnomaly converts a mean anomaly to the true anomaly via the eccentric
// anomaly half-angle identity.
func TrueAnomaly(meanAnomaly, ecc float64) (float64, error) {
	e, err := SolveKepler(meanAnomaly, ecc)
	if err != nil {
		return 0, err
	}
	sinHalf, cosHalf := math.Sincos(e / 2)
	return 2 * math.Atan2(math.Sqrt(1+ecc)*sinHalf, math.Sqrt(1-ecc)*cosHalf), nil
}
