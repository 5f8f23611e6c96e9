package core

import (
	"math"

	"github.com/signalsfoundry/starspot-simulator/model"
)

// ProjectedSpot is a spot's observer-frame position and silhouette at one
// instant. Values are ephemeral: they are recomputed for every light-curve
// call and never cached across calls.
//
// Visible is the hemisphere mask (x > 0). Out-of-view spots keep their
// coordinates so array shapes survive broadcasting; consumers must honour
// the mask instead of dropping entries.
type ProjectedSpot struct {
	X, Y, Z float64
	Visible bool
	Ellipse Ellipse
}

// R returns the projected distance of the spot centre from the disk centre.
func (p ProjectedSpot) R() float64 {
	return math.Hypot(p.Y, p.Z)
}

// projectSpots converts the spot parameter matrices into observer-frame
// coordinates for every (phase, spot, realization) triple. Three rotations
// are composed, in this order, and the order must not change:
//
//  1. about the stellar spin axis by the rotation phase, so a spot at
//     longitude λ crosses the sub-observer meridian at phase θ = λ;
//  2. about the sky-plane y axis by (π/2 − inclination), tilting the pole
//     toward the observer as the inclination approaches pole-on;
//  3. about the line of sight by the spin-orbit misalignment angle.
//
// Spots with a single realization column are broadcast across every
// inclination. The result is indexed [phase][spot][realization].
func projectSpots(spots *model.SpotSet, incs []float64, phases []float64, misalignment float64) [][][]ProjectedSpot {
	nSpots := spots.NSpots()
	nReal := len(incs)
	broadcast := spots.NRealizations() == 1 && nReal > 1

	out := make([][][]ProjectedSpot, len(phases))
	for t, phase := range phases {
		out[t] = make([][]ProjectedSpot, nSpots)
		for i := 0; i < nSpots; i++ {
			out[t][i] = make([]ProjectedSpot, nReal)
			for j := 0; j < nReal; j++ {
				col := j
				if broadcast {
					col = 0
				}
				lon := spots.Lon[i][col]
				lat := spots.Lat[i][col]
				rad := spots.Rad[i][col]

				sinLat, cosLat := math.Sincos(lat)
				sinLon, cosLon := math.Sincos(lon - phase)
				v := Vec3{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}
				v = v.RotY(math.Pi/2 - incs[j])
				if misalignment != 0 {
					v = v.RotX(misalignment)
				}

				r := math.Hypot(v.Y, v.Z)
				out[t][i][j] = ProjectedSpot{
					X:       v.X,
					Y:       v.Y,
					Z:       v.Z,
					Visible: v.X > 0,
					Ellipse: Ellipse{
						Y:         v.Y,
						Z:         v.Z,
						SemiMajor: rad,
						SemiMinor: rad * mu(r),
						Angle:     math.Atan2(v.Z, v.Y),
					},
				}
			}
		}
	}
	return out
}
