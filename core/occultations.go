package core

import "math"

// transitEvent is one contiguous run of in-transit time indices together
// with the mid-transit reference index at which spot visibility is gated.
type transitEvent struct {
	refIdx int
	inds   []int
}

// findTransitEvents groups the time indices where the planet can occult
// anything (in front of the star, |Y| < 1 + r_p) into contiguous runs, one
// per transit event. The reference index of an event is where the planet's
// chord coordinate Y changes sign while the planet is in front; partial
// events clipped by the observation window fall back to the index of
// minimum |Y|.
func findTransitEvents(pos []PlanetPosition, rp float64) []transitEvent {
	near := func(p PlanetPosition) bool {
		return p.InFront() && math.Abs(p.Y) < 1+rp
	}

	var events []transitEvent
	for i := 0; i < len(pos); {
		if !near(pos[i]) {
			i++
			continue
		}
		start := i
		for i < len(pos) && near(pos[i]) {
			i++
		}
		inds := make([]int, 0, i-start)
		for k := start; k < i; k++ {
			inds = append(inds, k)
		}

		ref := -1
		for k := start; k < i-1; k++ {
			if (pos[k].Y > 0) != (pos[k+1].Y > 0) && pos[k+1].InFront() {
				ref = k + 1
				break
			}
		}
		if ref < 0 {
			ref = start
			for k := start + 1; k < i; k++ {
				if math.Abs(pos[k].Y) < math.Abs(pos[ref].Y) {
					ref = k
				}
			}
		}
		events = append(events, transitEvent{refIdx: ref, inds: inds})
	}
	return events
}

// occultationConfig parameterises the planet-spot occultation pass. The
// contrast callback makes the same machinery serve the scalar-contrast Star
// and the per-channel ActiveStar.
type occultationConfig struct {
	estimator OverlapEstimator
	ld        LimbDarkening
	radius    float64 // planet radius, stellar radii
	contrast  func(spot, channel int) float64
	nChannels int
}

// refSpot is a spot visible at a transit event's reference index, with its
// silhouette and limb-darkening factor frozen for the whole event.
type refSpot struct {
	index    int
	ellipse  Ellipse
	ldFactor float64
}

// occultationCorrections computes, per time and contrast channel, the flux
// correction to subtract from λ_e when the planet's silhouette hides part of
// a spot. proj must be the projection for the single transiting realization,
// indexed [time][spot].
//
// When the planet covers several spots at once only the single largest
// per-spot correction is applied; summing would double-count overlapping
// spot regions. This max policy is a deliberate approximation and must be
// preserved.
func occultationCorrections(proj [][]ProjectedSpot, pos []PlanetPosition, cfg occultationConfig) (corr [][]float64, events, evals int) {
	corr = make([][]float64, len(pos))
	for t := range corr {
		corr[t] = make([]float64, cfg.nChannels)
	}

	for _, ev := range findTransitEvents(pos, cfg.radius) {
		events++

		// Gate spot visibility once per event, at the mid-transit index.
		var visible []refSpot
		for i, ps := range proj[ev.refIdx] {
			if !ps.Visible {
				continue
			}
			lf := cfg.ld.normalizedFlux(ps.R())
			if lf <= 0 {
				// The intensity can reach zero at the limb when u1+u2 = 1;
				// such a spot centre removes no occultable flux.
				continue
			}
			visible = append(visible, refSpot{
				index:    i,
				ellipse:  ps.Ellipse,
				ldFactor: lf,
			})
		}
		if len(visible) == 0 {
			continue
		}

		for _, t := range ev.inds {
			circle := Circle{Y: pos[t].Y, Z: pos[t].Z, R: cfg.radius}
			for ch := 0; ch < cfg.nChannels; ch++ {
				corr[t][ch] = 0
			}
			for _, vs := range visible {
				area := cfg.estimator.Estimate(vs.ellipse, circle)
				evals++
				if area <= 0 {
					continue
				}
				for ch := 0; ch < cfg.nChannels; ch++ {
					c := (1 - cfg.contrast(vs.index, ch)) / vs.ldFactor * area / math.Pi
					if c > corr[t][ch] {
						corr[t][ch] = c
					}
				}
			}
		}
	}
	return corr, events, evals
}
