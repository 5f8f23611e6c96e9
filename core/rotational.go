package core

import "math"

// rotationalDeficit sums the out-of-transit flux missing because of spots,
// per time and realization, before normalization by the total disk flux f0.
//
// Each visible spot removes π·rad²·(1−contrast)·I_n(r)·√(1−r²), where I_n is
// the centre-normalized limb darkening at the spot's projected radial
// distance and the √(1−r²) factor is the foreshortening of the spot's area.
// Out-of-view spots are masked, contributing exactly zero regardless of
// their radius or contrast. Rows are sized by nReal, not by the projection,
// so a spotless star still yields a full zero matrix.
func rotationalDeficit(proj [][][]ProjectedSpot, ld LimbDarkening, contrast float64, nReal int) [][]float64 {
	out := make([][]float64, len(proj))
	for t := range proj {
		out[t] = make([]float64, nReal)
		for i := range proj[t] {
			for j, ps := range proj[t][i] {
				if !ps.Visible {
					continue
				}
				out[t][j] += spotDeficit(ps, ld, contrast)
			}
		}
	}
	return out
}

// rotationalDeficitSpectral is the per-channel variant used by ActiveStar:
// proj holds a single realization, indexed [time][spot], and the contrast
// callback supplies each spot's contrast in each wavelength channel.
func rotationalDeficitSpectral(proj [][]ProjectedSpot, ld LimbDarkening, contrast func(spot, channel int) float64, nChannels int) [][]float64 {
	out := make([][]float64, len(proj))
	for t := range proj {
		out[t] = make([]float64, nChannels)
		for i, ps := range proj[t] {
			if !ps.Visible {
				continue
			}
			base := spotDeficit(ps, ld, 0)
			for ch := 0; ch < nChannels; ch++ {
				out[t][ch] += base * (1 - contrast(i, ch))
			}
		}
	}
	return out
}

func spotDeficit(ps ProjectedSpot, ld LimbDarkening, contrast float64) float64 {
	r := ps.R()
	rad := ps.Ellipse.SemiMajor
	return math.Pi * rad * rad * (1 - contrast) * ld.normalizedFlux(r) * mu(r)
}
