// Package quadrature provides the small adaptive integrator used by the
// limb-darkening normalization and the transit flux-loss integral.
package quadrature

import "math"

// maxDepth bounds the recursion so a pathological integrand cannot hang the
// caller; at depth 40 the panels are ~1e-12 of the original interval.
const maxDepth = 40

// AdaptiveSimpson integrates f over [a, b] with adaptive Simpson refinement,
// splitting panels until the local error estimate satisfies the relative
// tolerance (with a small absolute floor for integrals near zero).
func AdaptiveSimpson(f func(float64) float64, a, b, relTol float64) float64 {
	if a == b {
		return 0
	}
	if relTol <= 0 {
		relTol = 1e-8
	}
	fa, fb := f(a), f(b)
	m := 0.5 * (a + b)
	fm := f(m)
	whole := simpson(a, b, fa, fm, fb)
	return adapt(f, a, b, fa, fm, fb, whole, relTol, 0)
}

func adapt(f func(float64) float64, a, b, fa, fm, fb, whole, relTol float64, depth int) float64 {
	m := 0.5 * (a + b)
	lm := 0.5 * (a + m)
	rm := 0.5 * (m + b)
	flm, frm := f(lm), f(rm)

	left := simpson(a, m, fa, flm, fm)
	right := simpson(m, b, fm, frm, fb)
	delta := left + right - whole

	tol := relTol * math.Abs(left+right)
	if tol < 1e-15 {
		tol = 1e-15
	}
	if math.Abs(delta) <= 15*tol || depth >= maxDepth {
		// Richardson extrapolation of the two half-panel estimates.
		return left + right + delta/15
	}
	return adapt(f, a, m, fa, flm, fm, left, relTol, depth+1) +
		adapt(f, m, b, fm, frm, fb, right, relTol, depth+1)
}

func simpson(a, b, fa, fm, fb float64) float64 {
	return (b - a) / 6 * (fa + 4*fm + fb)
}
