package core

import (
	"math"
	"testing"
)

// posSeq builds an in-front pass of the planet across the disk along Y.
func posSeq(ys ...float64) []PlanetPosition {
	out := make([]PlanetPosition, len(ys))
	for i, y := range ys {
		out[i] = PlanetPosition{X: -1, Y: y}
	}
	return out
}

func TestFindTransitEvents_SingleCrossing(t *testing.T) {
	pos := posSeq(-1.5, -0.8, -0.2, 0.3, 0.9, 1.6)
	events := findTransitEvents(pos, 0.1)

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	// Indices 0 and 5 are outside |Y| < 1.1.
	if len(ev.inds) != 4 || ev.inds[0] != 1 || ev.inds[3] != 4 {
		t.Fatalf("event indices = %v, want [1 2 3 4]", ev.inds)
	}
	// The sign change happens between indices 2 and 3.
	if ev.refIdx != 3 {
		t.Fatalf("reference index = %d, want 3", ev.refIdx)
	}
}

func TestFindTransitEvents_BehindStarIgnored(t *testing.T) {
	pos := []PlanetPosition{
		{X: 1, Y: -0.2}, {X: 1, Y: 0.1}, {X: 1, Y: 0.4},
	}
	if events := findTransitEvents(pos, 0.1); len(events) != 0 {
		t.Fatalf("occultation events found behind the star: %d", len(events))
	}
}

func TestFindTransitEvents_ClippedEventFallsBackToMinY(t *testing.T) {
	// Egress-only window: no sign change, so the reference is the sample
	// closest to the chord centre.
	pos := posSeq(0.2, 0.5, 0.8, 1.4)
	events := findTransitEvents(pos, 0.1)

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].refIdx != 0 {
		t.Fatalf("clipped-event reference = %d, want 0", events[0].refIdx)
	}
}

func TestFindTransitEvents_SeparatesConsecutiveTransits(t *testing.T) {
	pos := posSeq(-0.5, 0.5, 2.5, 3.0, -0.5, 0.5)
	events := findTransitEvents(pos, 0.1)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

// fullCoverProj positions nSpots circular spots at the disk centre so a
// central planet covers all of them completely.
func fullCoverProj(nTimes, nSpots int, rad float64) [][]ProjectedSpot {
	proj := make([][]ProjectedSpot, nTimes)
	for t := range proj {
		proj[t] = make([]ProjectedSpot, nSpots)
		for i := range proj[t] {
			proj[t][i] = ProjectedSpot{
				X: 1, Visible: true,
				Ellipse: Ellipse{SemiMajor: rad, SemiMinor: rad},
			}
		}
	}
	return proj
}

func TestOccultationCorrections_MaxNotSumAcrossSpots(t *testing.T) {
	// Two coincident dark spots, both fully hidden by the planet. The
	// correction must be the larger single-spot term, not their sum.
	proj := fullCoverProj(3, 2, 0.05)
	pos := posSeq(-0.01, 0, 0.01)

	cfg := occultationConfig{
		estimator: NewExactOverlap(),
		ld:        LimbDarkening{},
		radius:    0.2,
		contrast:  func(int, int) float64 { return 0 },
		nChannels: 1,
	}
	corr, events, evals := occultationCorrections(proj, pos, cfg)

	if events != 1 {
		t.Fatalf("events = %d, want 1", events)
	}
	if evals != 6 {
		t.Fatalf("overlap evaluations = %d, want 2 spots × 3 times", evals)
	}

	// One fully covered dark spot at disk centre on a uniform disk
	// corrects λ_e by its covered area over π.
	want := math.Pi * 0.05 * 0.05 / math.Pi
	got := corr[1][0]
	if rel := math.Abs(got-want) / want; rel > 5e-3 {
		t.Fatalf("correction = %v, want single-spot %v (sum would be %v)", got, want, 2*want)
	}
}

func TestOccultationCorrections_VisibilityGatedAtReference(t *testing.T) {
	// The spot is hidden at the reference index: it must contribute
	// nothing anywhere in the event, even where marked visible.
	proj := fullCoverProj(3, 1, 0.05)
	proj[1][0].Visible = false // index 1 is the sign-change reference
	pos := posSeq(-0.01, 0.01, 0.02)

	corr, _, evals := occultationCorrections(proj, pos, occultationConfig{
		estimator: NewExactOverlap(),
		ld:        LimbDarkening{},
		radius:    0.2,
		contrast:  func(int, int) float64 { return 0 },
		nChannels: 1,
	})

	if evals != 0 {
		t.Fatalf("overlap evaluated %d times for a gated-out spot", evals)
	}
	for t2, row := range corr {
		if row[0] != 0 {
			t.Fatalf("correction at %d = %v, want 0", t2, row[0])
		}
	}
}

func TestOccultationCorrections_BrightSpotContributesNothing(t *testing.T) {
	proj := fullCoverProj(1, 1, 0.05)
	pos := posSeq(0)

	corr, _, _ := occultationCorrections(proj, pos, occultationConfig{
		estimator: NewExactOverlap(),
		ld:        LimbDarkening{},
		radius:    0.2,
		contrast:  func(int, int) float64 { return 1 }, // photospheric
		nChannels: 1,
	})
	if corr[0][0] != 0 {
		t.Fatalf("contrast-1 spot produced correction %v", corr[0][0])
	}
}

func TestOccultationCorrections_ZeroIntensityLimbSpotFinite(t *testing.T) {
	// With u1+u2 = 1 the intensity vanishes at r = 1. A spot centred on
	// the limb then has a zero limb-darkening factor and must be skipped,
	// not divided by.
	proj := [][]ProjectedSpot{{
		{
			X: 0, Y: 1, Visible: true,
			Ellipse: Ellipse{Y: 1, SemiMajor: 0.05, SemiMinor: 0.01},
		},
	}}
	pos := posSeq(0.95)

	corr, _, _ := occultationCorrections(proj, pos, occultationConfig{
		estimator: NewExactOverlap(),
		ld:        LimbDarkening{U1: 0.5, U2: 0.5},
		radius:    0.2,
		contrast:  func(int, int) float64 { return 0 },
		nChannels: 1,
	})

	if math.IsInf(corr[0][0], 0) || math.IsNaN(corr[0][0]) {
		t.Fatalf("limb-spot correction = %v, want finite", corr[0][0])
	}
	if corr[0][0] != 0 {
		t.Fatalf("zero-intensity spot produced correction %v, want 0", corr[0][0])
	}
}

func TestOccultationCorrections_PerChannelContrast(t *testing.T) {
	proj := fullCoverProj(1, 1, 0.05)
	pos := posSeq(0)

	contrasts := []float64{0.2, 0.8}
	corr, _, _ := occultationCorrections(proj, pos, occultationConfig{
		estimator: NewExactOverlap(),
		ld:        LimbDarkening{},
		radius:    0.2,
		contrast:  func(_, ch int) float64 { return contrasts[ch] },
		nChannels: 2,
	})

	// The darker channel sees the larger correction, scaled by (1-c).
	if corr[0][0] <= corr[0][1] {
		t.Fatalf("channel corrections %v not ordered by darkness", corr[0])
	}
	ratio := corr[0][0] / corr[0][1]
	want := (1 - 0.2) / (1 - 0.8)
	if math.Abs(ratio-want) > 1e-9 {
		t.Fatalf("channel correction ratio = %v, want %v", ratio, want)
	}
}
