package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/starspot-simulator/model"
)

func newTestActiveStar(t *testing.T, times []float64) *ActiveStar {
	t.Helper()
	a, err := NewActiveStar(ActiveStarConfig{
		LimbDarkening:  LimbDarkening{U1: 0.5, U2: 0.2},
		RotationPeriod: 10,
		Inclination:    math.Pi / 2,
		Times:          times,
	})
	if err != nil {
		t.Fatalf("NewActiveStar: %v", err)
	}
	return a
}

func TestActiveStar_FirstSpectrumFixesChannelCount(t *testing.T) {
	a := newTestActiveStar(t, []float64{0})

	if err := a.AddSpotSpectrum(0, 0, 0.1, []float64{0.2, 0.4, 0.6}); err != nil {
		t.Fatalf("AddSpotSpectrum: %v", err)
	}
	if got := a.NChannels(); got != 3 {
		t.Fatalf("NChannels = %d, want 3", got)
	}

	err := a.AddSpotSpectrum(1, 0, 0.1, []float64{0.2, 0.4})
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("mismatched spectrum = %v, want ConfigurationError", err)
	}
	if got := a.NSpots(); got != 1 {
		t.Fatalf("rejected spot was appended, NSpots = %d", got)
	}
}

func TestActiveStar_ScalarSpotBroadcastsAcrossChannels(t *testing.T) {
	a := newTestActiveStar(t, []float64{0, 1})
	if err := a.AddSpotSpectrum(0, 0, 0.1, []float64{0.2, 0.6}); err != nil {
		t.Fatalf("AddSpotSpectrum: %v", err)
	}
	if err := a.AddSpot(2, 0.3, 0.05, 0.5); err != nil {
		t.Fatalf("AddSpot: %v", err)
	}
	if a.NSpots() != 2 || a.NChannels() != 2 {
		t.Fatalf("NSpots=%d NChannels=%d, want 2 and 2", a.NSpots(), a.NChannels())
	}
}

func TestActiveStar_RejectsOutOfRangeContrast(t *testing.T) {
	a := newTestActiveStar(t, []float64{0})
	var de *model.DomainError
	if err := a.AddSpot(0, 0, 0.1, 1.5); !errors.As(err, &de) {
		t.Fatalf("contrast 1.5 accepted: %v", err)
	}
	if err := a.AddSpot(0, 0, 0.1, -0.1); !errors.As(err, &de) {
		t.Fatalf("contrast -0.1 accepted: %v", err)
	}
}

func TestActiveStar_SpotlessRotationModelIsUnity(t *testing.T) {
	a := newTestActiveStar(t, []float64{0, 2.5, 5, 7.5})
	flux, err := a.RotationModel(context.Background(), 0)
	if err != nil {
		t.Fatalf("RotationModel: %v", err)
	}
	if len(flux) != 4 || len(flux[0]) != 1 {
		t.Fatalf("flux shape (%d,%d), want (4,1)", len(flux), len(flux[0]))
	}
	for i, row := range flux {
		if row[0] != 1 {
			t.Fatalf("spotless flux[%d] = %v, want 1", i, row[0])
		}
	}
}

func TestActiveStar_RotationModelChannelsOrderedByContrast(t *testing.T) {
	// Rotation period 10, spot at longitude 0, phase zero at t0=0: the
	// spot faces the observer at t=0 and hides at t=5.
	a := newTestActiveStar(t, []float64{0, 5})
	if err := a.AddSpotSpectrum(0, 0, 0.1, []float64{0.1, 0.9}); err != nil {
		t.Fatalf("AddSpotSpectrum: %v", err)
	}

	flux, err := a.RotationModel(context.Background(), 0)
	if err != nil {
		t.Fatalf("RotationModel: %v", err)
	}

	// Darker channel dips deeper while the spot is in view.
	if !(flux[0][0] < flux[0][1] && flux[0][1] < 1) {
		t.Fatalf("in-view channel fluxes %v not ordered by contrast", flux[0])
	}
	// Both channels recover exactly once the spot rotates away.
	if flux[1][0] != 1 || flux[1][1] != 1 {
		t.Fatalf("hidden-spot fluxes %v, want [1 1]", flux[1])
	}
}

func TestActiveStar_RotationModelNeedsTimes(t *testing.T) {
	a := newTestActiveStar(t, nil)
	_, err := a.RotationModel(context.Background(), 0)
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("RotationModel with no times = %v, want ConfigurationError", err)
	}
}

func TestActiveStar_TransitLightCurveCombinesTerms(t *testing.T) {
	times := []float64{-0.1, 0, 0.1}
	a := newTestActiveStar(t, times)
	if err := a.AddSpot(math.Pi, 0.3, 0.1, 0.3); err != nil {
		t.Fatalf("AddSpot: %v", err)
	}

	// Planet in front but clear of the far-side spot; λ_e applies fully.
	tm := &fakeTransitModel{
		lambdaE: []float64{0, 0.012, 0},
		pos: []PlanetPosition{
			{X: 1, Y: 5}, {X: -1, Y: 0}, {X: 1, Y: 5},
		},
	}

	flux, err := a.TransitLightCurve(context.Background(), testPlanet(), tm)
	if err != nil {
		t.Fatalf("TransitLightCurve: %v", err)
	}
	// The spot at longitude π is behind the star near T0, so flux is the
	// bare transit model.
	want := []float64{1, 1 - 0.012, 1}
	for i := range want {
		if math.Abs(flux[i][0]-want[i]) > 1e-12 {
			t.Fatalf("flux[%d] = %v, want %v", i, flux[i][0], want[i])
		}
	}
}

func TestActiveStar_TransitLightCurveRequiresModel(t *testing.T) {
	a := newTestActiveStar(t, []float64{0})
	_, err := a.TransitLightCurve(context.Background(), testPlanet(), nil)
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("nil transit model = %v, want ConfigurationError", err)
	}
}
