package model

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSpotSet_AddSpotBroadcasts(t *testing.T) {
	s := &SpotSet{}
	if err := s.AddSpotRow([]float64{0, 1, 2}, []float64{0, 0.1, -0.1}, []float64{0.1, 0.1, 0.1}); err != nil {
		t.Fatalf("AddSpotRow: %v", err)
	}
	if err := s.AddSpot(math.Pi, 0.5, 0.2); err != nil {
		t.Fatalf("AddSpot: %v", err)
	}

	if got := s.NSpots(); got != 2 {
		t.Fatalf("NSpots = %d, want 2", got)
	}
	if got := s.NRealizations(); got != 3 {
		t.Fatalf("NRealizations = %d, want 3", got)
	}
	for j := 0; j < 3; j++ {
		if s.Lon[1][j] != math.Pi {
			t.Fatalf("broadcast column %d: lon = %v, want π", j, s.Lon[1][j])
		}
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSpotSet_RejectsOutOfRangeParameters(t *testing.T) {
	cases := []struct {
		name          string
		lon, lat, rad float64
	}{
		{"negative longitude", -0.1, 0, 0.1},
		{"longitude at 2pi", 2 * math.Pi, 0, 0.1},
		{"latitude beyond pole", 0, math.Pi/2 + 0.01, 0.1},
		{"zero radius", 0, 0, 0},
		{"nan latitude", 0, math.NaN(), 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &SpotSet{}
			err := s.AddSpot(tc.lon, tc.lat, tc.rad)
			var de *DomainError
			if !errors.As(err, &de) {
				t.Fatalf("AddSpot(%v, %v, %v) = %v, want DomainError", tc.lon, tc.lat, tc.rad, err)
			}
			if s.NSpots() != 0 {
				t.Fatalf("rejected spot was still appended")
			}
		})
	}
}

func TestSpotSet_AddSpotRowWidthMismatch(t *testing.T) {
	s := &SpotSet{}
	if err := s.AddSpotRow([]float64{0, 1}, []float64{0, 0}, []float64{0.1, 0.1}); err != nil {
		t.Fatalf("first row: %v", err)
	}
	err := s.AddSpotRow([]float64{0}, []float64{0}, []float64{0.1})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("mismatched row = %v, want ConfigurationError", err)
	}
}

func TestNewSpotSet_LengthMismatch(t *testing.T) {
	_, err := NewSpotSet([]float64{0, 1}, []float64{0}, []float64{0.1, 0.1})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("NewSpotSet = %v, want ConfigurationError", err)
	}
}

func TestGenerateSpots_ShapeAndBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	spots, incs, err := GenerateSpots(rng, GenerateConfig{
		MinLat:        0.2,
		MaxLat:        0.4,
		Radius:        0.05,
		NSpots:        5,
		NInclinations: 12,
	})
	if err != nil {
		t.Fatalf("GenerateSpots: %v", err)
	}
	if spots.NSpots() != 5 || spots.NRealizations() != 12 || len(incs) != 12 {
		t.Fatalf("unexpected shapes: spots=%d realizations=%d incs=%d",
			spots.NSpots(), spots.NRealizations(), len(incs))
	}
	for i := range spots.Lat {
		for j, lat := range spots.Lat[i] {
			if lat < 0.2 || lat > 0.4 {
				t.Fatalf("spot (%d,%d) latitude %v outside [0.2, 0.4]", i, j, lat)
			}
			if spots.Rad[i][j] != 0.05 {
				t.Fatalf("spot (%d,%d) radius %v, want 0.05", i, j, spots.Rad[i][j])
			}
		}
	}
	for _, inc := range incs {
		if inc < -math.Pi/2 || inc > math.Pi/2 {
			t.Fatalf("inclination %v outside [-π/2, π/2]", inc)
		}
	}
}

func TestGenerateSpots_DeterministicUnderSeed(t *testing.T) {
	cfg := GenerateConfig{MaxLat: 1, Radius: 0.1, NSpots: 3, NInclinations: 4}

	a, incA, err := GenerateSpots(rand.New(rand.NewSource(42)), cfg)
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	b, incB, err := GenerateSpots(rand.New(rand.NewSource(42)), cfg)
	if err != nil {
		t.Fatalf("second draw: %v", err)
	}

	for i := range a.Lon {
		for j := range a.Lon[i] {
			if a.Lon[i][j] != b.Lon[i][j] || a.Lat[i][j] != b.Lat[i][j] {
				t.Fatalf("draws diverge at spot (%d,%d)", i, j)
			}
		}
	}
	for j := range incA {
		if incA[j] != incB[j] {
			t.Fatalf("inclination draws diverge at %d", j)
		}
	}
}

func TestPlanet_Validate(t *testing.T) {
	valid := Planet{Period: 3, SemiMajorAxis: 10, Radius: 0.1, Inc: math.Pi / 2}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid planet rejected: %v", err)
	}

	bad := valid
	bad.Ecc = 1
	var de *DomainError
	if err := bad.Validate(); !errors.As(err, &de) {
		t.Fatalf("ecc=1 accepted: %v", err)
	}

	bad = valid
	bad.Radius = 0
	if err := bad.Validate(); !errors.As(err, &de) {
		t.Fatalf("radius=0 accepted: %v", err)
	}
}
