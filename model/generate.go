package model

import (
	"math"
	"math/rand"
)

// GenerateConfig bounds the random spot populations produced by
// GenerateSpots.
type GenerateConfig struct {
	MinLat float64 // radians
	MaxLat float64 // radians
	Radius float64 // fraction of stellar radius, applied to every spot
	NSpots int

	// Inclinations fixes the stellar inclinations of the ensemble. When nil,
	// NInclinations values are drawn uniformly from [-π/2, π/2].
	Inclinations  []float64
	NInclinations int
}

// GenerateSpots draws a random spot population: NSpots spots on each of the
// ensemble's stars, with uniform longitudes, latitudes uniform in the
// configured band, and a fixed radius. The returned inclinations slice has
// one entry per realization column of the spot set.
//
// The caller supplies the random source so ensembles are reproducible.
func GenerateSpots(rng *rand.Rand, cfg GenerateConfig) (*SpotSet, []float64, error) {
	if cfg.NSpots <= 0 {
		return nil, nil, &ConfigurationError{Msg: "n_spots must be positive"}
	}
	incs := cfg.Inclinations
	if incs == nil {
		if cfg.NInclinations <= 0 {
			return nil, nil, &ConfigurationError{Msg: "either inclinations or n_inclinations is required"}
		}
		incs = make([]float64, cfg.NInclinations)
		for j := range incs {
			incs[j] = math.Pi*rng.Float64() - math.Pi/2
		}
	}
	nInc := len(incs)
	dLat := cfg.MaxLat - cfg.MinLat

	spots := &SpotSet{}
	for i := 0; i < cfg.NSpots; i++ {
		lon := make([]float64, nInc)
		lat := make([]float64, nInc)
		rad := make([]float64, nInc)
		for j := 0; j < nInc; j++ {
			lon[j] = 2 * math.Pi * rng.Float64()
			lat[j] = cfg.MinLat + dLat*rng.Float64()
			rad[j] = cfg.Radius
		}
		if err := spots.AddSpotRow(lon, lat, rad); err != nil {
			return nil, nil, err
		}
	}
	return spots, incs, nil
}
