package model

import (
	"fmt"
	"math"
)

// SpotSet is an ordered collection of starspots laid out as a structure of
// arrays. Each parameter is a matrix of shape (nSpots, nRealizations): column
// j holds the spot parameters seen by the j-th stellar realization. A set
// built with a single column is broadcast across however many realizations a
// light-curve call supplies.
//
// Conventions: longitudes are radians in [0, 2π), latitudes are signed
// radians in [-π/2, π/2], and radii are fractions of the stellar radius.
type SpotSet struct {
	Lon [][]float64
	Lat [][]float64
	Rad [][]float64
}

// NewSpotSet builds a single-realization spot set from parallel parameter
// slices. The slices must have equal length; parameters are validated
// against their physical ranges.
func NewSpotSet(lon, lat, rad []float64) (*SpotSet, error) {
	if len(lat) != len(lon) || len(rad) != len(lon) {
		return nil, &ConfigurationError{
			Msg: fmt.Sprintf("spot parameter lengths differ: lon=%d lat=%d rad=%d",
				len(lon), len(lat), len(rad)),
		}
	}
	s := &SpotSet{}
	for i := range lon {
		if err := s.AddSpot(lon[i], lat[i], rad[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddSpot validates a single spot's parameters and appends it along the spot
// axis, broadcasting the values across every realization column.
func (s *SpotSet) AddSpot(lon, lat, rad float64) error {
	if err := validateSpot(lon, lat, rad); err != nil {
		return err
	}
	n := s.NRealizations()
	if n == 0 {
		n = 1
	}
	row := func(v float64) []float64 {
		r := make([]float64, n)
		for j := range r {
			r[j] = v
		}
		return r
	}
	s.Lon = append(s.Lon, row(lon))
	s.Lat = append(s.Lat, row(lat))
	s.Rad = append(s.Rad, row(rad))
	return nil
}

// AddSpotRow appends one spot with distinct parameters per realization. The
// row width must match the existing realization count (or define it, for the
// first spot).
func (s *SpotSet) AddSpotRow(lon, lat, rad []float64) error {
	if len(lat) != len(lon) || len(rad) != len(lon) || len(lon) == 0 {
		return &ConfigurationError{
			Msg: fmt.Sprintf("spot row widths differ or are empty: lon=%d lat=%d rad=%d",
				len(lon), len(lat), len(rad)),
		}
	}
	if n := s.NRealizations(); n != 0 && n != len(lon) {
		return &ConfigurationError{
			Msg: fmt.Sprintf("spot row width %d does not match realization count %d", len(lon), n),
		}
	}
	for j := range lon {
		if err := validateSpot(lon[j], lat[j], rad[j]); err != nil {
			return err
		}
	}
	s.Lon = append(s.Lon, append([]float64(nil), lon...))
	s.Lat = append(s.Lat, append([]float64(nil), lat...))
	s.Rad = append(s.Rad, append([]float64(nil), rad...))
	return nil
}

// NSpots returns the number of spots in the set.
func (s *SpotSet) NSpots() int { return len(s.Lon) }

// NRealizations returns the realization-axis width, or 0 for an empty set.
func (s *SpotSet) NRealizations() int {
	if len(s.Lon) == 0 {
		return 0
	}
	return len(s.Lon[0])
}

// Validate checks every row for consistent width and physical parameter
// ranges. It is called at the light-curve API boundary so the geometry engine
// can assume well-formed inputs.
func (s *SpotSet) Validate() error {
	n := s.NRealizations()
	if len(s.Lat) != len(s.Lon) || len(s.Rad) != len(s.Lon) {
		return &ConfigurationError{
			Msg: fmt.Sprintf("spot matrices have different spot counts: lon=%d lat=%d rad=%d",
				len(s.Lon), len(s.Lat), len(s.Rad)),
		}
	}
	for i := range s.Lon {
		if len(s.Lon[i]) != n || len(s.Lat[i]) != n || len(s.Rad[i]) != n {
			return &ConfigurationError{
				Msg: fmt.Sprintf("spot %d has ragged realization width", i),
			}
		}
		for j := 0; j < n; j++ {
			if err := validateSpot(s.Lon[i][j], s.Lat[i][j], s.Rad[i][j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSpot(lon, lat, rad float64) error {
	if math.IsNaN(lon) || lon < 0 || lon >= 2*math.Pi {
		return &DomainError{Param: "lon", Value: lon, Msg: "longitude must be in [0, 2π)"}
	}
	if math.IsNaN(lat) || lat < -math.Pi/2 || lat > math.Pi/2 {
		return &DomainError{Param: "lat", Value: lat, Msg: "latitude must be in [-π/2, π/2]"}
	}
	if math.IsNaN(rad) || rad <= 0 {
		return &DomainError{Param: "rad", Value: rad, Msg: "radius must be positive"}
	}
	return nil
}
