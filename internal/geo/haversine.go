// Package geo provides great-circle distance math over validated coordinates.
//
// All distances use the haversine formula on a spherical Earth model. Travel
// time is estimated from a configured average speed plus a per-stop dwell
// time; a routing engine supplies real durations when one is available.
package geo

import (
	"fmt"
	"math"

	"fleet-routing-service/internal/domain"
)

// EarthRadiusKm is the mean radius of Earth in kilometers.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points in
// kilometers. Invalid coordinates are rejected rather than flowing through
// the math as NaN.
func DistanceKm(a, b domain.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("distance: origin: %w", err)
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("distance: destination: %w", err)
	}

	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h)), nil
}

// RouteDistanceKm returns the total distance of the origin->first leg plus
// every consecutive stop->stop leg, in kilometers.
func RouteDistanceKm(origin domain.Coordinate, stops []domain.Stop) (float64, error) {
	total := 0.0
	current := origin
	for _, s := range stops {
		leg, err := DistanceKm(current, s.Coord)
		if err != nil {
			return 0, fmt.Errorf("route distance: leg to booking %d: %w", s.BookingID, err)
		}
		total += leg
		current = s.Coord
	}
	return total, nil
}

// EstimateDurationMin converts a route distance into minutes using an average
// speed, adding a fixed dwell time per stop. Used when no external routing
// engine supplied a real duration.
func EstimateDurationMin(distanceKm float64, stopCount int, avgSpeedKmh, dwellMin float64) float64 {
	if avgSpeedKmh <= 0 {
		return 0
	}
	return (distanceKm/avgSpeedKmh)*60.0 + float64(stopCount)*dwellMin
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
