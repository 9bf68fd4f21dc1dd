package utils

import (
	"math"
)

// metersPerMile matches the conversion constant baked into previously
// stored distance thresholds. Do not "fix" it to 1609.344.
const metersPerMile = 1609.34

const earthRadiusKm = 6371

// GeoPoint is a GeoJSON point. Coordinates are longitude first - that is
// the ordering the geospatial index expects, and the opposite of the
// lat-first convention used everywhere else in this package.
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lng, lat]
}

// ToGeoPoint builds a GeoJSON point from a lat/lng pair. Returns nil when
// either value is not a finite number.
func ToGeoPoint(lat, lng float64) *GeoPoint {
	if !isFinite(lat) || !isFinite(lng) {
		return nil
	}
	return &GeoPoint{
		Type:        "Point",
		Coordinates: [2]float64{lng, lat},
	}
}

// MilesToMeters converts miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * metersPerMile
}

// MetersToMiles converts meters back to miles, rounded to 1 decimal place
// for display alongside search results.
func MetersToMiles(meters float64) float64 {
	return math.Round(meters/metersPerMile*10) / 10
}

// HaversineDistanceKm calculates the great-circle distance between two
// points using the Haversine formula. Arguments are latitude first.
func HaversineDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
