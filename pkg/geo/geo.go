package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"naturenarrated/pkg/model"
)

// ToPoint converts coordinates to an orb point. orb uses [lon, lat] order.
func ToPoint(c model.Coordinates) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Distance returns the great-circle distance between two coordinates in meters.
func Distance(a, b model.Coordinates) float64 {
	return orbgeo.DistanceHaversine(ToPoint(a), ToPoint(b))
}

// DistanceKm is Distance in kilometers, rounded to one decimal.
func DistanceKm(a, b model.Coordinates) float64 {
	return math.Round(Distance(a, b)/100) / 10
}

// Validate rejects coordinates outside the WGS84 range or not finite.
func Validate(c model.Coordinates) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("coordinates must be finite")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %.4f out of range", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %.4f out of range", c.Lng)
	}
	return nil
}
