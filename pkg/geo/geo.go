// Package geo provides spherical-earth helpers used to turn a centre point
// and a radius into the bounding box a photo search is constrained to.
package geo

import (
	"math"

	"github.com/1F47E/geo-photo-search/pkg/models"
)

const (
	earthRadius = 6371.0 // km

	// BearingSouthWest and BearingNorthEast are the bearings used to derive
	// the min and max corners of a search box.
	BearingSouthWest = 225.0
	BearingNorthEast = 45.0
)

func toRadians(deg float64) float64 { return deg * math.Pi / 180.0 }
func toDegrees(rad float64) float64 { return rad * 180.0 / math.Pi }

// Destination returns the point reached by travelling distanceKm from
// `from` along the initial bearing bearingDeg (degrees clockwise from north)
// on a sphere of radius 6371 km.
func Destination(from models.Location, distanceKm, bearingDeg float64) models.Location {
	lat1 := toRadians(from.Lat)
	lon1 := toRadians(from.Lon)
	bearing := toRadians(bearingDeg)
	angular := distanceKm / earthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)

	return models.Location{Lat: toDegrees(lat2), Lon: toDegrees(lon2)}
}

// BoundingBoxAround returns the box whose southwest corner lies radiusKm from
// center at bearing 225 and whose northeast corner lies radiusKm away at
// bearing 45.
func BoundingBoxAround(center models.Location, radiusKm float64) models.BoundingBox {
	return models.BoundingBox{
		BottomLeft: Destination(center, radiusKm, BearingSouthWest),
		TopRight:   Destination(center, radiusKm, BearingNorthEast),
	}
}

// Distance calculates the Haversine distance between two points in kilometers
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lon1Rad := toRadians(lon1)
	lat2Rad := toRadians(lat2)
	lon2Rad := toRadians(lon2)

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
