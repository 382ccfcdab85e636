package models

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox represents a rectangular area defined by two corners.
// BottomLeft holds the minimum latitude/longitude, TopRight the maximum.
type BoundingBox struct {
	BottomLeft Location
	TopRight   Location
}

// NewBoundingBox builds a box from explicit min/max pairs
func NewBoundingBox(minLat, maxLat, minLon, maxLon float64) BoundingBox {
	return BoundingBox{
		BottomLeft: Location{Lat: minLat, Lon: minLon},
		TopRight:   Location{Lat: maxLat, Lon: maxLon},
	}
}

func (b BoundingBox) MinLat() float64 { return b.BottomLeft.Lat }
func (b BoundingBox) MaxLat() float64 { return b.TopRight.Lat }
func (b BoundingBox) MinLon() float64 { return b.BottomLeft.Lon }
func (b BoundingBox) MaxLon() float64 { return b.TopRight.Lon }

// IsZero reports whether the box was never set
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Contains reports whether loc lies inside the box, edges included
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.BottomLeft.Lat && loc.Lat <= b.TopRight.Lat &&
		loc.Lon >= b.BottomLeft.Lon && loc.Lon <= b.TopRight.Lon
}
