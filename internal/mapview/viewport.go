package mapview

import "math"

// TileSize is the edge length of one map tile in pixels.
const TileSize = 256

// Fallback viewport used when the real size cannot be measured.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// FloorZoom is the lowest zoom the map settles on even when MinZoom allows less.
const FloorZoom = 2

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// WorldBounds keeps panning away from the empty tile rows beyond the
// Mercator poles.
var WorldBounds = Bounds{
	SouthWest: LatLng{Lat: -85, Lon: -180},
	NorthEast: LatLng{Lat: 85, Lon: 180},
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lon >= b.SouthWest.Lon && p.Lon <= b.NorthEast.Lon
}

// Clamp moves p to the nearest point inside b.
func (b Bounds) Clamp(p LatLng) LatLng {
	return LatLng{
		Lat: math.Min(math.Max(p.Lat, b.SouthWest.Lat), b.NorthEast.Lat),
		Lon: math.Min(math.Max(p.Lon, b.SouthWest.Lon), b.NorthEast.Lon),
	}
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize substitutes the default viewport for unmeasurable dimensions.
func (s Size) Normalize() Size {
	if s.Width <= 0 || math.IsNaN(s.Width) || math.IsInf(s.Width, 0) {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 || math.IsNaN(s.Height) || math.IsInf(s.Height, 0) {
		s.Height = DefaultHeight
	}
	return s
}

// MinZoom is the smallest zoom at which one world width of tiles covers the
// viewport on both axes: 256·2^z ≥ w and 256·2^z ≥ h. Never negative.
func MinZoom(s Size) int {
	s = s.Normalize()
	zw := math.Ceil(math.Log2(math.Max(1, s.Width/TileSize)))
	zh := math.Ceil(math.Log2(math.Max(1, s.Height/TileSize)))
	z := int(math.Max(zw, zh))
	if z < 0 {
		return 0
	}
	return z
}

// InitialZoom is the zoom a freshly sized map starts at.
func InitialZoom(s Size) int {
	return max(FloorZoom, MinZoom(s))
}
