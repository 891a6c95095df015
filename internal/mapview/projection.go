package mapview

import "math"

// maxMercatorLat is the latitude at which spherical Mercator becomes square.
const maxMercatorLat = 85.0511287798

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Project converts ll to absolute Web-Mercator pixel coordinates at zoom.
func Project(ll LatLng, zoom float64) Point {
	scale := TileSize * math.Pow(2, zoom)
	lat := math.Max(math.Min(ll.Lat, maxMercatorLat), -maxMercatorLat)
	sin := math.Sin(lat * math.Pi / 180)

	x := (ll.Lon + 180) / 360 * scale
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale
	return Point{X: x, Y: y}
}

// Unproject is the inverse of Project.
func Unproject(p Point, zoom float64) LatLng {
	scale := TileSize * math.Pow(2, zoom)
	lon := p.X/scale*360 - 180
	n := math.Pi - 2*math.Pi*p.Y/scale
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))
	return LatLng{Lat: lat, Lon: lon}
}
