package mapview

import (
	"sync"
)

// MaxZoom is the deepest zoom the tile sources serve.
const MaxZoom = 18

// DefaultCenter is where a new map is centred.
var DefaultCenter = LatLng{Lat: 20, Lon: 0}

// View is a snapshot of the live map.
type View struct {
	Size      Size   `json:"size"`
	Zoom      int    `json:"zoom"`
	MinZoom   int    `json:"min_zoom"`
	MaxBounds Bounds `json:"max_bounds"`
	Center    LatLng `json:"center"`
	Basemap   string `json:"basemap"`
}

// Map is the live map model: viewport size, zoom limits, panning bounds and
// the active basemap. Safe for concurrent use.
type Map struct {
	mu sync.RWMutex

	size      Size
	zoom      int
	minZoom   int
	maxBounds Bounds
	center    LatLng

	basemaps *Basemaps
	basemap  string
}

// NewMap creates a map for the default viewport. basemaps is the table the
// map may switch between; defaultBasemap must be one of its keys.
func NewMap(basemaps *Basemaps, defaultBasemap string) (*Map, error) {
	if basemaps == nil {
		basemaps = DefaultBasemaps()
	}
	if _, err := basemaps.Get(defaultBasemap); err != nil {
		return nil, err
	}

	m := &Map{
		center:   DefaultCenter,
		basemaps: basemaps,
		basemap:  defaultBasemap,
	}
	m.Resize(Size{})
	return m, nil
}

// NewDefaultMap creates a map over DefaultBasemaps showing DefaultBasemap.
func NewDefaultMap() *Map {
	m := &Map{
		center:   DefaultCenter,
		basemaps: DefaultBasemaps(),
		basemap:  DefaultBasemap,
	}
	m.Resize(Size{})
	return m
}

// Resize recomputes the zoom limits for a new viewport. Unmeasurable sizes
// fall back to DefaultWidth×DefaultHeight. The panning area is pinned to
// WorldBounds and the zoom is raised to max(FloorZoom, MinZoom) if below it.
func (m *Map) Resize(s Size) View {
	s = s.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.size = s
	m.minZoom = MinZoom(s)
	m.maxBounds = WorldBounds
	if floor := m.floorLocked(); m.zoom < floor {
		m.zoom = floor
	}
	m.center = m.maxBounds.Clamp(m.center)
	return m.viewLocked()
}

// SetZoom changes the zoom, clamped to [max(FloorZoom, MinZoom), MaxZoom].
// It returns the zoom actually applied.
func (m *Map) SetZoom(z int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if floor := m.floorLocked(); z < floor {
		z = floor
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	m.zoom = z
	return z
}

// Pan moves the centre, clamped into the panning bounds.
func (m *Map) Pan(center LatLng) LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.center = m.maxBounds.Clamp(center)
	return m.center
}

// SetBasemap switches the active tile source.
func (m *Map) SetBasemap(key string) (Basemap, error) {
	bm, err := m.basemaps.Get(key)
	if err != nil {
		return Basemap{}, err
	}

	m.mu.Lock()
	m.basemap = key
	m.mu.Unlock()
	return bm, nil
}

// View returns a snapshot of the map state.
func (m *Map) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewLocked()
}

// LatLngToContainerPoint projects ll into the pixel space of the viewport,
// origin top-left.
func (m *Map) LatLngToContainerPoint(ll LatLng) Point {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z := float64(m.zoom)
	origin := Project(m.center, z).Sub(Point{X: m.size.Width / 2, Y: m.size.Height / 2})
	return Project(ll, z).Sub(origin)
}

func (m *Map) floorLocked() int {
	return max(FloorZoom, m.minZoom)
}

func (m *Map) viewLocked() View {
	return View{
		Size:      m.size,
		Zoom:      m.zoom,
		MinZoom:   m.minZoom,
		MaxBounds: m.maxBounds,
		Center:    m.center,
		Basemap:   m.basemap,
	}
}
