package mapview

import (
	"fmt"
	"sync"

	"github.com/i474232898/weather-map/internal/region"
)

// Distances from the right and bottom edges under which an expanded marker
// card flips to open the other way.
const (
	FlipThresholdX = 260
	FlipThresholdY = 260
)

// Z-index offsets for resting and hovered markers.
const (
	ZIndexResting = 1000
	ZIndexHovered = 9999
)

// Marker DOM events.
const (
	EventClick      = "click"
	EventMouseEnter = "mouseenter"
	EventMouseLeave = "mouseleave"
)

// Element is the rendered node a marker hangs its listeners on.
type Element interface {
	// Attached reports whether the node is part of the document yet.
	Attached() bool
	On(event string, fn func())
	Off(event string)
}

// Flip says on which axes the expanded card opens towards the origin.
type Flip struct {
	X bool `json:"x"`
	Y bool `json:"y"`
}

// FlipFor decides the flip for an anchor at pos inside a viewport of size s.
func FlipFor(pos Point, s Size) Flip {
	return Flip{
		X: pos.X > s.Width-FlipThresholdX,
		Y: pos.Y > s.Height-FlipThresholdY,
	}
}

// MarkerState is a snapshot of one marker.
type MarkerState struct {
	Key       string `json:"key"`
	Hovering  bool   `json:"hovering"`
	Flip      Flip   `json:"flip"`
	ZIndex    int    `json:"z_index"`
	Listening bool   `json:"listening"`
}

// Marker renders one region on the map. Listener attachment is deferred
// until its element is part of the document.
type Marker struct {
	Key      string
	Region   region.Region
	ImageURL string

	m        *Map
	onSelect func(key string)

	mu        sync.Mutex
	el        Element
	listening bool
	hovering  bool
	flip      Flip
	zIndex    int
}

// NewMarker creates a marker for one region. onSelect may be nil.
func NewMarker(key string, reg region.Region, m *Map, onSelect func(string)) *Marker {
	return &Marker{
		Key:      key,
		Region:   reg,
		ImageURL: fmt.Sprintf("image/%s.jpg", key),
		m:        m,
		onSelect: onSelect,
		zIndex:   ZIndexResting,
	}
}

// NewMarkers creates one marker per registry entry, in key order.
func NewMarkers(regions *region.Registry, m *Map, onSelect func(string)) []*Marker {
	markers := make([]*Marker, 0, regions.Len())
	regions.Each(func(key string, reg region.Region) {
		markers = append(markers, NewMarker(key, reg, m, onSelect))
	})
	return markers
}

// Anchor is the marker position in viewport pixels.
func (mk *Marker) Anchor() Point {
	return mk.m.LatLngToContainerPoint(LatLng{Lat: mk.Region.Lat, Lon: mk.Region.Lon})
}

// Attach binds the listeners to el. When el is nil or not attached yet it
// only remembers el; call Attach again on the layer's add event. It reports
// whether the listeners are live.
func (mk *Marker) Attach(el Element) bool {
	mk.mu.Lock()
	defer mk.mu.Unlock()

	if mk.listening && mk.el == el {
		return true
	}
	mk.detachLocked()

	mk.el = el
	if el == nil || !el.Attached() {
		return false
	}

	el.On(EventClick, mk.Click)
	el.On(EventMouseEnter, mk.HoverStart)
	el.On(EventMouseLeave, mk.HoverEnd)
	mk.listening = true
	return true
}

// Detach removes the listeners; used when the marker leaves the map.
func (mk *Marker) Detach() {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.detachLocked()
	mk.el = nil
}

func (mk *Marker) detachLocked() {
	if !mk.listening || mk.el == nil {
		mk.listening = false
		return
	}
	mk.el.Off(EventClick)
	mk.el.Off(EventMouseEnter)
	mk.el.Off(EventMouseLeave)
	mk.listening = false
	mk.hovering = false
	mk.flip = Flip{}
	mk.zIndex = ZIndexResting
}

// HoverStart expands the card, recomputing the flip against the current
// projection since the map may have moved since the last hover.
func (mk *Marker) HoverStart() {
	pos := mk.Anchor()
	size := mk.m.View().Size

	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.hovering = true
	mk.flip = FlipFor(pos, size)
	mk.zIndex = ZIndexHovered
}

// HoverEnd collapses the card and clears the flip.
func (mk *Marker) HoverEnd() {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.hovering = false
	mk.flip = Flip{}
	mk.zIndex = ZIndexResting
}

// Click reports the marker key to the selection callback.
func (mk *Marker) Click() {
	if mk.onSelect != nil {
		mk.onSelect(mk.Key)
	}
}

// State returns a snapshot of the marker.
func (mk *Marker) State() MarkerState {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	return MarkerState{
		Key:       mk.Key,
		Hovering:  mk.hovering,
		Flip:      mk.flip,
		ZIndex:    mk.zIndex,
		Listening: mk.listening,
	}
}
