package mapview

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-map/internal/region"
)

type fakeElement struct {
	mu        sync.Mutex
	attached  bool
	listeners map[string]func()
}

func newFakeElement(attached bool) *fakeElement {
	return &fakeElement{attached: attached, listeners: map[string]func(){}}
}

func (e *fakeElement) Attached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attached
}

func (e *fakeElement) On(event string, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = fn
}

func (e *fakeElement) Off(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, event)
}

func (e *fakeElement) fire(event string) {
	e.mu.Lock()
	fn := e.listeners[event]
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (e *fakeElement) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

func newTestMap(t *testing.T) *Map {
	t.Helper()
	m, err := NewMap(nil, "osm")
	require.NoError(t, err)
	m.Resize(Size{Width: 1000, Height: 800})
	m.Pan(LatLng{Lat: 0, Lon: 0})
	return m
}

func TestFlipFor(t *testing.T) {
	size := Size{Width: 1000, Height: 800}
	assert.Equal(t, Flip{}, FlipFor(Point{X: 100, Y: 100}, size))
	assert.Equal(t, Flip{X: true}, FlipFor(Point{X: 741, Y: 100}, size))
	assert.Equal(t, Flip{}, FlipFor(Point{X: 740, Y: 540}, size))
	assert.Equal(t, Flip{Y: true}, FlipFor(Point{X: 10, Y: 541}, size))
	assert.Equal(t, Flip{X: true, Y: true}, FlipFor(Point{X: 990, Y: 790}, size))
}

func TestMarkerDefersAttachment(t *testing.T) {
	m := newTestMap(t)
	var selected []string
	mk := NewMarker("tokyo", region.Region{Name: "Tokyo", Lat: 35.6762, Lon: 139.6503, Continent: "Asia"}, m, func(k string) {
		selected = append(selected, k)
	})
	assert.Equal(t, "image/tokyo.jpg", mk.ImageURL)

	el := newFakeElement(false)
	assert.False(t, mk.Attach(el))
	assert.Zero(t, el.count())
	el.fire(EventClick)
	assert.Empty(t, selected)

	el.attached = true
	assert.True(t, mk.Attach(el))
	assert.Equal(t, 3, el.count())

	// Re-attaching the same element does not double-register.
	assert.True(t, mk.Attach(el))
	assert.Equal(t, 3, el.count())

	el.fire(EventClick)
	assert.Equal(t, []string{"tokyo"}, selected)

	mk.Detach()
	assert.Zero(t, el.count())
	el.fire(EventClick)
	assert.Equal(t, []string{"tokyo"}, selected)
	assert.False(t, mk.State().Listening)
}

func TestMarkerAttachNilElement(t *testing.T) {
	mk := NewMarker("lima", region.Region{Name: "Lima", Lat: -12, Lon: -77, Continent: "South America"}, newTestMap(t), nil)
	assert.False(t, mk.Attach(nil))
	mk.Click()
	mk.Detach()
}

func TestMarkerHoverFlipRecomputedEachTime(t *testing.T) {
	m := newTestMap(t)
	mk := NewMarker("east", region.Region{Name: "East", Lat: 0, Lon: 90, Continent: "Asia"}, m, nil)
	el := newFakeElement(true)
	require.True(t, mk.Attach(el))

	// x = 756 > 1000-260: flips horizontally, y = 400 does not.
	el.fire(EventMouseEnter)
	st := mk.State()
	assert.True(t, st.Hovering)
	assert.Equal(t, Flip{X: true}, st.Flip)
	assert.Equal(t, ZIndexHovered, st.ZIndex)

	el.fire(EventMouseLeave)
	st = mk.State()
	assert.False(t, st.Hovering)
	assert.Equal(t, Flip{}, st.Flip)
	assert.Equal(t, ZIndexResting, st.ZIndex)

	// After panning east the marker sits at the centre and no longer flips.
	m.Pan(LatLng{Lat: 0, Lon: 90})
	el.fire(EventMouseEnter)
	assert.Equal(t, Flip{}, mk.State().Flip)
}

func TestNewMarkers(t *testing.T) {
	reg, err := region.New(map[string]region.Region{
		"tokyo": {Name: "Tokyo", Lat: 35.6762, Lon: 139.6503, Continent: "Asia"},
		"paris": {Name: "Paris", Lat: 48.8566, Lon: 2.3522, Continent: "Europe"},
	})
	require.NoError(t, err)

	var selected []string
	markers := NewMarkers(reg, newTestMap(t), func(k string) { selected = append(selected, k) })
	require.Len(t, markers, 2)
	assert.Equal(t, "paris", markers[0].Key)
	assert.Equal(t, "tokyo", markers[1].Key)

	markers[1].Click()
	markers[1].Click()
	assert.Equal(t, []string{"tokyo", "tokyo"}, selected)
}
