package chart

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/render"

	"github.com/i474232898/weather-map/internal/weather"
)

// Tracker counts live chart instances across views.
type Tracker struct {
	live atomic.Int64
}

// Live returns the number of instances built and not yet disposed.
func (t *Tracker) Live() int64 {
	if t == nil {
		return 0
	}
	return t.live.Load()
}

func (t *Tracker) add(n int64) {
	if t != nil {
		t.live.Add(n)
	}
}

// instance is one built rendering-library chart.
type instance struct {
	fig   Figure
	chart components.Charter
}

// View owns at most one chart instance of a given kind. Every Update
// disposes the previous instance before building the next.
type View struct {
	kind      Kind
	figureFor func(*weather.Info) (Figure, bool)
	tracker   *Tracker

	mu   sync.Mutex
	inst *instance
}

// NewHumidityView creates an empty humidity view.
func NewHumidityView(t *Tracker) *View {
	return &View{kind: KindHumidity, figureFor: HumidityFigure, tracker: t}
}

// NewPrecipitationView creates an empty precipitation view.
func NewPrecipitationView(t *Tracker) *View {
	return &View{kind: KindPrecipitation, figureFor: PrecipitationFigure, tracker: t}
}

// NewTemperatureView creates an empty temperature view.
func NewTemperatureView(t *Tracker) *View {
	return &View{kind: KindTemperature, figureFor: TemperatureFigure, tracker: t}
}

// Kind returns the chart kind.
func (v *View) Kind() Kind { return v.kind }

// Update replaces the chart with one built from info. Empty or mismatched
// input leaves the view empty. It reports whether a chart was built.
func (v *View) Update(info *weather.Info) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.disposeLocked()
	fig, ok := v.figureFor(info)
	if !ok {
		return false
	}
	v.inst = &instance{fig: fig, chart: build(fig)}
	v.tracker.add(1)
	return true
}

// Dispose drops the current instance, if any.
func (v *View) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disposeLocked()
}

func (v *View) disposeLocked() {
	if v.inst == nil {
		return
	}
	v.inst = nil
	v.tracker.add(-1)
}

// Figure returns the figure of the current instance.
func (v *View) Figure() (Figure, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inst == nil {
		return Figure{}, false
	}
	return v.inst.fig, true
}

// Charter returns the current go-echarts chart, or nil.
func (v *View) Charter() components.Charter {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inst == nil {
		return nil
	}
	return v.inst.chart
}

// Render writes the chart as a standalone HTML document. An empty view
// writes nothing.
func (v *View) Render(w io.Writer) error {
	c := v.Charter()
	if c == nil {
		return nil
	}
	r, ok := c.(render.Renderer)
	if !ok {
		return nil
	}
	return r.Render(w)
}
