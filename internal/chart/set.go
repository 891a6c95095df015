package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/i474232898/weather-map/internal/weather"
)

// Set groups the three drawer charts.
type Set struct {
	Humidity      *View
	Precipitation *View
	Temperature   *View
}

// NewSet creates empty views sharing one tracker; t may be nil.
func NewSet(t *Tracker) *Set {
	return &Set{
		Humidity:      NewHumidityView(t),
		Precipitation: NewPrecipitationView(t),
		Temperature:   NewTemperatureView(t),
	}
}

func (s *Set) views() []*View {
	return []*View{s.Humidity, s.Precipitation, s.Temperature}
}

// Update rebuilds every view from info and returns how many were built.
func (s *Set) Update(info *weather.Info) int {
	n := 0
	for _, v := range s.views() {
		if v.Update(info) {
			n++
		}
	}
	return n
}

// Dispose empties every view.
func (s *Set) Dispose() {
	for _, v := range s.views() {
		v.Dispose()
	}
}

// Render writes one HTML page titled title holding every built chart.
func (s *Set) Render(w io.Writer, title string) error {
	page := components.NewPage()
	page.PageTitle = title
	for _, v := range s.views() {
		if c := v.Charter(); c != nil {
			page.AddCharts(c)
		}
	}
	return page.Render(w)
}

// Built returns how many views currently hold a chart.
func (s *Set) Built() int {
	n := 0
	for _, v := range s.views() {
		if v.Charter() != nil {
			n++
		}
	}
	return n
}
