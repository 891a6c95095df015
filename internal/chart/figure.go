package chart

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-map/internal/weather"
)

// Kind names one of the three weather charts.
type Kind string

const (
	KindHumidity      Kind = "humidity"
	KindPrecipitation Kind = "precipitation"
	KindTemperature   Kind = "temperature"
)

// Series is one named run of values, aligned with Figure.Labels.
type Series struct {
	Name   string
	Values []float64
}

// Figure is the library-independent description of a chart.
type Figure struct {
	Kind   Kind
	Title  string
	YName  string
	Labels []string
	Series []Series
	YMin   *float64
	YMax   *float64
}

// Points returns the number of points of every series, by name.
func (f Figure) Points() map[string]int {
	out := make(map[string]int, len(f.Series))
	for _, ser := range f.Series {
		out[ser.Name] = len(ser.Values)
	}
	return out
}

func ptr(f float64) *float64 { return &f }

// HumidityFigure describes the bounded 0-100% humidity line.
func HumidityFigure(info *weather.Info) (Figure, bool) {
	if !aligned(info, func(i *weather.Info) [][]float64 { return [][]float64{i.Humidity} }) {
		return Figure{}, false
	}
	return Figure{
		Kind:   KindHumidity,
		Title:  "Humidity",
		YName:  "Humidity (%)",
		Labels: Labels(info.Dates),
		Series: []Series{{Name: "Humidity (%)", Values: clone(info.Humidity)}},
		YMin:   ptr(0),
		YMax:   ptr(100),
	}, true
}

// PrecipitationFigure describes the zero-based precipitation bars.
func PrecipitationFigure(info *weather.Info) (Figure, bool) {
	if !aligned(info, func(i *weather.Info) [][]float64 { return [][]float64{i.Precipitation} }) {
		return Figure{}, false
	}
	return Figure{
		Kind:   KindPrecipitation,
		Title:  "Precipitation",
		YName:  "Precipitation (mm)",
		Labels: Labels(info.Dates),
		Series: []Series{{Name: "Precipitation (mm)", Values: clone(info.Precipitation)}},
		YMin:   ptr(0),
	}, true
}

// Series names of the temperature band.
const (
	SeriesTempMax = "Max temperature (°C)"
	SeriesTempMin = "Min temperature (°C)"
	SeriesTempAvg = "Avg temperature (°C)"
)

// TemperatureFigure describes the min/avg/max band. Series order is max, min,
// avg: the min series is filled over the max fill to shade only the band.
func TemperatureFigure(info *weather.Info) (Figure, bool) {
	if !aligned(info, func(i *weather.Info) [][]float64 {
		return [][]float64{i.TemperatureMax, i.TemperatureMin, i.Temperatures}
	}) {
		return Figure{}, false
	}
	return Figure{
		Kind:   KindTemperature,
		Title:  "Temperature",
		YName:  "Temperature (°C)",
		Labels: Labels(info.Dates),
		Series: []Series{
			{Name: SeriesTempMax, Values: clone(info.TemperatureMax)},
			{Name: SeriesTempMin, Values: clone(info.TemperatureMin)},
			{Name: SeriesTempAvg, Values: clone(info.Temperatures)},
		},
	}, true
}

// Labels turns wire dates into short axis labels such as "Sep 1".
// Unparseable dates are kept verbatim.
func Labels(dates []string) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		t, err := time.Parse(weather.DateLayout, d)
		if err != nil {
			out[i] = d
			continue
		}
		out[i] = fmt.Sprintf("%s %d", t.Month().String()[:3], t.Day())
	}
	return out
}

func aligned(info *weather.Info, pick func(*weather.Info) [][]float64) bool {
	if info == nil || len(info.Dates) == 0 {
		return false
	}
	for _, s := range pick(info) {
		if len(s) != len(info.Dates) {
			return false
		}
	}
	return true
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
