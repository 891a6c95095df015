package weather

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of every date exchanged with the upstream.
const DateLayout = "2006-01-02"

// Default range used when a request leaves its dates empty.
const (
	DefaultStartDate = "2025-09-01"
	DefaultEndDate   = "2025-09-20"
)

var (
	// ErrNoData is returned when the upstream answered without a usable payload.
	ErrNoData = errors.New("no weather data")

	// ErrMismatchedSeries is returned when the parallel series of an Info differ in length.
	ErrMismatchedSeries = errors.New("weather series lengths differ")
)

// Info is a bundle of parallel, date-indexed series for one region and date range.
// Index i of every series refers to Dates[i]. An Info is replaced wholesale, never merged.
type Info struct {
	RegionName     string    `json:"region_name"`
	Dates          []string  `json:"dates"`
	Temperatures   []float64 `json:"temperatures"`
	Precipitation  []float64 `json:"precipitation"`
	Humidity       []float64 `json:"humidity"`
	TemperatureMax []float64 `json:"temperature_max"`
	TemperatureMin []float64 `json:"temperature_min"`
}

// Len returns the number of dates.
func (i *Info) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Dates)
}

// Validate reports ErrMismatchedSeries when any series differs in length from Dates.
func (i *Info) Validate() error {
	if i == nil {
		return ErrNoData
	}
	n := len(i.Dates)
	series := map[string][]float64{
		"temperatures":    i.Temperatures,
		"precipitation":   i.Precipitation,
		"humidity":        i.Humidity,
		"temperature_max": i.TemperatureMax,
		"temperature_min": i.TemperatureMin,
	}
	for name, s := range series {
		if len(s) != n {
			return fmt.Errorf("%w: %s has %d values, dates has %d", ErrMismatchedSeries, name, len(s), n)
		}
	}
	return nil
}

// Request asks the upstream for one region over an inclusive date range.
type Request struct {
	RegionName string `json:"region_name" validate:"required"`
	StartDate  string `json:"startdate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"enddate" validate:"omitempty,datetime=2006-01-02"`
}

// WithDefaults fills empty dates with the default range.
func (r Request) WithDefaults() Request {
	if r.StartDate == "" {
		r.StartDate = DefaultStartDate
	}
	if r.EndDate == "" {
		r.EndDate = DefaultEndDate
	}
	return r
}

// FormatDate renders t in DateLayout using t's own calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
