package drawer

import (
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/weather-map/internal/weather"
)

// PickerYear is the only year the month picker offers.
const PickerYear = 2025

// MaxMonth is the last selectable month index (September).
const MaxMonth = 8

var (
	// MinDate and MaxDate bound every range the picker produces.
	MinDate = time.Date(PickerYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(PickerYear, time.September, 20, 0, 0, 0, 0, time.UTC)
)

var (
	ErrMonthOutOfRange = errors.New("month index must be between 0 and 11")
	ErrMonthDisabled   = errors.New("month is not selectable")
)

// MonthOption is one entry of the month picker.
type MonthOption struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// MonthOptions lists the twelve months of PickerYear; months after MaxMonth
// are disabled.
func MonthOptions() []MonthOption {
	out := make([]MonthOption, 12)
	for i := range out {
		m := time.Month(i + 1)
		out[i] = MonthOption{
			Index:    i,
			Label:    fmt.Sprintf("%s %d", m.String()[:3], PickerYear),
			Disabled: i > MaxMonth,
		}
	}
	return out
}

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Format renders both ends in the wire date layout.
func (r DateRange) Format() (start, end string) {
	return weather.FormatDate(r.Start), weather.FormatDate(r.End)
}

// MonthRange computes the range requested by picking month m (0-based) at
// time now. Months strictly before the current one cover the whole month;
// otherwise the range stops at min(today, MaxDate). Both ends are then
// clamped into [MinDate, MaxDate].
func MonthRange(m int, now time.Time) (DateRange, error) {
	if m < 0 || m > 11 {
		return DateRange{}, fmt.Errorf("%w: %d", ErrMonthOutOfRange, m)
	}
	if m > MaxMonth {
		return DateRange{}, fmt.Errorf("%w: %d", ErrMonthDisabled, m)
	}

	month := time.Month(m + 1)
	start := time.Date(PickerYear, month, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var end time.Time
	if m < int(now.Month())-1 || now.Year() > PickerYear {
		end = start.AddDate(0, 1, -1)
	} else {
		end = minTime(today, MaxDate)
	}

	return DateRange{
		Start: clamp(start, MinDate, MaxDate),
		End:   clamp(end, MinDate, MaxDate),
	}, nil
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func clamp(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
