package chart

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	colorHumidity = "rgb(34, 197, 94)"
	colorPrecip   = "rgb(59, 130, 246)"
	colorMax      = "rgba(239, 68, 68, 0.6)"
	colorMin      = "rgba(34, 197, 94, 0.6)"
	colorAvg      = "rgb(59, 130, 246)"
	// Band mask: the min fill paints the chart background over the max fill.
	colorBackground = "#ffffff"
)

// build turns a figure into a go-echarts chart.
func build(fig Figure) components.Charter {
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fig.Title,
			ChartID:   string(fig.Kind),
			Width:     "100%",
			Height:    "320px",
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "24px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(yAxis(fig)),
	}

	switch fig.Kind {
	case KindPrecipitation:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(fig.Labels)
		for _, s := range fig.Series {
			bar.AddSeries(s.Name, barData(s.Values),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrecip}),
			)
		}
		return bar

	case KindTemperature:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(fig.Labels)
		for _, s := range fig.Series {
			line.AddSeries(s.Name, lineData(s.Values), temperatureSeriesOpts(s.Name)...)
		}
		return line

	default:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(fig.Labels)
		for _, s := range fig.Series {
			line.AddSeries(s.Name, lineData(s.Values),
				charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHumidity}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}),
			)
		}
		return line
	}
}

func yAxis(fig Figure) opts.YAxis {
	y := opts.YAxis{Name: fig.YName}
	if fig.YMin != nil {
		y.Min = *fig.YMin
	}
	if fig.YMax != nil {
		y.Max = *fig.YMax
	}
	if fig.Kind == KindHumidity {
		y.AxisLabel = &opts.AxisLabel{Formatter: "{value}%"}
	}
	return y
}

func temperatureSeriesOpts(name string) []charts.SeriesOpts {
	switch name {
	case SeriesTempMax:
		return []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorMax, Width: 1}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: "rgba(239, 68, 68, 0.12)", Opacity: opts.Float(1)}),
		}
	case SeriesTempMin:
		return []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorMin, Width: 1, Type: "dashed"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorBackground, Opacity: opts.Float(1)}),
		}
	default:
		return []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorAvg, Width: 2}),
		}
	}
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func barData(values []float64) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: v}
	}
	return out
}
