package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/chart"
	"github.com/i474232898/weather-map/internal/drawer"
	"github.com/i474232898/weather-map/internal/mapview"
	"github.com/i474232898/weather-map/internal/proxy"
	"github.com/i474232898/weather-map/internal/region"
	"github.com/i474232898/weather-map/internal/session"
	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/weather"
)

var validate = validator.New()

// Deps are the services the HTTP layer serves.
type Deps struct {
	Gateway        *proxy.Gateway
	Weather        *weather.Service
	Regions        *region.Registry
	Basemaps       *mapview.Basemaps
	DefaultBasemap string
	Probes         *store.MemoryStore

	// Sessions serves per-page state; nil leaves the session routes out.
	Sessions *session.Manager

	// Now dates month ranges; defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":              "ok",
			"service":             "weather-map",
			"upstream_configured": d.Gateway.Configured(),
			"upstream":            nil,
		}
		if d.Probes != nil {
			if p, err := d.Probes.Latest(); err == nil {
				body["upstream"] = p
			}
		}
		if d.Sessions != nil {
			body["sessions"] = d.Sessions.Len()
		}
		return c.JSON(body)
	})

	api := app.Group("/api")

	api.Post("/weather", proxyHandler(d.Gateway, d.Logger))

	api.Get("/regions", func(c *fiber.Ctx) error {
		out := make(map[string]region.Region, d.Regions.Len())
		d.Regions.Each(func(key string, reg region.Region) {
			out[key] = reg
		})
		return c.JSON(fiber.Map{"regions": out})
	})

	api.Get("/viewport", func(c *fiber.Ctx) error {
		size := mapview.Size{
			Width:  c.QueryFloat("width", 0),
			Height: c.QueryFloat("height", 0),
		}.Normalize()

		return c.JSON(fiber.Map{
			"size":       size,
			"min_zoom":   mapview.MinZoom(size),
			"zoom":       mapview.InitialZoom(size),
			"max_zoom":   mapview.MaxZoom,
			"max_bounds": mapview.WorldBounds,
			"center":     mapview.DefaultCenter,
		})
	})

	api.Get("/months", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"year":   drawer.PickerYear,
			"months": drawer.MonthOptions(),
		})
	})

	api.Get("/months/:index/range", func(c *fiber.Ctx) error {
		m, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month index must be an integer")
		}
		r, err := drawer.MonthRange(m, d.Now())
		if err != nil {
			return monthError(err)
		}
		start, end := r.Format()
		return c.JSON(fiber.Map{"startdate": start, "enddate": end})
	})

	api.Get("/basemaps", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"default":  d.DefaultBasemap,
			"basemaps": d.Basemaps.List(),
		})
	})

	api.Get("/upstream/probes", func(c *fiber.Ctx) error {
		if d.Probes == nil {
			return c.JSON(fiber.Map{"probes": []store.Probe{}})
		}
		return c.JSON(fiber.Map{"probes": d.Probes.List()})
	})

	if d.Sessions != nil {
		registerSessionRoutes(api, d.Sessions)
	}

	app.Get("/charts/:region", func(c *fiber.Ctx) error {
		key := c.Params("region")
		reg, err := d.Regions.Get(key)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "unknown region")
		}

		req := weather.Request{
			RegionName: key,
			StartDate:  c.Query("startdate"),
			EndDate:    c.Query("enddate"),
		}
		if raw := c.Query("month"); raw != "" {
			m := c.QueryInt("month", -1)
			r, err := drawer.MonthRange(m, d.Now())
			if err != nil {
				return monthError(err)
			}
			req.StartDate, req.EndDate = r.Format()
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		info, err := d.Weather.Get(c.UserContext(), req)
		if err != nil {
			d.Logger.Warn("chart data unavailable", zap.String("region", key), zap.Error(err))
			switch {
			case errors.Is(err, weather.ErrNoData):
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested range")
			case errors.Is(err, weather.ErrMismatchedSeries):
				return fiber.NewError(fiber.StatusBadGateway, "upstream returned inconsistent series")
			default:
				return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
			}
		}

		set := chart.NewSet(nil)
		defer set.Dispose()
		if set.Update(info) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested range")
		}

		c.Type("html", "utf-8")
		return set.Render(c, "Weather: "+reg.Name)
	})
}

func monthError(err error) error {
	switch {
	case errors.Is(err, drawer.ErrMonthDisabled):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
}
