package controller

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/chart"
	"github.com/i474232898/weather-map/internal/drawer"
	"github.com/i474232898/weather-map/internal/mapview"
	"github.com/i474232898/weather-map/internal/region"
	"github.com/i474232898/weather-map/internal/weather"
)

// WeatherSource answers weather requests; *weather.Service satisfies it.
type WeatherSource interface {
	Get(ctx context.Context, req weather.Request) (*weather.Info, error)
}

// State is a snapshot of the page.
type State struct {
	SelectedKey string        `json:"selected_key,omitempty"`
	Title       string        `json:"title,omitempty"`
	Info        *weather.Info `json:"info"`
	Loading     bool          `json:"loading"`
	Charts      int           `json:"charts"`
	Drawer      drawer.View   `json:"drawer"`
}

// Controller glues region selection, fetching, the drawer and the charts.
// It owns the selected region and the payload; a payload is only accepted
// from the latest request.
type Controller struct {
	ctx     context.Context
	regions *region.Registry
	source  WeatherSource
	drawer  *drawer.Drawer
	mapView *mapview.Map
	charts  *chart.Set
	logger  *zap.Logger

	mu       sync.Mutex
	selected string
	info     *weather.Info
	seq      uint64

	wg sync.WaitGroup
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Regions *region.Registry
	Source  WeatherSource
	Drawer  *drawer.Drawer
	Map     *mapview.Map
	Charts  *chart.Set
	Logger  *zap.Logger
}

// New wires a controller to its drawer. ctx bounds every fetch.
func New(ctx context.Context, deps Deps) *Controller {
	c := &Controller{
		ctx:     ctx,
		regions: deps.Regions,
		source:  deps.Source,
		drawer:  deps.Drawer,
		mapView: deps.Map,
		charts:  deps.Charts,
		logger:  deps.Logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.drawer == nil {
		c.drawer = drawer.New(drawer.WithLogger(c.logger))
	}
	if c.charts == nil {
		c.charts = chart.NewSet(nil)
	}
	if c.mapView == nil {
		c.mapView = mapview.NewDefaultMap()
	}

	c.drawer.OnCloseRequest(c.CloseDrawer)
	c.drawer.OnMonthSelect(c.SelectMonth)
	c.drawer.OnChange(c.drawerChanged)
	return c
}

// Markers builds one marker per region whose clicks select that region.
func (c *Controller) Markers() []*mapview.Marker {
	return mapview.NewMarkers(c.regions, c.mapView, func(key string) {
		if err := c.SelectRegion(key); err != nil {
			c.logger.Warn("marker selection rejected", zap.String("region", key), zap.Error(err))
		}
	})
}

// Resize forwards a viewport change to the map.
func (c *Controller) Resize(s mapview.Size) mapview.View {
	c.drawer.SetViewportWidth(s.Normalize().Width)
	return c.mapView.Resize(s)
}

// SelectRegion opens the drawer, clears the payload and fetches the
// default range for key.
func (c *Controller) SelectRegion(key string) error {
	if _, err := c.regions.Get(key); err != nil {
		return fmt.Errorf("select region: %w", err)
	}

	c.drawer.Open()

	c.mu.Lock()
	c.selected = key
	seq := c.resetLocked()
	c.mu.Unlock()

	c.logger.Info("region selected", zap.String("region", key), zap.Uint64("seq", seq))
	c.fetch(seq, weather.Request{RegionName: key})
	return nil
}

// SelectMonth clears the payload and refetches the current region for the
// given range. Without a selection it does nothing.
func (c *Controller) SelectMonth(start, end string) {
	c.mu.Lock()
	key := c.selected
	if key == "" {
		c.mu.Unlock()
		return
	}
	seq := c.resetLocked()
	c.mu.Unlock()

	c.logger.Info("month selected",
		zap.String("region", key),
		zap.String("start", start),
		zap.String("end", end),
	)
	c.fetch(seq, weather.Request{RegionName: key, StartDate: start, EndDate: end})
}

// CloseDrawer closes the drawer and drops any in-flight response. The
// selection is cleared once the drawer has finished closing.
func (c *Controller) CloseDrawer() {
	c.mu.Lock()
	c.seq++
	c.mu.Unlock()
	c.drawer.Close()
}

// Drawer exposes the drawer for input events.
func (c *Controller) Drawer() *drawer.Drawer { return c.drawer }

// Map exposes the map model.
func (c *Controller) Map() *mapview.Map { return c.mapView }

// Charts exposes the chart views.
func (c *Controller) Charts() *chart.Set { return c.charts }

// State returns a snapshot of the page.
func (c *Controller) State() State {
	dv := c.drawer.View()

	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		SelectedKey: c.selected,
		Info:        c.info,
		Loading:     c.selected != "" && c.info == nil,
		Charts:      c.charts.Built(),
		Drawer:      dv,
	}
	if reg, err := c.regions.Get(c.selected); err == nil {
		st.Title = "Weather: " + reg.Name
	}
	return st
}

// Wait blocks until every started fetch has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// resetLocked clears the payload and returns the tag of the next request.
func (c *Controller) resetLocked() uint64 {
	c.info = nil
	c.charts.Dispose()
	c.seq++
	return c.seq
}

func (c *Controller) fetch(seq uint64, req weather.Request) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		info, err := c.source.Get(c.ctx, req)

		c.mu.Lock()
		defer c.mu.Unlock()

		if seq != c.seq {
			c.logger.Debug("discarding stale weather response",
				zap.String("region", req.RegionName),
				zap.Uint64("seq", seq),
				zap.Uint64("latest", c.seq),
			)
			return
		}
		if err != nil {
			c.logger.Error("weather fetch failed",
				zap.String("region", req.RegionName),
				zap.Error(err),
			)
			return
		}
		c.info = info
		c.charts.Update(info)
	}()
}

func (c *Controller) drawerChanged(v drawer.View) {
	if v.Mounted {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// A late notification must not clear a selection made after it.
	if c.drawer.Phase() != drawer.PhaseClosed {
		return
	}
	c.selected = ""
	c.resetLocked()
}
