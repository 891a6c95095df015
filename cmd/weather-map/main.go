package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-map/internal/api/http"
	"github.com/i474232898/weather-map/internal/chart"
	"github.com/i474232898/weather-map/internal/config"
	"github.com/i474232898/weather-map/internal/logger"
	"github.com/i474232898/weather-map/internal/mapview"
	"github.com/i474232898/weather-map/internal/proxy"
	"github.com/i474232898/weather-map/internal/region"
	"github.com/i474232898/weather-map/internal/scheduler"
	"github.com/i474232898/weather-map/internal/session"
	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/weather"
)

func main() {
	// Load configuration.
	cfg, note, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if note != "" {
		zl.Info(note)
	}

	regions, err := region.Load(cfg.RegionsFile)
	if err != nil {
		zl.Fatal("failed to load regions", zap.String("file", cfg.RegionsFile), zap.Error(err))
	}

	basemaps := mapview.DefaultBasemaps()
	if _, err := basemaps.Get(cfg.DefaultBasemap); err != nil {
		zl.Fatal("invalid default basemap", zap.String("basemap", cfg.DefaultBasemap), zap.Error(err))
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	gateway := proxy.NewGateway(cfg.UpstreamBaseURL, httpClient, zl.Named("proxy"))
	if !gateway.Configured() {
		zl.Warn("WEATHER_API_BASE_URL is not set; weather requests will fail")
	}
	service := weather.NewService(gateway, zl.Named("weather"))

	// Periodic upstream reachability probe with bounded history.
	probes := store.NewMemoryStore(cfg.ProbeHistory, cfg.ProbeMaxAge)
	if gateway.Configured() {
		sched := scheduler.New(gateway, probes, cfg.ProbeInterval, cfg.HTTPTimeout, zl.Named("probe"))
		if err := sched.Start(); err != nil {
			zl.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	// One controller per browser page.
	sessions, err := session.NewManager(session.Config{
		Regions:  regions,
		Source:   service,
		Basemaps: basemaps,
		Basemap:  cfg.DefaultBasemap,
		Charts:   &chart.Tracker{},
		TTL:      cfg.SessionTTL,
		Max:      cfg.MaxSessions,
		Logger:   zl.Named("session"),
	})
	if err != nil {
		zl.Fatal("failed to build session manager", zap.Error(err))
	}
	defer sessions.Close()
	stopSweeper, err := sessions.StartSweeper(time.Minute)
	if err != nil {
		zl.Fatal("failed to start session sweeper", zap.Error(err))
	}
	defer stopSweeper()

	app := fiber.New(fiber.Config{
		AppName:               "weather-map",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler(zl),
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(compress.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Gateway:        gateway,
		Weather:        service,
		Regions:        regions,
		Basemaps:       basemaps,
		DefaultBasemap: cfg.DefaultBasemap,
		Probes:         probes,
		Sessions:       sessions,
		Logger:         zl.Named("http"),
	})

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.Int("regions", regions.Len()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
