package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	// UpstreamBaseURL is the weather backend the proxy forwards to.
	// Empty is accepted here; the proxy rejects requests when it is unset.
	UpstreamBaseURL string

	HTTPTimeout time.Duration

	// RegionsFile points at the static region registry.
	RegionsFile string

	DefaultBasemap string

	// Upstream reachability probe.
	ProbeInterval time.Duration // 0 disables the probe
	ProbeHistory  int           // max number of probe results kept
	ProbeMaxAge   time.Duration

	// Server-side page sessions.
	SessionTTL  time.Duration
	MaxSessions int

	CORSOrigins string
	LogLevel    string
	Port        string
}

// Load reads configuration from .env and the environment with sensible defaults.
// A missing .env file is not an error; the returned note says so for logging.
func Load() (*AppConfig, string, error) {
	var note string
	if err := godotenv.Load(); err != nil {
		note = fmt.Sprintf("no .env file loaded: %v", err)
	}

	cfg, err := fromViper(newViper())
	return cfg, note, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	// BASR_API is the legacy variable name, still honoured.
	_ = v.BindEnv("WEATHER_API_BASE_URL", "WEATHER_API_BASE_URL", "BASR_API")

	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("REGIONS_FILE", "data/regions_list.json")
	v.SetDefault("DEFAULT_BASEMAP", "imagery")
	v.SetDefault("PROBE_INTERVAL", "5m")
	v.SetDefault("PROBE_HISTORY", 48)
	v.SetDefault("PROBE_MAX_AGE", "24h")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("MAX_SESSIONS", 1000)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		UpstreamBaseURL: strings.TrimSpace(v.GetString("WEATHER_API_BASE_URL")),
		RegionsFile:     v.GetString("REGIONS_FILE"),
		DefaultBasemap:  v.GetString("DEFAULT_BASEMAP"),
		ProbeHistory:    v.GetInt("PROBE_HISTORY"),
		MaxSessions:     v.GetInt("MAX_SESSIONS"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		Port:            v.GetString("PORT"),
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = parseDuration(v, "PROBE_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.ProbeMaxAge, err = parseDuration(v, "PROBE_MAX_AGE"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDuration(v, "SESSION_TTL"); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	if cfg.ProbeInterval < 0 {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: must not be negative")
	}
	if cfg.SessionTTL <= 0 || cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("SESSION_TTL and MAX_SESSIONS must be positive")
	}
	if cfg.RegionsFile == "" {
		return nil, fmt.Errorf("REGIONS_FILE must not be empty")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
