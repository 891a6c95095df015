package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/common"
	"github.com/i474232898/weather-map/internal/weather"
)

// WeatherPath is the upstream endpoint weather requests are forwarded to.
const WeatherPath = "/tasks/get"

// RequestIDHeader carries the correlation id to the upstream.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 10 << 20

var (
	// ErrNotConfigured is returned before any network call when no base URL is set.
	ErrNotConfigured = errors.New("backend base URL not configured")

	// ErrCircuitOpen is returned while the breaker rejects upstream calls.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrBodyTooLarge is returned when the upstream answer exceeds the relay limit.
	ErrBodyTooLarge = errors.New("upstream response body too large")

	// ErrUpstreamStatus is returned by FetchWeather for non-2xx answers.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")

	errNoHTTPClient = errors.New("http client not configured")
)

// Result is an upstream answer relayed as-is. Data is nil when the body was
// not valid JSON.
type Result struct {
	Status int
	OK     bool
	Data   json.RawMessage
}

// Gateway forwards JSON requests to the configured upstream. It never caches
// and never retries.
type Gateway struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
	maxBody int64
}

// NewGateway creates a Gateway. An empty baseURL is accepted; every call then
// fails with ErrNotConfigured.
func NewGateway(baseURL string, client *http.Client, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-upstream",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// An oversized answer still proves the upstream is up.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrBodyTooLarge)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Gateway{
		baseURL: baseURL,
		client:  client,
		circuit: cb,
		logger:  logger,
		maxBody: maxBodyBytes,
	}
}

// Configured reports whether an upstream base URL is set.
func (g *Gateway) Configured() bool {
	return g.baseURL != ""
}

// Forward sends a weather request upstream and relays the answer.
func (g *Gateway) Forward(ctx context.Context, req weather.Request, requestID string) (*Result, error) {
	return g.Post(ctx, WeatherPath, req, requestID)
}

// Post marshals body and POSTs it to path under the base URL.
func (g *Gateway) Post(ctx context.Context, path string, body any, requestID string) (*Result, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode upstream body: %w", err)
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, common.JoinURL(g.baseURL, path), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-store")
		req.Header.Set(RequestIDHeader, requestID)
		return req, nil
	}

	started := time.Now()
	res, err := g.do(buildRequest)
	if err != nil {
		g.logger.Error("upstream request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, err
	}

	g.logger.Debug("upstream responded",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", res.Status),
		zap.Bool("json", res.Data != nil),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

// FetchWeather implements weather.Fetcher on top of Forward.
func (g *Gateway) FetchWeather(ctx context.Context, req weather.Request) (*weather.Info, error) {
	res, err := g.Forward(ctx, req.WithDefaults(), "")
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, res.Status)
	}
	if res.Data == nil || bytes.Equal(bytes.TrimSpace(res.Data), []byte("null")) {
		return nil, weather.ErrNoData
	}

	var info weather.Info
	if err := json.Unmarshal(res.Data, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrNoData, err)
	}
	return &info, nil
}

// Probe checks that the upstream answers at all. Any HTTP status counts as
// reachable; only transport failures are errors.
func (g *Gateway) Probe(ctx context.Context) (int, error) {
	if !g.Configured() {
		return 0, ErrNotConfigured
	}
	if g.client == nil {
		return 0, errNoHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return resp.StatusCode, nil
}

// do executes one request through the circuit breaker. Upstream status codes
// are relayed, not treated as failures.
func (g *Gateway) do(buildRequest func() (*http.Request, error)) (*Result, error) {
	if g.client == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}

	out, err := g.circuit.Execute(func() (interface{}, error) {
		resp, execErr := g.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, g.maxBody+1))
		if readErr != nil {
			return nil, readErr
		}
		if int64(len(raw)) > g.maxBody {
			g.logger.Warn("upstream body exceeds relay limit",
				zap.Int("status", resp.StatusCode),
				zap.Int64("limit", g.maxBody),
			)
			return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, g.maxBody)
		}

		res := &Result{
			Status: resp.StatusCode,
			OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		}
		if json.Valid(raw) {
			res.Data = raw
		} else if len(raw) > 0 && !common.HasAny(resp.Header.Get("Content-Type"), "json") {
			g.logger.Debug("upstream answered with a non-JSON body",
				zap.String("content_type", resp.Header.Get("Content-Type")),
			)
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	res, ok := out.(*Result)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return res, nil
}
