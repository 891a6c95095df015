package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/weather-map/internal/weather"
)

const tokyoPayload = `{"region_name":"tokyo","dates":["2025-09-01","2025-09-02"],` +
	`"temperatures":[27.1,27.5],"precipitation":[0,3.2],"humidity":[70,82],` +
	`"temperature_max":[31,30],"temperature_min":[24,25]}`

func TestGatewayForward(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("relays status and JSON body", func(t *testing.T) {
		var got weather.Request
		var headers http.Header
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, WeatherPath, r.URL.Path)
			headers = r.Header.Clone()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(tokyoPayload))
		}))
		defer upstream.Close()

		gw := NewGateway(upstream.URL+"/", upstream.Client(), log)
		res, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo", StartDate: "2025-09-01", EndDate: "2025-09-02"}, "req-1")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.Status)
		assert.True(t, res.OK)
		assert.JSONEq(t, tokyoPayload, string(res.Data))
		assert.Equal(t, weather.Request{RegionName: "tokyo", StartDate: "2025-09-01", EndDate: "2025-09-02"}, got)
		assert.Equal(t, "application/json", headers.Get("Content-Type"))
		assert.Equal(t, "application/json", headers.Get("Accept"))
		assert.Equal(t, "no-store", headers.Get("Cache-Control"))
		assert.Equal(t, "req-1", headers.Get(RequestIDHeader))
	})

	t.Run("relays upstream error status", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"unknown region"}`))
		}))
		defer upstream.Close()

		gw := NewGateway(upstream.URL, upstream.Client(), log)
		res, err := gw.Forward(context.Background(), weather.Request{RegionName: "atlantis"}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.Status)
		assert.False(t, res.OK)
		assert.JSONEq(t, `{"message":"unknown region"}`, string(res.Data))
	})

	t.Run("non JSON body becomes nil data", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer upstream.Close()

		gw := NewGateway(upstream.URL, upstream.Client(), log)
		res, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Nil(t, res.Data)
	})

	t.Run("missing base URL fails before any call", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer upstream.Close()

		gw := NewGateway("", upstream.Client(), log)
		_, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Zero(t, atomic.LoadInt32(&calls))
		assert.False(t, gw.Configured())
	})

	t.Run("unreachable upstream is an error", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := upstream.URL
		upstream.Close()

		gw := NewGateway(url, &http.Client{Timeout: time.Second}, log)
		_, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
		require.Error(t, err)
	})

	t.Run("oversized body is an error, not a truncated relay", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tokyoPayload))
		}))
		defer upstream.Close()

		gw := NewGateway(upstream.URL, upstream.Client(), log)
		gw.maxBody = int64(len(tokyoPayload)) - 1
		for i := 0; i < 6; i++ {
			_, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
			require.ErrorIs(t, err, ErrBodyTooLarge)
		}

		// Exactly at the limit is relayed whole.
		gw.maxBody = int64(len(tokyoPayload))
		res, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
		require.NoError(t, err)
		assert.JSONEq(t, tokyoPayload, string(res.Data))
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := upstream.URL
		upstream.Close()

		gw := NewGateway(url, &http.Client{Timeout: time.Second}, log)
		for i := 0; i < 5; i++ {
			_, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
			require.Error(t, err)
		}
		_, err := gw.Forward(context.Background(), weather.Request{RegionName: "tokyo"}, "")
		assert.ErrorIs(t, err, ErrCircuitOpen)
	})
}

func TestGatewayFetchWeather(t *testing.T) {
	log := zaptest.NewLogger(t)

	serve := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	}

	t.Run("decodes payload", func(t *testing.T) {
		upstream := serve(http.StatusOK, tokyoPayload)
		defer upstream.Close()

		info, err := NewGateway(upstream.URL, upstream.Client(), log).FetchWeather(context.Background(), weather.Request{RegionName: "tokyo"})
		require.NoError(t, err)
		assert.Equal(t, "tokyo", info.RegionName)
		assert.Equal(t, 2, info.Len())
		assert.Equal(t, []float64{0, 3.2}, info.Precipitation)
	})

	t.Run("null payload is no data", func(t *testing.T) {
		upstream := serve(http.StatusOK, "null")
		defer upstream.Close()

		_, err := NewGateway(upstream.URL, upstream.Client(), log).FetchWeather(context.Background(), weather.Request{RegionName: "tokyo"})
		assert.ErrorIs(t, err, weather.ErrNoData)
	})

	t.Run("garbage payload is no data", func(t *testing.T) {
		upstream := serve(http.StatusOK, "not json")
		defer upstream.Close()

		_, err := NewGateway(upstream.URL, upstream.Client(), log).FetchWeather(context.Background(), weather.Request{RegionName: "tokyo"})
		assert.ErrorIs(t, err, weather.ErrNoData)
	})

	t.Run("non success status", func(t *testing.T) {
		upstream := serve(http.StatusBadGateway, `{"error":"down"}`)
		defer upstream.Close()

		_, err := NewGateway(upstream.URL, upstream.Client(), log).FetchWeather(context.Background(), weather.Request{RegionName: "tokyo"})
		assert.ErrorIs(t, err, ErrUpstreamStatus)
	})
}

func TestGatewayProbe(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	status, err := NewGateway(upstream.URL, upstream.Client(), nil).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)

	_, err = NewGateway("", upstream.Client(), nil).Probe(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
