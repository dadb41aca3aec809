// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/config"
	"cloudeng.io/prayertimes/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spec = `
locations:
  - name: makkah
    latitude: 21.4225
    longitude: 39.8262
    timezone: Asia/Riyadh
  - name: arctic
    latitude: 80
    longitude: 0
    timezone: UTC
`

func newServer(t *testing.T, cfgSpec string) (*server.Server, *server.Metrics) {
	t.Helper()
	cfg, err := config.Parse([]byte(cfgSpec))
	require.NoError(t, err)
	metrics := server.NewMetrics(prometheus.NewRegistry())
	now := func() time.Time {
		return time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	}
	srv, err := server.New(cfg, metrics, server.WithNow(now))
	require.NoError(t, err)
	return srv, metrics
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestSchedule(t *testing.T) {
	srv, metrics := newServer(t, spec)
	h := srv.Handler()

	rec := get(t, h, "/v1/schedule?lat=21.4225&lon=39.8262&date=2024-06-01&tz=Asia/Riyadh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	s := decode[astronomy.DailySolarSchedule](t, rec)
	assert.Equal(t, "2024-06-01", s.Date)
	assert.Equal(t, "04:14", s.Dawn.Value)
	assert.Equal(t, "05:38", s.Sunrise.Value)
	assert.Equal(t, "12:19", s.SolarNoon.Value)
	assert.Equal(t, "15:35", s.Afternoon.Value)
	assert.Equal(t, "18:59", s.Sunset.Value)
	assert.Equal(t, "20:23", s.Dusk.Value)
	assert.Equal(t, astronomy.TierAstronomical, s.TwilightTier)

	rec = get(t, h, "/v1/schedule?lat=21.4225&lon=39.8262&date=2024-06-01&tz=Asia/Riyadh&asr=hanafi")
	require.Equal(t, http.StatusOK, rec.Code)
	s = decode[astronomy.DailySolarSchedule](t, rec)
	assert.Equal(t, "16:55", s.Afternoon.Value)
	assert.Equal(t, 2.0, s.ShadowFactor)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Schedules))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("/v1/schedule", "200")))
}

func TestLocationSchedule(t *testing.T) {
	srv, _ := newServer(t, spec)
	h := srv.Handler()

	// The date defaults to today in the location's timezone.
	rec := get(t, h, "/v1/locations/Makkah/schedule")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[astronomy.DailySolarSchedule](t, rec)
	assert.Equal(t, "2024-06-01", s.Date)
	assert.Equal(t, "Asia/Riyadh", s.Timezone)
	assert.Equal(t, "05:38", s.Sunrise.Value)

	rec = get(t, h, "/v1/locations/arctic/schedule?date=2024-06-21")
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[map[string]any](t, rec)
	assert.Nil(t, raw["sunrise"])
	assert.Nil(t, raw["sunset"])
	assert.Equal(t, "continuous", raw["twilightTier"])

	rec = get(t, h, "/v1/locations/medina/schedule")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "unknown location")

	rec = get(t, h, "/v1/locations")
	require.Equal(t, http.StatusOK, rec.Code)
	locations := decode[[]config.Location](t, rec)
	require.Len(t, locations, 2)
	assert.Equal(t, "makkah", locations[0].Name)
}

func TestCalendar(t *testing.T) {
	srv, metrics := newServer(t, spec)
	h := srv.Handler()

	rec := get(t, h, "/v1/calendar?lat=21.4225&lon=39.8262&from=2024-06-01&to=2024-06-30&tz=UTC%2B03:00")
	require.Equal(t, http.StatusOK, rec.Code)
	schedules := decode[[]astronomy.DailySolarSchedule](t, rec)
	require.Len(t, schedules, 30)
	assert.Equal(t, "2024-06-01", schedules[0].Date)
	assert.Equal(t, "2024-06-30", schedules[29].Date)
	assert.Equal(t, "05:38", schedules[0].Sunrise.Value)
	assert.Equal(t, "UTC+03:00", schedules[0].Timezone)
	assert.Equal(t, 30.0, testutil.ToFloat64(metrics.Schedules))

	rec = get(t, h, "/v1/locations/makkah/calendar?from=2024-02-01&to=2024-02-29")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]astronomy.DailySolarSchedule](t, rec), 29)

	for _, url := range []string{
		"/v1/calendar?lat=0&lon=0&from=2024-01-01&to=2025-01-01&tz=UTC",
		"/v1/calendar?lat=0&lon=0&from=0001-01-01&to=9999-12-31&tz=UTC",
		"/v1/locations/makkah/calendar?from=0001-01-01&to=9999-12-31",
	} {
		rec = get(t, h, url)
		require.Equal(t, http.StatusBadRequest, rec.Code, url)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid date range", url)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/locations/makkah/calendar?from=2024-02-01&to=2024-02-29", nil).WithContext(ctx)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBadRequests(t *testing.T) {
	srv, metrics := newServer(t, spec)
	h := srv.Handler()
	for _, tc := range []struct {
		url, msg string
	}{
		{"/v1/schedule?lon=0&tz=UTC", "missing \"lat\""},
		{"/v1/schedule?lat=x&lon=0&tz=UTC", "invalid parameter"},
		{"/v1/schedule?lat=91&lon=0&tz=UTC", "invalid coordinate"},
		{"/v1/schedule?lat=0&lon=0&tz=UTC&date=2023-02-29", "invalid date"},
		{"/v1/schedule?lat=0&lon=0&tz=Not/AZone", "invalid timezone"},
		{"/v1/schedule?lat=0&lon=0", "invalid timezone"},
		{"/v1/schedule?lat=0&lon=0&tz=Local", "invalid timezone"},
		{"/v1/schedule?lat=0&lon=0&tz=UTC&asr=0", "invalid shadow factor"},
		{"/v1/calendar?lat=0&lon=0&tz=UTC&from=2024-02-01&to=2024-01-01", "invalid date range"},
	} {
		rec := get(t, h, tc.url)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.url)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], tc.msg, tc.url)
	}
	assert.Equal(t, 8.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("/v1/schedule", "400")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Schedules))
}

func TestTimezoneFallback(t *testing.T) {
	srv, metrics := newServer(t, "fallback_timezone: UTC\n")
	rec := get(t, srv.Handler(), "/v1/schedule?lat=0&lon=0&date=2023-03-20&tz=Not/AZone")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[astronomy.DailySolarSchedule](t, rec)
	assert.True(t, s.TimezoneFallback)
	assert.Equal(t, "UTC", s.Timezone)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TimezoneFallbacks))
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newServer(t, spec)
	h := srv.Handler()
	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	get(t, h, "/v1/locations/makkah/schedule")
	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "prayertimes_http_requests_total")
	assert.Contains(t, body, `route="/v1/locations/{name}/schedule"`)
	assert.Contains(t, body, "prayertimes_schedules_computed_total 1")
}

func TestServeWithShutdown(t *testing.T) {
	var logged strings.Builder
	var mu sync.Mutex
	logger := slog.New(slog.NewJSONHandler(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return logged.Write(p)
	}), nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, _ := newServer(t, spec)
	ln, hs, err := server.NewHTTPServer(ctx, "127.0.0.1:0", srv.Handler())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ServeWithShutdown(ctx, ln, hs, time.Second); err != nil {
			t.Errorf("ServeWithShutdown returned an unexpected error: %v", err)
		}
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")

	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, logged.String(), "shutting down")
}

func TestRequestContextOutlivesShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(ctxlog.WithLogger(context.Background(), logger))
	srv, _ := newServer(t, spec)
	ln, hs, err := server.NewHTTPServer(ctx, "127.0.0.1:0", srv.Handler())
	require.NoError(t, err)
	defer ln.Close()
	cancel()
	base := hs.BaseContext(ln)
	assert.NoError(t, base.Err())
	assert.Same(t, logger, ctxlog.Logger(base))
}

type writerFunc func(p []byte) (int, error)

func (fn writerFunc) Write(p []byte) (int, error) {
	return fn(p)
}
