// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides prometheus metrics for the http API.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests          *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	Schedules         prometheus.Counter
	TimezoneFallbacks prometheus.Counter
}

// NewMetrics registers the API metrics with reg, a new registry is
// used if reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prayertimes_http_requests_total",
			Help: "Total http requests by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prayertimes_http_request_duration_seconds",
			Help:    "Duration of http requests by route",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"route"}),
		Schedules: factory.NewCounter(prometheus.CounterOpts{
			Name: "prayertimes_schedules_computed_total",
			Help: "Total number of daily schedules computed",
		}),
		TimezoneFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "prayertimes_timezone_fallbacks_total",
			Help: "Total number of schedules computed using the fallback timezone",
		}),
	}
}

// ObserveRequest records the outcome and duration of a request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveSchedules records the number of schedules computed and how
// many of them used the fallback timezone.
func (m *Metrics) ObserveSchedules(n int, fallback bool) {
	if m == nil {
		return
	}
	m.Schedules.Add(float64(n))
	if fallback {
		m.TimezoneFallbacks.Add(float64(n))
	}
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
