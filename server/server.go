// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package server provides an http JSON API for computing daily solar
// schedules.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/config"
	"cloudeng.io/prayertimes/datetime"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrUnknownLocation is returned for requests that refer to a location
// that is not configured.
var ErrUnknownLocation = errors.New("unknown location")

// ErrInvalidParameter is returned for missing or malformed query parameters.
var ErrInvalidParameter = errors.New("invalid parameter")

type options struct {
	now func() time.Time
}

// Option represents an option to New.
type Option func(o *options)

// WithNow sets the function used to determine the current time when
// no date is specified in a request.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Server implements the http API.
type Server struct {
	opts     options
	cfg      config.Config
	calcOpts []astronomy.Option
	metrics  *Metrics
	router   chi.Router
}

// New returns a new Server for the supplied configuration.
func New(cfg config.Config, metrics *Metrics, opts ...Option) (*Server, error) {
	calcOpts, err := cfg.CalculatorOptions()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		calcOpts: calcOpts,
		metrics:  metrics,
	}
	s.opts.now = time.Now
	for _, fn := range opts {
		fn(&s.opts)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Get("/healthz", s.healthz)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/schedule", s.schedule)
		r.Get("/calendar", s.calendar)
		r.Get("/locations", s.locations)
		r.Get("/locations/{name}/schedule", s.locationSchedule)
		r.Get("/locations/{name}/calendar", s.locationCalendar)
	})
	s.router = r
	return s, nil
}

// Handler returns the http.Handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if len(route) == 0 {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(route, status, time.Since(start))
		ctxlog.Logger(r.Context()).Debug("request", "method", r.Method, "url", r.URL.String(), "route", route, "status", status, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnknownLocation):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParameter),
		errors.Is(err, astronomy.ErrInvalidCoordinate),
		errors.Is(err, astronomy.ErrInvalidShadowFactor),
		errors.Is(err, astronomy.ErrInvalidRange),
		errors.Is(err, datetime.ErrInvalidDate),
		errors.Is(err, datetime.ErrInvalidTimezone):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		ctxlog.Logger(r.Context()).Error("request failed", "url", r.URL.String(), "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if len(val) == 0 {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidParameter, name)
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidParameter, name, err)
	}
	return f, nil
}

func parseCoordinate(r *http.Request) (astronomy.Coordinate, error) {
	lat, err := parseFloatParam(r, "lat")
	if err != nil {
		return astronomy.Coordinate{}, err
	}
	lon, err := parseFloatParam(r, "lon")
	if err != nil {
		return astronomy.Coordinate{}, err
	}
	coord := astronomy.Coordinate{Latitude: lat, Longitude: lon}
	return coord, coord.Validate()
}

// parseDate parses the named date parameter, defaulting to the current
// date in the requested timezone, or UTC if that is invalid.
func (s *Server) parseDate(r *http.Request, name, timezone string) (datetime.CalendarDate, error) {
	val := r.URL.Query().Get(name)
	if len(strings.TrimSpace(val)) > 0 {
		return datetime.ParseCalendarDate(val)
	}
	now := s.opts.now()
	if loc, err := datetime.LoadLocation(timezone); err == nil {
		now = now.In(loc)
	} else {
		now = now.UTC()
	}
	return datetime.CalendarDateFromTime(now), nil
}

func (s *Server) calculator(r *http.Request) (*astronomy.Calculator, error) {
	opts := s.calcOpts
	if val := r.URL.Query().Get("asr"); len(val) > 0 {
		sf, err := astronomy.ParseShadowFactor(val)
		if err != nil {
			return nil, err
		}
		opts = append(opts[:len(opts):len(opts)], astronomy.WithShadowFactor(sf))
	}
	return astronomy.NewCalculator(opts...)
}

func (s *Server) lookup(r *http.Request) (config.Location, error) {
	name := chi.URLParam(r, "name")
	loc, ok := s.cfg.Location(name)
	if !ok {
		return config.Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return loc, nil
}

func (s *Server) writeSchedule(w http.ResponseWriter, r *http.Request, coord astronomy.Coordinate, timezone string) {
	date, err := s.parseDate(r, "date", timezone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	calc, err := s.calculator(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schedule, err := calc.Schedule(coord, date, timezone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveSchedules(1, schedule.TimezoneFallback)
	writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) writeCalendar(w http.ResponseWriter, r *http.Request, coord astronomy.Coordinate, timezone string) {
	from, err := s.parseDate(r, "from", timezone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to := from
	if val := r.URL.Query().Get("to"); len(val) > 0 {
		if to, err = datetime.ParseCalendarDate(val); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	calc, err := s.calculator(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	schedules, err := calc.Calendar(r.Context(), coord, from, to, timezone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveSchedules(len(schedules), len(schedules) > 0 && schedules[0].TimezoneFallback)
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) schedule(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSchedule(w, r, coord, r.URL.Query().Get("tz"))
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCalendar(w, r, coord, r.URL.Query().Get("tz"))
}

func (s *Server) locations(w http.ResponseWriter, _ *http.Request) {
	locations := s.cfg.Locations
	if locations == nil {
		locations = []config.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

func (s *Server) locationSchedule(w http.ResponseWriter, r *http.Request) {
	loc, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSchedule(w, r, loc.Coordinate(), loc.Timezone)
}

func (s *Server) locationCalendar(w http.ResponseWriter, r *http.Request) {
	loc, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCalendar(w, r, loc.Coordinate(), loc.Timezone)
}
