// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloudeng.io/prayertimes/alarms"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/config"
	"cloudeng.io/prayertimes/datetime"
	"github.com/google/go-cmp/cmp"
)

const spec = `
asr: hanafi
fallback_timezone: UTC
locations:
  - name: Makkah
    latitude: 21.4225
    longitude: 39.8262
    timezone: Asia/Riyadh
    alarms:
      - event: dawn
        offset: -10
        label: wake up
      - event: asr
  - name: sydney
    latitude: -33.8688
    longitude: 151.2093
    timezone: Australia/Sydney
logging:
  level: 2
  format: text
server:
  address: :9090
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(spec))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.LocationNames(), []string{"Makkah", "sydney"}; !cmp.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	loc, ok := cfg.Location(" makkah ")
	if !ok {
		t.Fatalf("makkah not found")
	}
	want := []alarms.Spec{
		{Event: astronomy.EventDawn, OffsetMinutes: -10, Label: "wake up"},
		{Event: astronomy.EventAfternoon},
	}
	if diff := cmp.Diff(want, loc.Alarms); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got, want := loc.Coordinate(), (astronomy.Coordinate{Latitude: 21.4225, Longitude: 39.8262}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	place, err := loc.Place()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := place.TimeLocation.String(), "Asia/Riyadh"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := cfg.Location("medina"); ok {
		t.Errorf("unexpected location")
	}
	if got, want := cfg.Logging.Level, 2; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := cfg.Server.Address, ":9090"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := cfg.Server.ShutdownGrace, config.DefaultShutdownGrace; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	calc, err := cfg.NewCalculator()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := calc.ShadowFactor(), 2.0; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	s, err := calc.Schedule(loc.Coordinate(), datetime.NewCalendarDate(2024, 6, 1), "nowhere")
	if err != nil {
		t.Fatal(err)
	}
	if !s.TimezoneFallback {
		t.Errorf("expected the fallback timezone to be used")
	}
	if got, want := s.Afternoon.Value, "13:55"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`locations: []`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.Server.Address, config.DefaultAddress; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	calc, err := cfg.NewCalculator()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := calc.ShadowFactor(), 1.0; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	_, err = calc.Schedule(astronomy.Coordinate{}, datetime.NewCalendarDate(2024, 6, 1), "nowhere")
	if !errors.Is(err, datetime.ErrInvalidTimezone) {
		t.Errorf("got %v, want %v", err, datetime.ErrInvalidTimezone)
	}
}

func TestValidate(t *testing.T) {
	_, err := config.Parse([]byte(`
asr: jafari
fallback_timezone: Nowhere/Special
locations:
  - name: a
    latitude: 95
    longitude: 0
    timezone: UTC
  - name: A
    latitude: 0
    longitude: 0
    timezone: Not/AZone
  - latitude: 0
    longitude: 0
    timezone: UTC
`))
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, target := range []error{
		astronomy.ErrInvalidShadowFactor,
		astronomy.ErrInvalidCoordinate,
		datetime.ErrInvalidTimezone,
	} {
		if !errors.Is(err, target) {
			t.Errorf("%v: expected %v", err, target)
		}
	}
	for _, msg := range []string{`duplicate name`, `missing name`, `fallback_timezone`} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("%v: missing %q", err, msg)
		}
	}

	if _, err := config.Parse([]byte(`
locations:
  - name: a
    alarms:
      - event: moonrise
`)); err == nil || !strings.Contains(err.Error(), "moonrise") {
		t.Errorf("unexpected or missing error: %v", err)
	}
}

func TestParseFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(filename, []byte(spec), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.ParseFile(context.Background(), filename)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(cfg.Locations), 2; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := config.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error")
	}
	if err := os.WriteFile(filename, []byte("locations:\n  - name: x\n    timezone: bad/zone\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.ParseFile(context.Background(), filename); err == nil || !strings.Contains(err.Error(), filename) {
		t.Errorf("unexpected or missing error: %v", err)
	}
}
