// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package datetime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloudeng.io/prayertimes/datetime"
)

func TestLoadLocation(t *testing.T) {
	when := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		name   string
		offset int
	}{
		{"UTC", 0},
		{"gmt", 0},
		{"America/Los_Angeles", -8 * 3600},
		{"Asia/Kolkata", 5*3600 + 1800},
		{"UTC+03:00", 3 * 3600},
		{"GMT-4", -4 * 3600},
		{"+0530", 5*3600 + 1800},
		{"-04:30", -(4*3600 + 1800)},
	} {
		loc, err := datetime.LoadLocation(tc.name)
		if err != nil {
			t.Errorf("%v: %v", tc.name, err)
			continue
		}
		_, offset := when.In(loc).Zone()
		if got, want := offset, tc.offset; got != want {
			t.Errorf("%v: got %v, want %v", tc.name, got, want)
		}
	}

	for _, tc := range []string{"", "Not/AZone", "UTC+15", "+05:75", "Mars/Olympus_Mons", "Local", "local", " LOCAL "} {
		_, err := datetime.LoadLocation(tc)
		if err == nil {
			t.Errorf("%q: expected an error", tc)
			continue
		}
		if !errors.Is(err, datetime.ErrInvalidTimezone) {
			t.Errorf("%q: unexpected error: %v", tc, err)
		}
	}
}

func TestPlaceContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := datetime.PlaceFromContext(ctx); ok {
		t.Errorf("unexpected place")
	}
	place, err := datetime.NewPlace(21.4225, 39.8262, "Asia/Riyadh")
	if err != nil {
		t.Fatal(err)
	}
	ctx = datetime.ContextWithPlace(ctx, place)
	got, ok := datetime.PlaceFromContext(ctx)
	if !ok {
		t.Fatalf("missing place")
	}
	if got.Latitude != place.Latitude || got.TimeLocation.String() != "Asia/Riyadh" {
		t.Errorf("got %v, want %v", got, place)
	}
	if _, err := datetime.NewPlace(0, 0, "Not/AZone"); !errors.Is(err, datetime.ErrInvalidTimezone) {
		t.Errorf("unexpected error: %v", err)
	}
}
