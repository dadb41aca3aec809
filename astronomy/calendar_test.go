// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy_test

import (
	"context"
	"errors"
	"testing"

	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/datetime"
	"github.com/google/go-cmp/cmp"
)

func TestCalendar(t *testing.T) {
	ctx := context.Background()
	calc, err := astronomy.NewCalculator()
	if err != nil {
		t.Fatal(err)
	}
	from, to := datetime.NewCalendarDate(2024, 2, 1), datetime.NewCalendarDate(2024, 2, 29)
	schedules, err := calc.Calendar(ctx, makkah, from, to, "Asia/Riyadh")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(schedules), 29; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, cd := range from.Dates(to) {
		if got, want := schedules[i].Date, cd.String(); got != want {
			t.Errorf("got %v, want %v", got, want)
		}
		single, err := calc.Schedule(makkah, cd, "Asia/Riyadh")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(single, schedules[i]); diff != "" {
			t.Errorf("%v: mismatch (-want +got):\n%s", cd, diff)
		}
	}

	schedules, err = astronomy.ComputeCalendar(ctx, makkah, from, from, "UTC+3")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(schedules), 1; got != want {
		t.Fatalf("got %v, want %v", got, want)
	}

	// A full leap year is allowed.
	schedules, err = calc.Calendar(ctx, equator, datetime.NewCalendarDate(2024, 1, 1), datetime.NewCalendarDate(2024, 12, 31), "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(schedules), astronomy.MaxCalendarDays; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCalendarErrors(t *testing.T) {
	ctx := context.Background()
	calc, err := astronomy.NewCalculator()
	if err != nil {
		t.Fatal(err)
	}
	jan1 := datetime.NewCalendarDate(2024, 1, 1)
	for _, tc := range []struct {
		coord    astronomy.Coordinate
		from, to datetime.CalendarDate
		tz       string
		target   error
	}{
		{makkah, jan1, datetime.NewCalendarDate(2023, 12, 31), "UTC", astronomy.ErrInvalidRange},
		{makkah, jan1, datetime.NewCalendarDate(2025, 1, 1), "UTC", astronomy.ErrInvalidRange},
		{makkah, jan1, datetime.NewCalendarDate(2024, 2, 30), "UTC", datetime.ErrInvalidDate},
		{astronomy.Coordinate{Latitude: -91}, jan1, jan1, "UTC", astronomy.ErrInvalidCoordinate},
		{makkah, jan1, jan1, "Mars/Olympus_Mons", datetime.ErrInvalidTimezone},
	} {
		_, err := calc.Calendar(ctx, tc.coord, tc.from, tc.to, tc.tz)
		if !errors.Is(err, tc.target) {
			t.Errorf("%v..%v: got %v, want %v", tc.from, tc.to, err, tc.target)
		}
	}

	first, last := datetime.NewCalendarDate(1, 1, 1), datetime.NewCalendarDate(9999, 12, 31)
	allocs := testing.AllocsPerRun(1, func() {
		_, err = calc.Calendar(ctx, makkah, first, last, "UTC")
	})
	if !errors.Is(err, astronomy.ErrInvalidRange) {
		t.Errorf("got %v, want %v", err, astronomy.ErrInvalidRange)
	}
	if allocs > 50 {
		t.Errorf("overlong range was not rejected before allocating: %v allocations", allocs)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = calc.Calendar(ctx, makkah, jan1, datetime.NewCalendarDate(2024, 3, 1), "UTC")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestValidateRange(t *testing.T) {
	jan1 := datetime.NewCalendarDate(2023, 1, 1)
	for _, tc := range []struct {
		to datetime.CalendarDate
		ok bool
	}{
		{jan1, true},
		{datetime.NewCalendarDate(2023, 12, 31), true},
		{datetime.NewCalendarDate(2024, 1, 1), true},
		{datetime.NewCalendarDate(2024, 1, 2), false},
		{datetime.NewCalendarDate(2022, 12, 31), false},
		{datetime.NewCalendarDate(9999, 12, 31), false},
	} {
		err := astronomy.ValidateRange(jan1, tc.to)
		if got, want := err == nil, tc.ok; got != want {
			t.Errorf("%v: got %v, want %v", tc.to, err, want)
		}
		if err != nil && !errors.Is(err, astronomy.ErrInvalidRange) {
			t.Errorf("%v: got %v, want %v", tc.to, err, astronomy.ErrInvalidRange)
		}
	}
}
