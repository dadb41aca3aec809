// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"context"
	"errors"
	"fmt"

	cloudengerrors "cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/datetime"
	"cloudeng.io/sync/errgroup"
)

// MaxCalendarDays is the maximum number of days that Calendar will
// compute schedules for in a single call.
const MaxCalendarDays = 366

// ErrInvalidRange is returned by Calendar for empty or overlong date ranges.
var ErrInvalidRange = errors.New("invalid date range")

// ValidateRange returns an error wrapping ErrInvalidRange if to is before
// from or if the range from 'from' to 'to' inclusive spans more than
// MaxCalendarDays. Both dates must be valid.
func ValidateRange(from, to datetime.CalendarDate) error {
	if to.Before(from) {
		return fmt.Errorf("%w: %v is before %v", ErrInvalidRange, to, from)
	}
	if n := from.DaysUntil(to) + 1; n > MaxCalendarDays {
		return fmt.Errorf("%w: %v days requested, at most %v are allowed", ErrInvalidRange, n, MaxCalendarDays)
	}
	return nil
}

// Calendar computes the DailySolarSchedule for each date from 'from' to
// 'to' inclusive. The schedules are computed concurrently and returned in
// date order. At most WithConcurrency schedules are computed at a time.
func (c *Calculator) Calendar(ctx context.Context, coord Coordinate, from, to datetime.CalendarDate, timezone string) ([]DailySolarSchedule, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	loc, fallback, err := c.location(timezone)
	if err != nil {
		return nil, err
	}
	if fallback {
		ctxlog.Logger(ctx).Warn("using fallback timezone", "requested", timezone, "fallback", loc.String())
	}
	dates := from.Dates(to)
	ctxlog.Logger(ctx).Debug("computing calendar", "coordinate", coord.String(), "from", from.String(), "to", to.String(), "timezone", loc.String())

	schedules := make([]DailySolarSchedule, len(dates))
	g, ctx := errgroup.WithContext(ctx)
	if c.opts.concurrency > 0 {
		g = errgroup.WithConcurrency(g, c.opts.concurrency)
	}
	for i, date := range dates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			se, err := c.Events(coord, date)
			if err != nil {
				return err
			}
			schedules[i] = NewDailySolarSchedule(se, loc)
			schedules[i].TimezoneFallback = fallback
			return nil
		})
	}
	err = g.Wait()
	err = cloudengerrors.Squash(err, context.Canceled, context.DeadlineExceeded)
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// ComputeCalendar is a convenience function that creates a Calculator with
// the supplied options and calls its Calendar method.
func ComputeCalendar(ctx context.Context, coord Coordinate, from, to datetime.CalendarDate, timezone string, opts ...Option) ([]DailySolarSchedule, error) {
	c, err := NewCalculator(opts...)
	if err != nil {
		return nil, err
	}
	return c.Calendar(ctx, coord, from, to, timezone)
}
