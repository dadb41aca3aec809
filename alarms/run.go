// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alarms

import (
	"context"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/datetime"
)

// Clock abstracts the passage of time so that Run can be tested.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

// MaxWait is the longest that Run will sleep before recomputing the
// next alarm.
const MaxWait = time.Hour

// Run calls notify for each alarm as it becomes due. It returns when
// the context is canceled or notify returns an error. The context passed
// to notify carries the scheduler's place, see datetime.PlaceFromContext.
func (s *Scheduler) Run(ctx context.Context, clock Clock, notify func(context.Context, Alarm) error) error {
	ctx = datetime.ContextWithPlace(ctx, s.place)
	logger := ctxlog.Logger(ctx).With("location", s.name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := clock.Now()
		for _, a := range s.Due(now) {
			logger.Info("alarm", "event", string(a.Spec.Event), "offset", a.Spec.OffsetMinutes, "label", a.Spec.Label, "when", a.When)
			if err := notify(ctx, a); err != nil {
				return err
			}
		}
		wait := MaxWait
		if next, ok := s.Next(now); ok {
			wait = min(max(next.Sub(now), 0), MaxWait)
			logger.Debug("next alarm", "when", next, "wait", wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
	}
}
