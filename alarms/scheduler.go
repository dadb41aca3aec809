// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alarms

import (
	"slices"
	"sync"
	"time"

	"cloudeng.io/algo/container/heap"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/datetime"
)

// DefaultGracePeriod is the default for WithGracePeriod.
const DefaultGracePeriod = 5 * time.Minute

type options struct {
	grace time.Duration
}

// Option represents an option to NewScheduler.
type Option func(o *options)

// WithGracePeriod sets the period after an alarm's due time during which
// it will still be returned by Due. Older alarms are silently discarded,
// for example when the scheduler is started part way through a day.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		o.grace = d
	}
}

// Scheduler computes the alarms for a single place and returns them
// as they become due. Each alarm is returned at most once, alarms are
// identified by their date, event and offset. It is safe for concurrent use.
type Scheduler struct {
	opts  options
	name  string
	place datetime.Place
	calc  *astronomy.Calculator
	specs []Spec

	mu      sync.Mutex
	h       *heap.T[int64, Alarm]
	planned map[datetime.CalendarDate]bool
	fired   map[key]bool
}

// NewScheduler returns a new Scheduler for the named place.
func NewScheduler(calc *astronomy.Calculator, name string, place datetime.Place, specs []Spec, opts ...Option) *Scheduler {
	s := &Scheduler{
		name:    name,
		place:   place,
		calc:    calc,
		specs:   slices.Clone(specs),
		planned: map[datetime.CalendarDate]bool{},
		fired:   map[key]bool{},
	}
	s.opts.grace = DefaultGracePeriod
	for _, fn := range opts {
		fn(&s.opts)
	}
	s.h = heap.NewMin(heap.WithSliceCap[int64, Alarm](len(specs) * 2))
	return s
}

func (s *Scheduler) location() *time.Location {
	if s.place.TimeLocation == nil {
		return time.UTC
	}
	return s.place.TimeLocation
}

// Date returns the date at the scheduler's place at the instant now.
func (s *Scheduler) Date(now time.Time) datetime.CalendarDate {
	return datetime.CalendarDateFromTime(now.In(s.location()))
}

// Plan returns the alarms for the specified date ordered by their due time.
// Alarms whose event does not occur on that date are omitted.
func (s *Scheduler) Plan(cd datetime.CalendarDate) []Alarm {
	alarms := make([]Alarm, 0, len(s.specs))
	for _, spec := range s.specs {
		et := astronomy.EventTime{Event: spec.Event, Calculator: s.calc}
		when, ok := et.Evaluate(cd, s.place)
		if !ok {
			continue
		}
		alarms = append(alarms, Alarm{
			Location: s.name,
			Spec:     spec,
			Date:     cd,
			When:     when.Add(spec.Offset()),
		})
	}
	slices.SortStableFunc(alarms, func(a, b Alarm) int {
		return a.When.Compare(b.When)
	})
	return alarms
}

// schedule must be called with s.mu held.
func (s *Scheduler) schedule(now time.Time) {
	today := datetime.CalendarDateFromTime(now.In(s.location()))
	for _, cd := range []datetime.CalendarDate{today, today.Tomorrow()} {
		if s.planned[cd] {
			continue
		}
		s.planned[cd] = true
		for _, a := range s.Plan(cd) {
			s.h.Push(a.When.Unix(), a)
		}
	}
	// Forget about dates that can no longer be scheduled.
	yesterday := datetime.CalendarDateFromTime(now.In(s.location()).AddDate(0, 0, -1))
	for cd := range s.planned {
		if cd.Before(yesterday) {
			delete(s.planned, cd)
		}
	}
	for k := range s.fired {
		if k.date.Before(yesterday) {
			delete(s.fired, k)
		}
	}
}

// Due returns the alarms that are due at or before now and that have not
// already been returned.
func (s *Scheduler) Due(now time.Time) []Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule(now)
	var due []Alarm
	for s.h.Len() > 0 {
		secs, a := s.h.Pop()
		if secs > now.Unix() {
			s.h.Push(secs, a)
			break
		}
		k := a.key()
		if s.fired[k] {
			continue
		}
		s.fired[k] = true
		if now.Sub(a.When) > s.opts.grace {
			continue
		}
		due = append(due, a)
	}
	return due
}

// Next returns the time of the next alarm after now.
func (s *Scheduler) Next(now time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule(now)
	if s.h.Len() == 0 {
		return time.Time{}, false
	}
	secs, a := s.h.Pop()
	s.h.Push(secs, a)
	return a.When, true
}
