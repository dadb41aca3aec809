// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"time"

	"cloudeng.io/prayertimes/datetime"
)

// EventTime implements datetime.DynamicTimeOfDay for a daily solar event.
type EventTime struct {
	Event      Event
	Calculator *Calculator
}

func (e EventTime) Name() string {
	return string(e.Event)
}

// Evaluate returns the time of the event on the specified date in the
// place's location. It returns false if the event does not occur on that
// date or the place's coordinates are invalid.
func (e EventTime) Evaluate(cd datetime.CalendarDate, place datetime.Place) (time.Time, bool) {
	calc := e.Calculator
	if calc == nil {
		calc = &Calculator{opts: options{shadowFactor: AsrShafii.ShadowFactor()}}
	}
	se, err := calc.Events(Coordinate{Latitude: place.Latitude, Longitude: place.Longitude}, cd)
	if err != nil {
		return time.Time{}, false
	}
	h := se.Get(e.Event)
	if !h.Valid {
		return time.Time{}, false
	}
	loc := place.TimeLocation
	if loc == nil {
		loc = time.UTC
	}
	return LocalClock(cd, h, loc), true
}

// DynamicEvents returns a datetime.DynamicTimeOfDay for each of the daily
// solar events.
func (c *Calculator) DynamicEvents() datetime.DynamicTimeOfDayList {
	dl := make(datetime.DynamicTimeOfDayList, len(AllEvents))
	for i, e := range AllEvents {
		dl[i] = EventTime{Event: e, Calculator: c}
	}
	return dl
}
