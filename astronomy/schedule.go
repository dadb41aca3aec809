// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloudeng.io/prayertimes/datetime"
)

// Event names a daily solar event.
type Event string

const (
	EventDawn      Event = "dawn"
	EventSunrise   Event = "sunrise"
	EventSolarNoon Event = "solarNoon"
	EventAfternoon Event = "afternoon"
	EventSunset    Event = "sunset"
	EventDusk      Event = "dusk"
)

// AllEvents lists all of the daily solar events in the order in which
// they occur.
var AllEvents = []Event{EventDawn, EventSunrise, EventSolarNoon, EventAfternoon, EventSunset, EventDusk}

// ParseEvent parses an event name, 'asr' is accepted as a synonym for
// 'afternoon' and 'noon' for 'solarNoon'.
func ParseEvent(val string) (Event, error) {
	lc := strings.ToLower(strings.TrimSpace(val))
	switch lc {
	case "asr":
		return EventAfternoon, nil
	case "noon", "solar-noon", "solarnoon", "zenith":
		return EventSolarNoon, nil
	}
	for _, e := range AllEvents {
		if strings.ToLower(string(e)) == lc {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown solar event: %q", val)
}

// LocalTime is an optional 24 hour HH:MM local time.
type LocalTime struct {
	Value string
	Valid bool
}

// String returns the time or "none" if the event does not occur.
func (lt LocalTime) String() string {
	if !lt.Valid {
		return "none"
	}
	return lt.Value
}

// MarshalJSON implements json.Marshaler, absent times are encoded as null.
func (lt LocalTime) MarshalJSON() ([]byte, error) {
	if !lt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(lt.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (lt *LocalTime) UnmarshalJSON(buf []byte) error {
	if string(buf) == "null" {
		*lt = LocalTime{}
		return nil
	}
	var val string
	if err := json.Unmarshal(buf, &val); err != nil {
		return err
	}
	var tod datetime.TimeOfDay
	if err := tod.Parse(val); err != nil {
		return err
	}
	*lt = LocalTime{Value: tod.HourMinute(), Valid: true}
	return nil
}

// TimeOfDay returns the time as a datetime.TimeOfDay, it returns false
// if the event does not occur.
func (lt LocalTime) TimeOfDay() (datetime.TimeOfDay, bool) {
	if !lt.Valid {
		return 0, false
	}
	var tod datetime.TimeOfDay
	if err := tod.Parse(lt.Value); err != nil {
		return 0, false
	}
	return tod, true
}

// DailySolarSchedule represents the local times of the daily solar events.
type DailySolarSchedule struct {
	Date             string       `json:"date"`
	Timezone         string       `json:"timezone"`
	Dawn             LocalTime    `json:"dawn"`
	Sunrise          LocalTime    `json:"sunrise"`
	SolarNoon        LocalTime    `json:"solarNoon"`
	Afternoon        LocalTime    `json:"afternoon"`
	Sunset           LocalTime    `json:"sunset"`
	Dusk             LocalTime    `json:"dusk"`
	TwilightTier     TwilightTier `json:"twilightTier"`
	ShadowFactor     float64      `json:"shadowFactor"`
	TimezoneFallback bool         `json:"timezoneFallback,omitempty"`
}

// Get returns the local time of the specified event.
func (s DailySolarSchedule) Get(event Event) LocalTime {
	switch event {
	case EventDawn:
		return s.Dawn
	case EventSunrise:
		return s.Sunrise
	case EventSolarNoon:
		return s.SolarNoon
	case EventAfternoon:
		return s.Afternoon
	case EventSunset:
		return s.Sunset
	case EventDusk:
		return s.Dusk
	}
	return LocalTime{}
}

// LocalClock returns the instant represented by h on date, rounded to the
// nearest minute and in the specified location.
func LocalClock(date datetime.CalendarDate, h Hours, loc *time.Location) time.Time {
	return h.Time(date).Round(time.Minute).In(loc)
}

// FormatLocal formats h as a 24 hour HH:MM time in the specified location.
func FormatLocal(date datetime.CalendarDate, h Hours, loc *time.Location) LocalTime {
	if !h.Valid {
		return LocalTime{}
	}
	tod := datetime.TimeOfDayFromTime(LocalClock(date, h, loc))
	return LocalTime{Value: tod.HourMinute(), Valid: true}
}

// NewDailySolarSchedule projects the solar events onto the specified
// location.
func NewDailySolarSchedule(se SolarEvents, loc *time.Location) DailySolarSchedule {
	return DailySolarSchedule{
		Date:         se.Date.String(),
		Timezone:     loc.String(),
		Dawn:         FormatLocal(se.Date, se.Dawn, loc),
		Sunrise:      FormatLocal(se.Date, se.Sunrise, loc),
		SolarNoon:    FormatLocal(se.Date, se.SolarNoon, loc),
		Afternoon:    FormatLocal(se.Date, se.Afternoon, loc),
		Sunset:       FormatLocal(se.Date, se.Sunset, loc),
		Dusk:         FormatLocal(se.Date, se.Dusk, loc),
		TwilightTier: se.TwilightTier,
		ShadowFactor: se.ShadowFactor,
	}
}

// String returns a single line summary of the schedule.
func (s DailySolarSchedule) String() string {
	var out strings.Builder
	out.WriteString(s.Date)
	for _, e := range AllEvents {
		fmt.Fprintf(&out, " %s=%s", e, s.Get(e))
	}
	fmt.Fprintf(&out, " twilight=%s", s.TwilightTier)
	return out.String()
}
