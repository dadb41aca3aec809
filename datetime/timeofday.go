// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// TimeOfDay represents a time of day.
type TimeOfDay uint32

// NewTimeOfDay creates a new TimeOfDay from the specified hour, minute and second.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour<<16 | minute<<8 | second)
}

func (t TimeOfDay) Hour() int {
	return int(t >> 16)
}

func (t TimeOfDay) Minute() int {
	return int(t >> 8 & 0xff)
}

func (t TimeOfDay) Second() int {
	return int(t & 0xff)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// HourMinute returns the time of day formatted as 'HH:MM'.
func (t TimeOfDay) HourMinute() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func isDigits(s string) bool {
	for _, c := range s {
		if !unicode.IsNumber(c) {
			return false
		}
	}
	return true
}

func (t *TimeOfDay) parseHourMinuteSec(h, m, s string) error {
	if !isDigits(s) || !isDigits(h) || !isDigits(m) {
		return fmt.Errorf("invalid time of day: %s:%s:%s", h, m, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour: %s", h)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute: %s", m)
	}
	sec, err := strconv.Atoi(s)
	if err != nil || sec < 0 || sec > 59 {
		return fmt.Errorf("invalid second: %s", s)
	}
	*t = NewTimeOfDay(hour, minute, sec)
	return nil
}

// Parse val in formats '08:12[:10]'.
func (t *TimeOfDay) Parse(val string) error {
	if len(val) == 0 {
		return fmt.Errorf("empty value, expected '08:12[:10]'")
	}
	parts := strings.Split(strings.TrimSpace(val), ":")
	switch len(parts) {
	case 2:
		return t.parseHourMinuteSec(parts[0], parts[1], "0")
	case 3:
		return t.parseHourMinuteSec(parts[0], parts[1], parts[2])
	}
	return fmt.Errorf("invalid format %q, expected '08:12[:10]'", val)
}

// TimeOfDayFromTime returns a TimeOfDay from the specified time.Time.
func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}
