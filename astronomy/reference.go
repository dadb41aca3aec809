// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"time"

	"cloudeng.io/prayertimes/datetime"
	"github.com/nathan-osman/go-sunrise"
)

// ReferenceSunriseSunset returns the time of sunrise and sunset for the
// specified date and coordinate as computed by an independent
// implementation (github.com/nathan-osman/go-sunrise). It is intended
// for cross checking the results of Calculator. The returned times are
// in UTC and are zero if the sun does not rise or set.
func ReferenceSunriseSunset(date datetime.CalendarDate, coord Coordinate) (rise, set time.Time) {
	return sunrise.SunriseSunset(
		coord.Latitude, coord.Longitude,
		date.Year, time.Month(date.Month), date.Day)
}

// ReferenceSolarNoon returns the midpoint of the reference sunrise and
// sunset.
func ReferenceSolarNoon(date datetime.CalendarDate, coord Coordinate) (time.Time, bool) {
	rise, set := ReferenceSunriseSunset(date, coord)
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, false
	}
	return rise.Add(set.Sub(rise) / 2), true
}

// Comparison holds the differences between the sunrise and sunset times
// computed by Calculator and the reference implementation.
type Comparison struct {
	Date                  datetime.CalendarDate
	Sunrise, Sunset       time.Time
	RefSunrise, RefSunset time.Time
	SunriseDelta          time.Duration
	SunsetDelta           time.Duration
}

// Compare computes sunrise and sunset using both Calculator and the
// reference implementation. It returns false if either implementation
// reports no sunrise or sunset.
func (c *Calculator) Compare(coord Coordinate, date datetime.CalendarDate) (Comparison, bool, error) {
	se, err := c.Events(coord, date)
	if err != nil {
		return Comparison{}, false, err
	}
	rise, set := ReferenceSunriseSunset(date, coord)
	if !se.Sunrise.Valid || !se.Sunset.Valid || rise.IsZero() || set.IsZero() {
		return Comparison{Date: date}, false, nil
	}
	cmp := Comparison{
		Date:       date,
		Sunrise:    se.Sunrise.Time(date),
		Sunset:     se.Sunset.Time(date),
		RefSunrise: rise,
		RefSunset:  set,
	}
	cmp.SunriseDelta = cmp.Sunrise.Sub(rise)
	cmp.SunsetDelta = cmp.Sunset.Sub(set)
	return cmp, true, nil
}
