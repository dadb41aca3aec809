// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"cloudeng.io/prayertimes/datetime"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/solstice"
)

// JDEToCalendar returns the CalendarDate, in UTC, for the specified
// Julian ephemeris day.
func JDEToCalendar(jde float64) datetime.CalendarDate {
	y, m, d := julian.JDToCalendar(jde)
	return datetime.NewCalendarDate(y, datetime.Month(m), int(d))
}

// SeasonEvent identifies one of the equinoxes or solstices.
type SeasonEvent int

const (
	MarchEquinox SeasonEvent = iota
	JuneSolstice
	SeptemberEquinox
	DecemberSolstice
)

var seasonEvents = [...]struct {
	name string
	jde  func(year int) float64
}{
	MarchEquinox:     {"SpringEquinox", solstice.March},
	JuneSolstice:     {"SummerSolstice", solstice.June},
	SeptemberEquinox: {"AutumnEquinox", solstice.September},
	DecemberSolstice: {"WinterSolstice", solstice.December},
}

// String returns the northern hemisphere name for the event.
func (e SeasonEvent) String() string {
	return seasonEvents[e].name
}

// Date returns the date, in UTC, of the event in the specified year.
func (e SeasonEvent) Date(year int) datetime.CalendarDate {
	return JDEToCalendar(seasonEvents[e].jde(year))
}

// Season represents an equinox or solstice in a given year.
type Season struct {
	Event SeasonEvent           `json:"-"`
	Name  string                `json:"name"`
	Date  datetime.CalendarDate `json:"-"`
}

// Seasons returns the equinoxes and solstices for the specified year in
// the order in which they occur.
func Seasons(year int) []Season {
	seasons := make([]Season, len(seasonEvents))
	for i := range seasonEvents {
		e := SeasonEvent(i)
		seasons[i] = Season{Event: e, Name: e.String(), Date: e.Date(year)}
	}
	return seasons
}
