// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinYear and MaxYear bound the years accepted by CalendarDate.Validate.
const (
	MinYear = 1
	MaxYear = 9999
)

// CalendarDate represents a civil date with a year, month and day and
// no time of day component.
type CalendarDate struct {
	Year  int
	Month Month
	Day   int
}

// NewCalendarDate returns a CalendarDate for the specified year, month and day.
// It performs no validation, use Validate for that.
func NewCalendarDate(year int, month Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// CalendarDateFromTime returns the CalendarDate for t in t's location.
func CalendarDateFromTime(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: Month(t.Month()), Day: t.Day()}
}

// ParseCalendarDate parses a date in the format 'YYYY-MM-DD'.
func ParseCalendarDate(val string) (CalendarDate, error) {
	var cd CalendarDate
	if err := cd.Parse(val); err != nil {
		return CalendarDate{}, err
	}
	return cd, nil
}

// Parse val in the format 'YYYY-MM-DD'. The parsed date is validated.
func (cd *CalendarDate) Parse(val string) error {
	parts := strings.Split(strings.TrimSpace(val), "-")
	if len(parts) != 3 {
		return fmt.Errorf("%w: %q, expected format 'YYYY-MM-DD'", ErrInvalidDate, val)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("%w: invalid year: %s", ErrInvalidDate, parts[0])
	}
	month, err := ParseNumericMonth(parts[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("%w: invalid day: %s", ErrInvalidDate, parts[2])
	}
	ncd := CalendarDate{Year: year, Month: month, Day: day}
	if err := ncd.Validate(); err != nil {
		return err
	}
	*cd = ncd
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (cd *CalendarDate) UnmarshalYAML(node *yaml.Node) error {
	return cd.Parse(node.Value)
}

// Validate returns an error wrapping ErrInvalidDate if the date does not
// refer to a day in the Gregorian calendar.
func (cd CalendarDate) Validate() error {
	if cd.Year < MinYear || cd.Year > MaxYear {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidDate, cd.Year)
	}
	if !cd.Month.Valid() {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidDate, cd.Month)
	}
	if cd.Day < 1 || cd.Day > DaysInMonth(cd.Year, cd.Month) {
		return fmt.Errorf("%w: day %d out of range for %v %d", ErrInvalidDate, cd.Day, cd.Month, cd.Year)
	}
	return nil
}

// DayOfYear returns the day of the year as 1-365 for non-leap years
// and 1-366 for leap years. The date must be valid.
func (cd CalendarDate) DayOfYear() int {
	if IsLeap(cd.Year) {
		return dayOfYearLeap[cd.Month-1] + cd.Day
	}
	return dayOfYear[cd.Month-1] + cd.Day
}

// DayNumber returns the number of the day counting 0001-01-01 as day 1
// in the proleptic Gregorian calendar. The date must be valid.
func (cd CalendarDate) DayNumber() int {
	y := cd.Year - 1
	return y*365 + y/4 - y/100 + y/400 + cd.DayOfYear()
}

// DaysUntil returns the number of days from cd to o, it is negative
// if o is before cd.
func (cd CalendarDate) DaysUntil(o CalendarDate) int {
	return o.DayNumber() - cd.DayNumber()
}

// Tomorrow returns the date of the next day, 12/31 wraps to 1/1 of the
// following year.
func (cd CalendarDate) Tomorrow() CalendarDate {
	if cd.Day >= DaysInMonth(cd.Year, cd.Month) {
		if cd.Month == 12 {
			return CalendarDate{Year: cd.Year + 1, Month: 1, Day: 1}
		}
		return CalendarDate{Year: cd.Year, Month: cd.Month + 1, Day: 1}
	}
	cd.Day++
	return cd
}

// Before returns true if cd is strictly before o.
func (cd CalendarDate) Before(o CalendarDate) bool {
	if cd.Year != o.Year {
		return cd.Year < o.Year
	}
	if cd.Month != o.Month {
		return cd.Month < o.Month
	}
	return cd.Day < o.Day
}

// Time returns the time.Time for the date at the specified time of day
// in the given location.
func (cd CalendarDate) Time(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(cd.Year, time.Month(cd.Month), cd.Day, tod.Hour(), tod.Minute(), tod.Second(), 0, loc)
}

// UTCMidnight returns midnight UTC at the start of the date.
func (cd CalendarDate) UTCMidnight() time.Time {
	return time.Date(cd.Year, time.Month(cd.Month), cd.Day, 0, 0, 0, 0, time.UTC)
}

func (cd CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", cd.Year, cd.Month, cd.Day)
}

// Dates returns the dates from cd to end inclusive.
func (cd CalendarDate) Dates(end CalendarDate) []CalendarDate {
	var dates []CalendarDate
	for d := cd; !end.Before(d); d = d.Tomorrow() {
		dates = append(dates, d)
	}
	return dates
}
