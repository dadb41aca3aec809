// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"cloudeng.io/prayertimes/datetime"
)

var (
	// ErrInvalidCoordinate is returned for latitudes outside of [-90, 90]
	// or longitudes outside of [-180, 180].
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidShadowFactor is returned for non-positive shadow factors
	// or unrecognised asr conventions.
	ErrInvalidShadowFactor = errors.New("invalid shadow factor")
)

// Coordinate represents a location on the earth in decimal degrees,
// north and east are positive.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate returns an error wrapping ErrInvalidCoordinate if either
// the latitude or longitude is out of range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Hours represents an optional time of day as decimal hours UTC relative
// to midnight UTC at the start of the date being calculated for. Values
// may be negative or exceed 24 for locations far from the prime meridian.
type Hours struct {
	Value float64
	Valid bool
}

func someHours(v float64) Hours {
	return Hours{Value: v, Valid: true}
}

// Time returns the instant represented by h on the specified date.
func (h Hours) Time(date datetime.CalendarDate) time.Time {
	return date.UTCMidnight().Add(time.Duration(h.Value * float64(time.Hour)))
}

// SolarEvents represents the times, in decimal hours UTC, of the daily
// solar events for a given date and location.
type SolarEvents struct {
	Date         datetime.CalendarDate
	Coordinate   Coordinate
	Position     SolarPosition
	ShadowFactor float64
	TwilightTier TwilightTier

	Dawn      Hours
	Sunrise   Hours
	SolarNoon Hours
	Afternoon Hours
	Sunset    Hours
	Dusk      Hours
}

// Get returns the time of the specified event.
func (se SolarEvents) Get(event Event) Hours {
	switch event {
	case EventDawn:
		return se.Dawn
	case EventSunrise:
		return se.Sunrise
	case EventSolarNoon:
		return se.SolarNoon
	case EventAfternoon:
		return se.Afternoon
	case EventSunset:
		return se.Sunset
	case EventDusk:
		return se.Dusk
	}
	return Hours{}
}

type options struct {
	shadowFactor float64
	fallback     *time.Location
	concurrency  int
}

// Option represents an option to the calculator.
type Option func(o *options)

// WithShadowFactor sets the shadow factor used to determine the afternoon
// (asr) time. The default is 1 which corresponds to AsrShafii.
func WithShadowFactor(f float64) Option {
	return func(o *options) {
		o.shadowFactor = f
	}
}

// WithAsrConvention is like WithShadowFactor but for a named convention.
func WithAsrConvention(c AsrConvention) Option {
	return func(o *options) {
		o.shadowFactor = c.ShadowFactor()
	}
}

// WithTimezoneFallback specifies a location to be used when the requested
// timezone cannot be resolved. Without this option an unresolvable
// timezone results in an error. Schedules computed using the fallback
// are marked as such.
func WithTimezoneFallback(loc *time.Location) Option {
	return func(o *options) {
		o.fallback = loc
	}
}

// WithConcurrency limits the number of schedules that Calendar computes
// concurrently. The default is runtime.GOMAXPROCS(0), zero means no limit.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// Calculator computes solar events and schedules. It is stateless and
// safe for concurrent use.
type Calculator struct {
	opts options
}

// NewCalculator returns a new Calculator configured with the supplied
// options.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{opts: options{
		shadowFactor: AsrShafii.ShadowFactor(),
		concurrency:  runtime.GOMAXPROCS(0),
	}}
	for _, fn := range opts {
		fn(&c.opts)
	}
	sf := c.opts.shadowFactor
	if sf <= 0 || math.IsNaN(sf) || math.IsInf(sf, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShadowFactor, sf)
	}
	return c, nil
}

// ShadowFactor returns the shadow factor used by the calculator.
func (c *Calculator) ShadowFactor() float64 {
	return c.opts.shadowFactor
}

// Events computes the solar events, in decimal hours UTC, for the given
// coordinate and date. Events that do not occur (eg. sunset during polar
// day) are returned with Valid set to false, this is not an error.
func (c *Calculator) Events(coord Coordinate, date datetime.CalendarDate) (SolarEvents, error) {
	if err := coord.Validate(); err != nil {
		return SolarEvents{}, err
	}
	if err := date.Validate(); err != nil {
		return SolarEvents{}, err
	}

	// Evaluate the sun's position at local mean noon.
	jd := JulianDay(date, 0.5-coord.Longitude/360)
	pos := SolarPositionAt(jd)
	lat, dec := coord.Latitude, pos.Declination

	se := SolarEvents{
		Date:         date,
		Coordinate:   coord,
		Position:     pos,
		ShadowFactor: c.opts.shadowFactor,
	}
	noon := SolarNoon(pos.EquationOfTime, coord.Longitude)
	se.SolarNoon = someHours(noon)

	if h, ok := HourAngle(lat, dec, HorizonAngle); ok {
		se.Sunrise = someHours(noon - h/15)
		se.Sunset = someHours(noon + h/15)
	}

	tier, h, ok := Twilight(lat, dec)
	se.TwilightTier = tier
	if ok {
		se.Dawn = someHours(noon - h/15)
		se.Dusk = someHours(noon + h/15)
	}

	se.Afternoon = afternoon(lat, dec, noon, c.opts.shadowFactor, se.Sunset)
	return se, nil
}

func afternoon(lat, dec, noon, shadowFactor float64, sunset Hours) Hours {
	if altitude, ok := AsrAltitude(lat, dec, shadowFactor); ok {
		if h, ok := HourAngle(lat, dec, altitude); ok {
			return someHours(noon + h/15)
		}
	}
	if sunset.Valid {
		return someHours((noon + sunset.Value) / 2)
	}
	return Hours{}
}

func (c *Calculator) location(timezone string) (*time.Location, bool, error) {
	loc, err := datetime.LoadLocation(timezone)
	if err == nil {
		return loc, false, nil
	}
	if c.opts.fallback != nil {
		return c.opts.fallback, true, nil
	}
	return nil, false, err
}

// Schedule computes the DailySolarSchedule for the given coordinate, date
// and timezone. The timezone is resolved using datetime.LoadLocation and
// an error wrapping datetime.ErrInvalidTimezone is returned if it cannot
// be resolved and no fallback was configured.
func (c *Calculator) Schedule(coord Coordinate, date datetime.CalendarDate, timezone string) (DailySolarSchedule, error) {
	loc, fallback, err := c.location(timezone)
	if err != nil {
		return DailySolarSchedule{}, err
	}
	se, err := c.Events(coord, date)
	if err != nil {
		return DailySolarSchedule{}, err
	}
	s := NewDailySolarSchedule(se, loc)
	s.TimezoneFallback = fallback
	return s, nil
}

// ComputeSolarEvents is a convenience function that creates a Calculator
// with the supplied options and calls its Events method.
func ComputeSolarEvents(coord Coordinate, date datetime.CalendarDate, opts ...Option) (SolarEvents, error) {
	c, err := NewCalculator(opts...)
	if err != nil {
		return SolarEvents{}, err
	}
	return c.Events(coord, date)
}

// ComputeSolarSchedule is a convenience function that creates a Calculator
// with the supplied options and calls its Schedule method.
func ComputeSolarSchedule(coord Coordinate, date datetime.CalendarDate, timezone string, opts ...Option) (DailySolarSchedule, error) {
	c, err := NewCalculator(opts...)
	if err != nil {
		return DailySolarSchedule{}, err
	}
	return c.Schedule(coord, date, timezone)
}
