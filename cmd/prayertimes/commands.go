// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/config"
	"cloudeng.io/prayertimes/datetime"
)

// resolveLocation returns the location named by --location or the
// location specified by --lat, --lon and --tz.
func resolveLocation(cfg config.Config, cf ConfigFlags, pf PlaceFlags) (config.Location, error) {
	if len(cf.Location) > 0 {
		loc, ok := cfg.Location(cf.Location)
		if !ok {
			return config.Location{}, fmt.Errorf("unknown location %q, configured locations are: %v", cf.Location, strings.Join(cfg.LocationNames(), ", "))
		}
		return loc, nil
	}
	loc := config.Location{
		Latitude:  pf.Latitude,
		Longitude: pf.Longitude,
		Timezone:  pf.Timezone,
	}
	return loc, loc.Coordinate().Validate()
}

func newCalculator(cfg config.Config, cl CalcFlags) (*astronomy.Calculator, error) {
	var opts []astronomy.Option
	if len(cl.Asr) > 0 {
		sf, err := astronomy.ParseShadowFactor(cl.Asr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, astronomy.WithShadowFactor(sf))
	}
	return cfg.NewCalculator(opts...)
}

// today returns the date at now in the first of timezones that can be
// loaded, or in UTC if none can be. The host's local timezone is never used.
func today(now time.Time, timezones ...string) datetime.CalendarDate {
	for _, tz := range timezones {
		if loc, err := datetime.LoadLocation(tz); err == nil {
			return datetime.CalendarDateFromTime(now.In(loc))
		}
	}
	return datetime.CalendarDateFromTime(now.UTC())
}

func dateOrToday(val string, timezones ...string) (datetime.CalendarDate, error) {
	if len(strings.TrimSpace(val)) == 0 {
		return today(time.Now(), timezones...), nil
	}
	return datetime.ParseCalendarDate(val)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSchedules(out io.Writer, asJSON bool, schedules ...astronomy.DailySolarSchedule) error {
	if asJSON {
		if len(schedules) == 1 {
			return printJSON(out, schedules[0])
		}
		return printJSON(out, schedules)
	}
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprint(tw, "date")
	for _, e := range astronomy.AllEvents {
		fmt.Fprintf(tw, "\t%s", e)
	}
	fmt.Fprint(tw, "\ttwilight\n")
	for _, s := range schedules {
		fmt.Fprint(tw, s.Date)
		for _, e := range astronomy.AllEvents {
			fmt.Fprintf(tw, "\t%s", s.Get(e))
		}
		fmt.Fprintf(tw, "\t%s\n", s.TwilightTier)
	}
	return tw.Flush()
}

func warnFallback(ctx context.Context, timezone string, schedules ...astronomy.DailySolarSchedule) {
	if len(schedules) > 0 && schedules[0].TimezoneFallback {
		ctxlog.Logger(ctx).Warn("invalid timezone, using fallback", "requested", timezone, "fallback", schedules[0].Timezone)
	}
}

func schedule(ctx context.Context, values any, _ []string) error {
	fv := values.(*scheduleFlags)
	cfg, err := loadConfig(ctx, fv.ConfigFlags)
	if err != nil {
		return err
	}
	ctx, done, err := withLogger(ctx, fv.LoggingFlags, cfg)
	if err != nil {
		return err
	}
	defer done()
	loc, err := resolveLocation(cfg, fv.ConfigFlags, fv.PlaceFlags)
	if err != nil {
		return err
	}
	calc, err := newCalculator(cfg, fv.CalcFlags)
	if err != nil {
		return err
	}
	date, err := dateOrToday(fv.Date, loc.Timezone, cfg.FallbackTimezone)
	if err != nil {
		return err
	}
	s, err := calc.Schedule(loc.Coordinate(), date, loc.Timezone)
	if err != nil {
		return err
	}
	warnFallback(ctx, loc.Timezone, s)
	return printSchedules(stdout, fv.JSON, s)
}

func endOfMonth(cd datetime.CalendarDate) datetime.CalendarDate {
	return datetime.NewCalendarDate(cd.Year, cd.Month, datetime.DaysInMonth(cd.Year, cd.Month))
}

// parseYearMonth parses YYYY-MM or YYYY-<month name> and returns the
// first day of that month.
func parseYearMonth(val string) (datetime.CalendarDate, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(val), "-")
	if !ok {
		return datetime.CalendarDate{}, fmt.Errorf("%w: %q: expected YYYY-MM", datetime.ErrInvalidDate, val)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return datetime.CalendarDate{}, fmt.Errorf("%w: %q: invalid year", datetime.ErrInvalidDate, val)
	}
	var m datetime.Month
	if err := m.Parse(month); err != nil {
		return datetime.CalendarDate{}, fmt.Errorf("%w: %q: %v", datetime.ErrInvalidDate, val, err)
	}
	cd := datetime.NewCalendarDate(y, m, 1)
	return cd, cd.Validate()
}

func calendarRange(fv *calendarFlags, timezones ...string) (from, to datetime.CalendarDate, err error) {
	if len(fv.Month) > 0 {
		if from, err = parseYearMonth(fv.Month); err != nil {
			return
		}
		return from, endOfMonth(from), nil
	}
	if from, err = dateOrToday(fv.From, timezones...); err != nil {
		return
	}
	to = endOfMonth(from)
	if len(fv.To) > 0 {
		to, err = datetime.ParseCalendarDate(fv.To)
	}
	return
}

func calendar(ctx context.Context, values any, _ []string) error {
	fv := values.(*calendarFlags)
	cfg, err := loadConfig(ctx, fv.ConfigFlags)
	if err != nil {
		return err
	}
	ctx, done, err := withLogger(ctx, fv.LoggingFlags, cfg)
	if err != nil {
		return err
	}
	defer done()
	loc, err := resolveLocation(cfg, fv.ConfigFlags, fv.PlaceFlags)
	if err != nil {
		return err
	}
	calc, err := newCalculator(cfg, fv.CalcFlags)
	if err != nil {
		return err
	}
	from, to, err := calendarRange(fv, loc.Timezone, cfg.FallbackTimezone)
	if err != nil {
		return err
	}
	schedules, err := calc.Calendar(ctx, loc.Coordinate(), from, to, loc.Timezone)
	if err != nil {
		return err
	}
	warnFallback(ctx, loc.Timezone, schedules...)
	return printSchedules(stdout, fv.JSON, schedules...)
}

func seasons(_ context.Context, values any, args []string) error {
	fv := values.(*seasonsFlags)
	year, err := strconv.Atoi(args[0])
	if err != nil || year < datetime.MinYear || year > datetime.MaxYear {
		return fmt.Errorf("%w: invalid year %q", datetime.ErrInvalidDate, args[0])
	}
	all := astronomy.Seasons(year)
	if fv.JSON {
		type season struct {
			Name string `json:"name"`
			Date string `json:"date"`
		}
		out := make([]season, len(all))
		for i, s := range all {
			out[i] = season{Name: s.Name, Date: s.Date.String()}
		}
		return printJSON(stdout, out)
	}
	tw := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	for _, s := range all {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Date)
	}
	return tw.Flush()
}

func compare(ctx context.Context, values any, _ []string) error {
	fv := values.(*compareFlags)
	cfg, err := loadConfig(ctx, fv.ConfigFlags)
	if err != nil {
		return err
	}
	ctx, done, err := withLogger(ctx, fv.LoggingFlags, cfg)
	if err != nil {
		return err
	}
	defer done()
	loc, err := resolveLocation(cfg, fv.ConfigFlags, fv.PlaceFlags)
	if err != nil {
		return err
	}
	tz, err := datetime.LoadLocation(loc.Timezone)
	if err != nil {
		return err
	}
	calc, err := cfg.NewCalculator()
	if err != nil {
		return err
	}
	from, err := dateOrToday(fv.From, loc.Timezone, cfg.FallbackTimezone)
	if err != nil {
		return err
	}
	to := from
	if len(fv.To) > 0 {
		if to, err = datetime.ParseCalendarDate(fv.To); err != nil {
			return err
		}
	}
	if err := astronomy.ValidateRange(from, to); err != nil {
		return err
	}
	return printComparisons(ctx, stdout, calc, loc.Coordinate(), from.Dates(to), tz)
}

func printComparisons(ctx context.Context, out io.Writer, calc *astronomy.Calculator, coord astronomy.Coordinate, dates []datetime.CalendarDate, tz *time.Location) error {
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "date\tsunrise\treference\tdelta\tsunset\treference\tdelta")
	for _, cd := range dates {
		cmp, ok, err := calc.Compare(coord, cd)
		if err != nil {
			return err
		}
		if !ok {
			ctxlog.Logger(ctx).Debug("no sunrise or sunset", "date", cd.String())
			fmt.Fprintf(tw, "%v\tnone\tnone\t\tnone\tnone\t\n", cd)
			continue
		}
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n", cd,
			cmp.Sunrise.In(tz).Format(time.TimeOnly), cmp.RefSunrise.In(tz).Format(time.TimeOnly), cmp.SunriseDelta,
			cmp.Sunset.In(tz).Format(time.TimeOnly), cmp.RefSunset.In(tz).Format(time.TimeOnly), cmp.SunsetDelta)
	}
	return tw.Flush()
}
