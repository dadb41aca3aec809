// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"text/tabwriter"
	"time"

	"cloudeng.io/prayertimes/alarms"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/config"
	"cloudeng.io/prayertimes/datetime"
	"cloudeng.io/sync/errgroup"
)

// newSchedulers returns a scheduler for the named location, or for every
// location with alarms if name is empty.
func newSchedulers(cfg config.Config, calc *astronomy.Calculator, name string) ([]*alarms.Scheduler, error) {
	var locations []config.Location
	if len(name) > 0 {
		loc, ok := cfg.Location(name)
		if !ok {
			return nil, fmt.Errorf("unknown location %q", name)
		}
		locations = append(locations, loc)
	} else {
		for _, loc := range cfg.Locations {
			if len(loc.Alarms) > 0 {
				locations = append(locations, loc)
			}
		}
	}
	if len(locations) == 0 {
		return nil, errors.New("no locations with alarms are configured")
	}
	schedulers := make([]*alarms.Scheduler, 0, len(locations))
	for _, loc := range locations {
		place, err := loc.Place()
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", loc.Name, err)
		}
		schedulers = append(schedulers, alarms.NewScheduler(calc, loc.Name, place, loc.Alarms))
	}
	return schedulers, nil
}

func runAlarms(ctx context.Context, values any, _ []string) error {
	fv := values.(*alarmsFlags)
	if len(fv.Config) == 0 {
		return errors.New("--config is required")
	}
	cfg, err := loadConfig(ctx, fv.ConfigFlags)
	if err != nil {
		return err
	}
	ctx, done, err := withLogger(ctx, fv.LoggingFlags, cfg)
	if err != nil {
		return err
	}
	defer done()
	calc, err := cfg.NewCalculator()
	if err != nil {
		return err
	}
	schedulers, err := newSchedulers(cfg, calc, fv.Location)
	if err != nil {
		return err
	}
	if fv.Watch {
		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
		defer cancel()
		return watchAlarms(ctx, schedulers, alarms.SystemClock(), printAlarm(stdout))
	}
	var date datetime.CalendarDate
	if len(fv.Date) > 0 {
		if date, err = datetime.ParseCalendarDate(fv.Date); err != nil {
			return err
		}
	}
	now := time.Now()
	tw := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "location\tevent\toffset\tlabel\ttime")
	for _, s := range schedulers {
		day := date
		if len(fv.Date) == 0 {
			day = s.Date(now)
		}
		for _, a := range s.Plan(day) {
			fmt.Fprintf(tw, "%s\t%s\t%+d\t%s\t%s\n", a.Location, a.Spec.Event, a.Spec.OffsetMinutes, a.Spec.Label, a.When.Format("2006-01-02 15:04 MST"))
		}
	}
	return tw.Flush()
}

// printAlarm returns a notify function that writes each alarm to out,
// one per line.
func printAlarm(out io.Writer) func(context.Context, alarms.Alarm) error {
	var mu sync.Mutex
	return func(_ context.Context, a alarms.Alarm) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(out, a.String())
		return err
	}
}

// watchAlarms runs all of the schedulers until ctx is canceled or
// notify fails. Cancelation of ctx is not treated as an error.
func watchAlarms(ctx context.Context, schedulers []*alarms.Scheduler, clock alarms.Clock, notify func(context.Context, alarms.Alarm) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range schedulers {
		g.Go(func() error {
			return s.Run(gctx, clock, notify)
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
