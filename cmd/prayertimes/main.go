// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command prayertimes computes the daily solar event times used for
// prayer schedules: dawn, sunrise, solar noon, afternoon, sunset and dusk.
package main

import (
	"context"
	"io"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/config"
)

var (
	cmdSet *subcmd.CommandSet
	stdout io.Writer = os.Stdout
)

// ConfigFlags specifies a configuration file and an optional location
// defined within it.
type ConfigFlags struct {
	Config   string `subcmd:"config,,'yaml configuration file'"`
	Location string `subcmd:"location,,'name of a location defined in the configuration file'"`
}

// PlaceFlags specifies a coordinate and timezone directly, they are
// ignored if --location is set.
type PlaceFlags struct {
	Latitude  float64 `subcmd:"lat,0,'latitude in decimal degrees, north is positive'"`
	Longitude float64 `subcmd:"lon,0,'longitude in decimal degrees, east is positive'"`
	Timezone  string  `subcmd:"tz,UTC,'IANA timezone name, UTC or a fixed offset such as UTC+03:00'"`
}

// CalcFlags specifies options for the calculation.
type CalcFlags struct {
	Asr  string `subcmd:"asr,,'asr convention (shafii or hanafi) or a numeric shadow factor, overrides the configuration file'"`
	JSON bool   `subcmd:"json,false,'output json rather than a table'"`
}

type scheduleFlags struct {
	ConfigFlags
	PlaceFlags
	CalcFlags
	cmdutil.LoggingFlags
	Date string `subcmd:"date,,'date in YYYY-MM-DD format, defaults to today'"`
}

type calendarFlags struct {
	ConfigFlags
	PlaceFlags
	CalcFlags
	cmdutil.LoggingFlags
	From  string `subcmd:"from,,'first date in YYYY-MM-DD format, defaults to today'"`
	To    string `subcmd:"to,,'last date in YYYY-MM-DD format, defaults to the end of the month containing from'"`
	Month string `subcmd:"month,,'a month as YYYY-MM or YYYY-<name>, eg. 2024-03 or 2024-march, overrides --from and --to'"`
}

type seasonsFlags struct {
	JSON bool `subcmd:"json,false,'output json rather than a table'"`
}

type compareFlags struct {
	ConfigFlags
	PlaceFlags
	cmdutil.LoggingFlags
	From string `subcmd:"from,,'first date in YYYY-MM-DD format, defaults to today'"`
	To   string `subcmd:"to,,'last date in YYYY-MM-DD format, defaults to from'"`
}

type alarmsFlags struct {
	ConfigFlags
	cmdutil.LoggingFlags
	Date  string `subcmd:"date,,'date in YYYY-MM-DD format, defaults to today'"`
	Watch bool   `subcmd:"watch,false,'wait for and print alarms as they become due'"`
}

type serveFlags struct {
	ConfigFlags
	cmdutil.LoggingFlags
	Address string `subcmd:"address,,'address to listen on, overrides the configuration file'"`
}

func init() {
	scheduleFS := subcmd.NewFlagSet()
	scheduleFS.MustRegisterFlagStruct(&scheduleFlags{}, nil, nil)
	calendarFS := subcmd.NewFlagSet()
	calendarFS.MustRegisterFlagStruct(&calendarFlags{}, nil, nil)
	seasonsFS := subcmd.NewFlagSet()
	seasonsFS.MustRegisterFlagStruct(&seasonsFlags{}, nil, nil)
	compareFS := subcmd.NewFlagSet()
	compareFS.MustRegisterFlagStruct(&compareFlags{}, nil, nil)
	alarmsFS := subcmd.NewFlagSet()
	alarmsFS.MustRegisterFlagStruct(&alarmsFlags{}, nil, nil)
	serveFS := subcmd.NewFlagSet()
	serveFS.MustRegisterFlagStruct(&serveFlags{}, nil, nil)

	scheduleCmd := subcmd.NewCommand("schedule", scheduleFS, schedule, subcmd.WithoutArguments())
	scheduleCmd.Document("print the solar event times for a single day")

	calendarCmd := subcmd.NewCommand("calendar", calendarFS, calendar, subcmd.WithoutArguments())
	calendarCmd.Document("print the solar event times for a range of dates, at most 366 days")

	seasonsCmd := subcmd.NewCommand("seasons", seasonsFS, seasons, subcmd.ExactlyNumArguments(1))
	seasonsCmd.Document("print the dates of the equinoxes and solstices for a year", "<year>")

	compareCmd := subcmd.NewCommand("compare", compareFS, compare, subcmd.WithoutArguments())
	compareCmd.Document("compare sunrise and sunset against an independent implementation")

	alarmsCmd := subcmd.NewCommand("alarms", alarmsFS, runAlarms, subcmd.WithoutArguments())
	alarmsCmd.Document("print the alarms configured for a location")

	serveCmd := subcmd.NewCommand("serve", serveFS, serve, subcmd.WithoutArguments())
	serveCmd.Document("run the http API")

	cmdSet = subcmd.NewCommandSet(scheduleCmd, calendarCmd, seasonsCmd, compareCmd, alarmsCmd, serveCmd)
	cmdSet.Document(`compute daily solar event times for prayer schedules.

The times of dawn, sunrise, solar noon, afternoon (asr), sunset and dusk
are computed for a coordinate and date and displayed in the requested
timezone. Dawn and dusk use astronomical twilight (-18 degrees) falling back
to nautical and civil twilight at high latitudes. Events that do not occur,
eg. sunset during polar day, are displayed as 'none'.

Locations, the asr convention, alarms, logging and the http server may be
configured via a yaml file specified with --config.`)
}

func main() {
	ctx := context.Background()
	if err := cmdSet.Dispatch(ctx); err != nil {
		cmdutil.Exit("%v", err)
	}
}

func loadConfig(ctx context.Context, cf ConfigFlags) (config.Config, error) {
	if len(cf.Config) == 0 {
		return config.Parse(nil)
	}
	return config.ParseFile(ctx, cf.Config)
}

// withLogger configures logging using the command line flags, any values
// not set on the command line are taken from the configuration file.
func withLogger(ctx context.Context, lf cmdutil.LoggingFlags, cfg config.Config) (context.Context, func(), error) {
	lc := lf.LoggingConfig()
	if lc.Level == 0 {
		lc.Level = cfg.Logging.Level
	}
	if len(lc.File) == 0 {
		lc.File = cfg.Logging.File
	}
	if len(cfg.Logging.Format) > 0 && len(lf.Format) == 0 {
		lc.Format = cfg.Logging.Format
	}
	logger, err := lc.NewLogger()
	if err != nil {
		return ctx, func() {}, err
	}
	return ctxlog.WithLogger(ctx, logger.Logger), func() { logger.Close() }, nil
}
