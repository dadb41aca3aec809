// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package config provides support for the yaml configuration of named
// locations, calculation options, alarms, logging and the http server.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/cmdyaml"
	"cloudeng.io/errors"
	"cloudeng.io/prayertimes/alarms"
	"cloudeng.io/prayertimes/astronomy"
	"cloudeng.io/prayertimes/datetime"
)

// Location represents a named location.
type Location struct {
	Name      string        `yaml:"name" json:"name" cmd:"the name of the location, names are case insensitive"`
	Latitude  float64       `yaml:"latitude" json:"latitude" cmd:"latitude in decimal degrees, north is positive"`
	Longitude float64       `yaml:"longitude" json:"longitude" cmd:"longitude in decimal degrees, east is positive"`
	Timezone  string        `yaml:"timezone" json:"timezone" cmd:"IANA timezone name, UTC or a fixed offset such as UTC+03:00"`
	Alarms    []alarms.Spec `yaml:"alarms" json:"alarms,omitempty" cmd:"alarms relative to the daily solar events"`
}

// Coordinate returns the location's coordinate.
func (l Location) Coordinate() astronomy.Coordinate {
	return astronomy.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Place returns the location as a datetime.Place.
func (l Location) Place() (datetime.Place, error) {
	return datetime.NewPlace(l.Latitude, l.Longitude, l.Timezone)
}

// Server represents the configuration of the http server.
type Server struct {
	Address       string        `yaml:"address" cmd:"address to listen on"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace" cmd:"time allowed for in-flight requests to complete on shutdown"`
}

// Config represents the complete configuration.
type Config struct {
	Asr              string                `yaml:"asr" cmd:"asr convention (shafii or hanafi) or a numeric shadow factor, defaults to shafii"`
	FallbackTimezone string                `yaml:"fallback_timezone" cmd:"timezone to use when a requested timezone is invalid, if not set invalid timezones are errors"`
	Locations        []Location            `yaml:"locations" cmd:"named locations"`
	Logging          cmdutil.LoggingConfig `yaml:"logging" cmd:"logging configuration"`
	Server           Server                `yaml:"server" cmd:"http server configuration"`
}

const (
	DefaultAddress       = "localhost:8080"
	DefaultShutdownGrace = 10 * time.Second
)

func (c *Config) setDefaults() {
	if len(c.Server.Address) == 0 {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ShutdownGrace == 0 {
		c.Server.ShutdownGrace = DefaultShutdownGrace
	}
}

// Parse parses and validates the supplied yaml configuration.
func Parse(spec []byte) (Config, error) {
	var cfg Config
	if err := cmdyaml.ParseConfig(spec, &cfg); err != nil {
		return Config{}, err
	}
	return finish(cfg)
}

// ParseFile is like Parse but reads the configuration from a file,
// see cmdyaml.ParseConfigFile.
func ParseFile(ctx context.Context, filename string) (Config, error) {
	var cfg Config
	if err := cmdyaml.ParseConfigFile(ctx, filename, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func finish(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

// Validate returns all of the errors found in the configuration.
func (c Config) Validate() error {
	errs := &errors.M{}
	if len(c.Asr) > 0 {
		if _, err := astronomy.ParseShadowFactor(c.Asr); err != nil {
			errs.Append(err)
		}
	}
	if len(c.FallbackTimezone) > 0 {
		if _, err := datetime.LoadLocation(c.FallbackTimezone); err != nil {
			errs.Append(fmt.Errorf("fallback_timezone: %w", err))
		}
	}
	seen := map[string]bool{}
	for i, l := range c.Locations {
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if len(name) == 0 {
			errs.Append(fmt.Errorf("location %v: missing name", i))
			continue
		}
		if seen[name] {
			errs.Append(fmt.Errorf("location %q: duplicate name", l.Name))
		}
		seen[name] = true
		if err := l.Coordinate().Validate(); err != nil {
			errs.Append(fmt.Errorf("location %q: %w", l.Name, err))
		}
		if _, err := datetime.LoadLocation(l.Timezone); err != nil {
			errs.Append(fmt.Errorf("location %q: %w", l.Name, err))
		}
	}
	return errs.Err()
}

// Location returns the named location, names are case insensitive.
func (c Config) Location(name string) (Location, bool) {
	name = strings.TrimSpace(name)
	for _, l := range c.Locations {
		if strings.EqualFold(strings.TrimSpace(l.Name), name) {
			return l, true
		}
	}
	return Location{}, false
}

// LocationNames returns the names of all configured locations.
func (c Config) LocationNames() []string {
	names := make([]string, len(c.Locations))
	for i, l := range c.Locations {
		names[i] = l.Name
	}
	return names
}

// CalculatorOptions returns the astronomy.Options represented by the
// configuration.
func (c Config) CalculatorOptions() ([]astronomy.Option, error) {
	var opts []astronomy.Option
	if len(c.Asr) > 0 {
		sf, err := astronomy.ParseShadowFactor(c.Asr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, astronomy.WithShadowFactor(sf))
	}
	if len(c.FallbackTimezone) > 0 {
		loc, err := datetime.LoadLocation(c.FallbackTimezone)
		if err != nil {
			return nil, err
		}
		opts = append(opts, astronomy.WithTimezoneFallback(loc))
	}
	return opts, nil
}

// NewCalculator returns an astronomy.Calculator configured according to
// the configuration and any additional options.
func (c Config) NewCalculator(opts ...astronomy.Option) (*astronomy.Calculator, error) {
	copts, err := c.CalculatorOptions()
	if err != nil {
		return nil, err
	}
	return astronomy.NewCalculator(append(copts, opts...)...)
}
