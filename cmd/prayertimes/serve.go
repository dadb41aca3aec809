// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/prayertimes/alarms"
	"cloudeng.io/prayertimes/config"
	"cloudeng.io/prayertimes/datetime"
	"cloudeng.io/prayertimes/server"
	"cloudeng.io/sync/errgroup"
	"github.com/prometheus/client_golang/prometheus"
)

func serve(ctx context.Context, values any, _ []string) error {
	fv := values.(*serveFlags)
	cfg, err := loadConfig(ctx, fv.ConfigFlags)
	if err != nil {
		return err
	}
	ctx, done, err := withLogger(ctx, fv.LoggingFlags, cfg)
	if err != nil {
		return err
	}
	defer done()
	if len(fv.Address) > 0 {
		cfg.Server.Address = fv.Address
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics := server.NewMetrics(reg)
	srv, err := server.New(cfg, metrics)
	if err != nil {
		return err
	}
	ln, hs, err := server.NewHTTPServer(ctx, cfg.Server.Address, srv.Handler())
	if err != nil {
		return err
	}

	// Alarms for any configured locations are logged while serving.
	var schedulers []*alarms.Scheduler
	if len(fv.Location) > 0 || hasAlarms(cfg.Locations) {
		calc, err := cfg.NewCalculator()
		if err != nil {
			return err
		}
		if schedulers, err = newSchedulers(cfg, calc, fv.Location); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ServeWithShutdown(gctx, ln, hs, cfg.Server.ShutdownGrace)
	})
	if len(schedulers) > 0 {
		g.Go(func() error {
			return watchAlarms(gctx, schedulers, alarms.SystemClock(), logAlarm)
		})
	}
	return g.Wait()
}

func hasAlarms(locations []config.Location) bool {
	for _, loc := range locations {
		if len(loc.Alarms) > 0 {
			return true
		}
	}
	return false
}

func logAlarm(ctx context.Context, a alarms.Alarm) error {
	logger := ctxlog.Logger(ctx)
	if place, ok := datetime.PlaceFromContext(ctx); ok {
		logger = logger.With("latitude", place.Latitude, "longitude", place.Longitude)
	}
	logger.Info("due", "alarm", a.String())
	return nil
}
