// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridsingularity/gsy-e-sub001/broker"
	"github.com/gridsingularity/gsy-e-sub001/config"
	"github.com/gridsingularity/gsy-e-sub001/core/idgeneration"
	"github.com/gridsingularity/gsy-e-sub001/core/journal"
	"github.com/gridsingularity/gsy-e-sub001/core/simulation"
	"github.com/gridsingularity/gsy-e-sub001/logging"
	"github.com/gridsingularity/gsy-e-sub001/metrics"

	"github.com/jessevdk/go-flags"
)

type RunCmd struct {
	Config string `short:"c" long:"config" description:"Path of the toml configuration, defaults are used if empty"`
	Start  string `long:"start" description:"First slot as RFC3339, defaults to the start of the current slot"`
	Slots  int    `long:"slots" default:"4" description:"Number of slots to run"`
	Watch  bool   `long:"watch" description:"Apply changes of the configuration file while running"`
}

var runCmd RunCmd

func (opts *RunCmd) Execute(_ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewDefaultConfig()
	var watcher *config.Watcher
	if opts.Config != "" {
		if opts.Watch {
			w, err := config.NewFromFile(ctx, logging.NewLoggerFromConfig(logging.NewDefaultConfig()), opts.Config)
			if err != nil {
				return fmt.Errorf("couldn't watch configuration: %w", err)
			}
			watcher = w
			cfg = w.Get()
		} else {
			read, err := config.Read(opts.Config)
			if err != nil {
				return err
			}
			cfg = *read
		}
	}

	// overwrite with flags
	if _, err := flags.NewParser(&cfg, flags.IgnoreUnknown).Parse(); err != nil {
		return err
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)
	defer log.AtExit()

	start, err := opts.startSlot(cfg.Simulation.SlotLength.Duration)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		if err := metrics.Start(log, cfg.Metrics); err != nil {
			return fmt.Errorf("couldn't start metrics: %w", err)
		}
	}

	var store *journal.Store
	var sink simulation.Journal
	if cfg.Journal.Enabled {
		store, err = journal.New(log, cfg.Journal)
		if err != nil {
			return err
		}
		defer store.Close()
		sink = store
	}

	root, err := simulation.NewArea(cfg.Grid)
	if err != nil {
		return fmt.Errorf("invalid grid: %w", err)
	}

	b := broker.New(log, cfg.Broker)
	sim := simulation.New(log, cfg.Simulation, cfg.Market, cfg.Agents, root, b, idgeneration.NewUUID(), sink)

	if watcher != nil {
		watcher.OnConfigUpdate(
			func(cfg config.Config) { b.ReloadConf(cfg.Broker) },
			func(cfg config.Config) { sim.ReloadConf(cfg.Simulation) },
		)
		if store != nil {
			watcher.OnConfigUpdate(func(cfg config.Config) { store.ReloadConf(cfg.Journal) })
		}
		b.Subscribe(watcher)
	}

	go func() {
		waitSig(ctx, log)
		cancel()
	}()

	log.Info("starting simulation",
		logging.Time("start", start),
		logging.Int("slots", opts.Slots),
		logging.String("market-type", cfg.Market.Type.String()),
	)
	if err := sim.Run(ctx, start, opts.Slots); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("simulation done")
	return nil
}

func (opts *RunCmd) startSlot(length time.Duration) (time.Time, error) {
	if opts.Start == "" {
		return time.Now().UTC().Truncate(length), nil
	}
	start, err := time.Parse(time.RFC3339, opts.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q: %w", opts.Start, err)
	}
	return start, nil
}

func waitSig(ctx context.Context, log *logging.Logger) {
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(gracefulStop)

	select {
	case sig := <-gracefulStop:
		log.Info("caught signal", logging.String("name", fmt.Sprintf("%+v", sig)))
	case <-ctx.Done():
	}
}

func Run(ctx context.Context, parser *flags.Parser) error {
	runCmd = RunCmd{}

	short := "Runs the simulation"
	long := "Run the configured grid for a number of slots, configuration options can be overridden with flags"

	_, err := parser.AddCommand("run", short, long, &runCmd)
	return err
}
