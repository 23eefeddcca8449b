// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Binary inkdash shows sensor readings on a Waveshare 2.7 inch e-Paper HAT.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/toothrot/inkdash/devices/epd2in7"
	"github.com/toothrot/inkdash/internal/config"
	"github.com/toothrot/inkdash/internal/dashboard"
	"github.com/toothrot/inkdash/internal/logging"
	"github.com/toothrot/inkdash/internal/sensor"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

var (
	configPath = flag.String("config", "/etc/inkdash/config.yaml", "Path to the config file.")
	once       = flag.Bool("once", false, "Update the panel once and exit.")
	renderOnly = flag.Bool("render-only", false, "Render without touching the display hardware.")
	dumpDir    = flag.String("dump", "", "Directory receiving dashboard.png and dashboard.bin on every update.")
)

// debounce is the minimum time between two refresh button presses.
const debounce = 500 * time.Millisecond

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.Setup("info")
		fallback.Fatal().Err(err).Str("config", *configPath).Msg("loading config")
	}
	logger := logging.Setup(cfg.LogLevel)
	logger.Info().
		Str("config", *configPath).
		Str("refresh", cfg.Refresh).
		Str("orientation", cfg.Display.Orientation).
		Int("sensors", len(cfg.Sensors)).
		Bool("once", *once).
		Bool("render_only", *renderOnly).
		Msg("inkdash starting")

	if err := run(cfg, logger); err != nil {
		log.Fatal().Err(err).Msg("inkdash failed")
	}
}

// run drives the dashboard until a signal arrives. The display is closed on
// every return path.
func run(cfg *config.Config, logger zerolog.Logger) error {
	faces, err := dashboard.LoadFaces(cfg.Fonts.Path, cfg.Fonts.Measurement, cfg.Fonts.Description, cfg.Fonts.Toolbar)
	if err != nil {
		return fmt.Errorf("loading fonts: %w", err)
	}
	renderer := dashboard.NewRenderer(epd2in7.EPD2in7, cfg.Display.Orientation == config.Landscape, faces)
	source := &sensor.FileSource{Path: cfg.ReadingsFile, Sensors: sensorSpecs(cfg.Sensors)}

	var panel dashboard.Panel
	if !*renderOnly {
		dev, err := epd2in7.Open(panelPins(cfg.Display.Pins), &epd2in7.Opts{
			BusyTimeout: cfg.Display.BusyTimeout,
			Logger:      &logger,
		})
		if err != nil {
			return fmt.Errorf("opening display: %w", err)
		}
		defer func() {
			if err := dev.Close(); err != nil {
				log.Warn().Err(err).Msg("closing display")
			}
		}()
		panel = dev
	}
	screen := dashboard.NewScreen(panel, renderer, source, dashboard.ScreenOpts{
		SleepBetween: cfg.Display.SleepBetween,
		DumpDir:      *dumpDir,
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	update := func() {
		if err := screen.Update(ctx); err != nil {
			log.Error().Err(err).Msg("update failed")
		}
	}
	update()
	if *once {
		shutdown(screen)
		return nil
	}

	sched := cron.New(
		cron.WithLogger(logging.Cron(logger)),
		cron.WithChain(cron.SkipIfStillRunning(logging.Cron(logger))),
	)
	if _, err := sched.AddFunc(cfg.Refresh, update); err != nil {
		shutdown(screen)
		return fmt.Errorf("scheduling refresh %q: %w", cfg.Refresh, err)
	}
	sched.Start()

	if panel != nil && cfg.Buttons.Refresh != "" {
		if err := watchButton(ctx, cfg.Buttons.Refresh, update); err != nil {
			log.Warn().Err(err).Str("pin", cfg.Buttons.Refresh).Msg("refresh button disabled")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	s := <-c
	log.Info().Str("signal", s.String()).Msg("quitting")
	cancel()
	<-sched.Stop().Done()
	shutdown(screen)
	return nil
}

func shutdown(screen *dashboard.Screen) {
	if err := screen.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("putting display to sleep")
	}
}

// watchButton calls f on every falling edge of the named pin until ctx is
// done.
func watchButton(ctx context.Context, name string, f func()) error {
	p := gpioreg.ByName(name)
	if p == nil {
		return fmt.Errorf("invalid button pin %q", name)
	}
	if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		p.Halt()
	}()
	go func() {
		var last time.Time
		for p.WaitForEdge(-1) {
			if ctx.Err() != nil {
				return
			}
			if time.Since(last) < debounce {
				continue
			}
			last = time.Now()
			log.Info().Str("pin", name).Msg("refresh button pressed")
			f()
		}
	}()
	return nil
}

func panelPins(p config.Pins) epd2in7.Pins {
	return epd2in7.Pins{SPI: p.SPI, Busy: p.Busy, CS: p.CS, DC: p.DC, RST: p.RST}
}

func sensorSpecs(in []config.Sensor) []sensor.Spec {
	out := make([]sensor.Spec, 0, len(in))
	for _, s := range in {
		out = append(out, sensor.Spec{Name: s.Name, Unit: s.Unit, Metric: s.Metric})
	}
	return out
}
