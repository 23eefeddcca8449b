// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Binary inkimage displays an image on a Waveshare 2.7 inch e-Paper HAT.
package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/toothrot/inkdash/devices/epd2in7"
	"github.com/toothrot/inkdash/internal/bitmap"
	"github.com/toothrot/inkdash/internal/logging"
)

var (
	path      = flag.String("image", "", "Image file to display (PNG, JPEG, GIF, BMP or TIFF).")
	rotate    = flag.Float64("rotate", 0.0, "Image rotation in degrees.")
	dith      = flag.Bool("dither", true, "Dither instead of a plain threshold.")
	threshold = flag.Uint("threshold", 0x80, "Gray level below which a pixel is black, when not dithering.")
	logLevel  = flag.String("log-level", "info", "Log level.")
)

func main() {
	flag.Parse()
	logger := logging.Setup(*logLevel)
	if *path == "" {
		log.Fatal().Msg("-image is required")
	}

	src, err := imaging.Open(*path, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatal().Err(err).Str("image", *path).Msg("opening image")
	}
	fit := bitmap.Fit(src, *rotate, epd2in7.EPD2in7.Width, epd2in7.EPD2in7.Height)
	var bw image.Image
	if *dith {
		bw = bitmap.Dither(fit)
	} else {
		bw = bitmap.Threshold(fit, uint8(*threshold))
	}

	d, err := epd2in7.Open(epd2in7.DefaultPins, &epd2in7.Opts{Logger: &logger})
	if err != nil {
		log.Fatal().Err(err).Msg("opening display")
	}
	if err := show(d, bw); err != nil {
		log.Fatal().Err(err).Str("image", *path).Msg("showing image")
	}
}

type panel interface {
	Init() error
	DrawAndDisplay(img image.Image) error
	Close() error
}

// show displays img on p and closes p, also when Init or the display fails.
func show(p panel, img image.Image) (err error) {
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	log.Info().Msg("Initializing")
	if err := p.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	log.Info().Msg("Displaying image")
	if err := p.DrawAndDisplay(img); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
