// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Binary inkbanner displays text on a Waveshare 2.7 inch e-Paper HAT.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/rs/zerolog/log"
	"github.com/toothrot/inkdash/devices/epd2in7"
	"github.com/toothrot/inkdash/internal/bitmap"
	"github.com/toothrot/inkdash/internal/logging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

var (
	text     = flag.String("text", "Hello, world!", "Text to display.")
	rotate   = flag.Float64("rotate", 0.0, "Image rotation in degrees.")
	size     = flag.Float64("size", 32, "Font size in points.")
	logLevel = flag.String("log-level", "info", "Log level.")
)

type panel interface {
	Init() error
	Clear(fill byte) error
	DrawAndDisplay(img image.Image) error
	Close() error
}

// show clears p and displays img on it. p is closed before returning, also
// when a step fails.
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
	log.Info().Msg("Clearing")
	if err := p.Clear(0xFF); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	log.Info().Str("text", *text).Msg("Displaying banner")
	if err := p.DrawAndDisplay(img); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

func banner(s string, w, h int) image.Image {
	ctx := gg.NewContextForImage(imaging.New(w, h, color.White))
	ctx.SetFontFace(fontFace())
	ctx.SetRGB(0, 0, 0)
	ctx.DrawStringWrapped(s, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w-16), 1.0, gg.AlignCenter)
	return bitmap.Threshold(bitmap.Fit(ctx.Image(), *rotate, w, h), 0x80)
}

func main() {
	flag.Parse()
	logger := logging.Setup(*logLevel)

	img := banner(*text, epd2in7.EPD2in7.Width, epd2in7.EPD2in7.Height)
	d, err := epd2in7.Open(epd2in7.DefaultPins, &epd2in7.Opts{Logger: &logger})
	if err != nil {
		log.Fatal().Err(err).Msg("opening display")
	}
	if err := show(d, img); err != nil {
		log.Fatal().Err(err).Msg("showing banner")
	}
}

func fontFace() font.Face {
	f, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing font")
	}
	ff, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    *size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("loading font face")
	}
	return ff
}
