// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package epd2in7 is for the Waveshare 2.7 inch e-Paper display (IL91874
// controller, 176x264, black and white).
//
// Typical use:
//
//	d, err := epd2in7.Open(epd2in7.DefaultPins, nil)
//	if err != nil {
//		// Handle error.
//	}
//	defer d.Close()
//	if err := d.Init(); err != nil {
//		// Handle error.
//	}
//	fb, err := d.Encode(img)
//	...
//	err = d.Display(fb)
//
// A Dev is not safe for concurrent use. Every command has to reach the
// controller together with its data, so callers sharing a Dev must serialize
// access themselves.
package epd2in7

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"periph.io/x/periph/conn/display"
)

// State is the controller state as tracked by a Dev.
type State uint8

const (
	Uninitialized State = iota
	Initializing
	Idle
	Transmitting
	Refreshing
	Asleep
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initializing:
		return "Initializing"
	case Idle:
		return "Idle"
	case Transmitting:
		return "Transmitting"
	case Refreshing:
		return "Refreshing"
	case Asleep:
		return "Asleep"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Opts holds optional settings for New and Open.
type Opts struct {
	// BusyTimeout bounds each wait for the busy line. When it expires the
	// controller is reset and ErrControllerUnresponsive is returned. Zero
	// waits forever.
	BusyTimeout time.Duration
	// Logger receives debug timings. Nil disables logging.
	Logger *zerolog.Logger
}

// Dev is a client for the e-Paper display.
type Dev struct {
	bus   Bus
	geom  Geometry
	cal   *calibration
	opts  Opts
	log   zerolog.Logger
	state State

	// white is the reference plane sent before every new image.
	white FrameBuffer
}

// New returns a Dev that talks to the controller through bus. Init must be
// called before anything is shown.
func New(bus Bus, g Geometry, opts *Opts) (*Dev, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	d := &Dev{
		bus:   bus,
		geom:  g,
		cal:   &il91874,
		log:   zerolog.Nop(),
		white: bytes.Repeat([]byte{0xFF}, g.BufSize()),
	}
	if opts != nil {
		d.opts = *opts
		if opts.Logger != nil {
			d.log = opts.Logger.With().Str("device", "epd2in7").Logger()
		}
	}
	return d, nil
}

// Open opens the bus wired to p and returns a Dev for the 2.7 inch panel.
//
//	d, err := epd2in7.Open(epd2in7.DefaultPins, nil)
//	if err != nil {
//		// Handle error.
//	}
func Open(p Pins, opts *Opts) (*Dev, error) {
	bus, err := OpenBus(p)
	if err != nil {
		return nil, err
	}
	return New(bus, EPD2in7, opts)
}

func (d *Dev) handler() *errorHandler {
	return &errorHandler{bus: d.bus, timeout: d.opts.BusyTimeout}
}

// fail records a failed sequence. After a forced reset the controller is back
// at its power-on defaults; otherwise the state is left where the sequence
// stopped.
func (d *Dev) fail(op string, err error) error {
	if errors.Is(err, ErrControllerUnresponsive) {
		d.state = Uninitialized
	}
	d.log.Debug().Err(err).Str("op", op).Stringer("state", d.state).Msg("sequence failed")
	return err
}

// State returns the controller state.
func (d *Dev) State() State {
	return d.state
}

// Geometry returns the panel size.
func (d *Dev) Geometry() Geometry {
	return d.geom
}

// Init resets the controller and programs it for use. It is also the way to
// wake the display after Sleep or to recover after an error.
func (d *Dev) Init() error {
	now := time.Now()
	defer func(start time.Time) {
		d.log.Debug().Dur("took", time.Since(start)).Msg("Init")
	}(now)

	d.state = Initializing
	eh := d.handler()
	eh.reset()
	initDisplay(eh, d.cal)
	if eh.err != nil {
		return d.fail("init", eh.err)
	}
	d.state = Idle
	return nil
}

// Display shows fb, which must be exactly Geometry().BufSize() bytes. It
// blocks until the panel finished refreshing.
func (d *Dev) Display(fb FrameBuffer) error {
	if len(fb) != d.geom.BufSize() {
		return fmt.Errorf("%w: buffer is %d bytes, want %d", ErrDimensionMismatch, len(fb), d.geom.BufSize())
	}
	return d.show("display", d.white, fb)
}

// Clear fills the panel with fill, 0xFF being white.
func (d *Dev) Clear(fill byte) error {
	plane := bytes.Repeat([]byte{fill}, d.geom.BufSize())
	return d.show("clear", plane, plane)
}

func (d *Dev) show(op string, old, next []byte) error {
	if d.state != Idle {
		return fmt.Errorf("%w: %s", ErrNotReady, d.state)
	}
	now := time.Now()
	defer func(start time.Time) {
		d.log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("show")
	}(now)

	eh := d.handler()
	d.state = Transmitting
	writeFrame(eh, old, next)
	if eh.err != nil {
		return d.fail(op, eh.err)
	}
	d.state = Refreshing
	refresh(eh)
	if eh.err != nil {
		return d.fail(op, eh.err)
	}
	d.state = Idle
	return nil
}

// Sleep powers the panel down. Init is required before the next use.
func (d *Dev) Sleep() error {
	if d.state != Idle {
		return fmt.Errorf("%w: %s", ErrNotReady, d.state)
	}
	eh := d.handler()
	powerDown(eh, d.cal)
	if eh.err != nil {
		return d.fail("sleep", eh.err)
	}
	d.state = Asleep
	return nil
}

// Close puts an idle panel to sleep and releases the bus.
func (d *Dev) Close() error {
	var err error
	if d.state == Idle {
		err = d.Sleep()
	}
	if c, ok := d.bus.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Encode converts img into the native format. See the package level Encode.
func (d *Dev) Encode(img image.Image) (FrameBuffer, error) {
	return Encode(d.geom, img)
}

// EncodeBitmap converts a one byte per pixel bitmap into the native format.
func (d *Dev) EncodeBitmap(pix []byte, w, h int) (FrameBuffer, error) {
	return EncodeBitmap(d.geom, pix, w, h)
}

// DrawAndDisplay is a convenience method for Encode and Display.
func (d *Dev) DrawAndDisplay(img image.Image) error {
	fb, err := d.Encode(img)
	if err != nil {
		return err
	}
	return d.Display(fb)
}

// Draw draws src into dstRect of an otherwise white frame and displays it.
// Colors are reduced to black and white by nearest match.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	img := NewImage(d.geom)
	draw.Draw(img, dstRect, src, sp, draw.Src)
	return d.Display(img.Pix)
}

// Halt clears the display.
func (d *Dev) Halt() error {
	return d.Clear(0xFF)
}

// ColorModel returns the black and white model.
func (d *Dev) ColorModel() color.Model {
	return Model
}

// Bounds returns the native orientation of the panel.
func (d *Dev) Bounds() image.Rectangle {
	return d.geom.Bounds()
}

func (d *Dev) String() string {
	return fmt.Sprintf("epd2in7.Dev{%v, %dx%d, %s}", d.bus, d.geom.Width, d.geom.Height, d.state)
}

var _ display.Drawer = &Dev{}
