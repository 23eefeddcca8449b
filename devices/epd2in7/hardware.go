package epd2in7

import (
	"fmt"
	"io"
	"time"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

// Bus is what a Dev needs from the hardware: a serial bus, the data/command
// select line, the reset line and the busy line.
//
// A Bus is owned by a single Dev; nothing else may write to it.
type Bus interface {
	// Write sends p with the data/command line left as it is.
	Write(p []byte) error
	// SetCommandMode selects command (true) or data (false) for following writes.
	SetCommandMode(cmd bool) error
	// SetReset drives the reset line.
	SetReset(l gpio.Level) error
	// Busy reports whether the controller is busy.
	Busy() bool
	// Sleep pauses the caller.
	Sleep(d time.Duration)
	// Now is the clock busy timeouts are measured with.
	Now() time.Time
}

// Pins names the GPIO lines the panel is wired to.
//
// Standard pin locations on the Waveshare HAT are as follows:
//
//	Busy - Busy      - Pin 18 (GPIO 24)
//	CLK  - SPI0 SCLK - Pin 23 (GPIO 11)
//	CS   - SPI0 CE0  - Pin 24 (GPIO 8)
//	DC   - Data/Cmd  - Pin 22 (GPIO 25)
//	DIN  - SPI0 MOSI - Pin 19 (GPIO 10)
//	RST  - Reset     - Pin 11 (GPIO 17)
type Pins struct {
	// SPI port name for spireg.Open, empty for the first port.
	SPI string
	// Busy pin name, typically "P1_18"
	Busy string
	// CS pin name. Leave empty when the SPI driver handles chip select (CE0).
	CS string
	// DC pin name, typically "P1_22"
	DC string
	// RST pin name, typically "P1_11"
	RST string
}

var DefaultPins = Pins{
	Busy: "P1_18",
	DC:   "P1_22",
	RST:  "P1_11",
}

// Frequency is the SPI clock used for the controller.
const Frequency = 2 * physic.MegaHertz

// defaultTxLimit is the spidev default buffer size.
const defaultTxLimit = 4096

type hardware struct {
	txLimit int

	// c is a perhiph conn.Conn.
	c    conn.Conn
	port io.Closer

	// busy pin, low while the controller is working.
	busy gpio.PinIn
	// cs is the chip select pin, nil when handled by the SPI driver.
	cs gpio.PinOut
	// dc is the data/command pin.
	dc gpio.PinOut
	// rst is the reset pin.
	rst gpio.PinOut
}

// NewBus connects to the controller over p with the given pins. cs may be nil.
func NewBus(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn) (Bus, error) {
	c, err := p.Connect(Frequency, spi.Mode0, 8)
	if err != nil {
		return nil, &BusError{Op: fmt.Sprintf("port.Connect(%v, %v, %d)", Frequency, spi.Mode0, 8), Err: err}
	}
	if err := busy.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, &BusError{Op: fmt.Sprintf("%s.In(%v)", busy, gpio.PullUp), Err: err}
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, &BusError{Op: fmt.Sprintf("%s.Out(%v)", cs, gpio.High), Err: err}
		}
	}
	h := &hardware{
		txLimit: defaultTxLimit,
		c:       c,
		busy:    busy,
		cs:      cs,
		dc:      dc,
		rst:     rst,
	}
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		h.txLimit = l.MaxTxSize()
	}
	return h, nil
}

// OpenBus initializes the host drivers and opens the SPI port and pins named
// in p.
func OpenBus(p Pins) (Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host.Init() = %w", err)
	}

	pin := func(name, role string) (gpio.PinIO, error) {
		gp := gpioreg.ByName(name)
		if gp == nil {
			return nil, fmt.Errorf("epd2in7: invalid %s pin %q", role, name)
		}
		return gp, nil
	}
	dc, err := pin(p.DC, "dc")
	if err != nil {
		return nil, err
	}
	rst, err := pin(p.RST, "rst")
	if err != nil {
		return nil, err
	}
	busy, err := pin(p.Busy, "busy")
	if err != nil {
		return nil, err
	}
	var cs gpio.PinOut
	if p.CS != "" {
		if cs, err = pin(p.CS, "cs"); err != nil {
			return nil, err
		}
	}

	port, err := spireg.Open(p.SPI)
	if err != nil {
		return nil, fmt.Errorf("spireg.Open(%q) = _, %w", p.SPI, err)
	}
	b, err := NewBus(port, dc, cs, rst, busy)
	if err != nil {
		if cerr := port.Close(); cerr != nil {
			return nil, fmt.Errorf("port.Close() = %v while handling %w", cerr, err)
		}
		return nil, err
	}
	b.(*hardware).port = port
	return b, nil
}

func (h *hardware) Write(p []byte) (err error) {
	if len(p) == 0 {
		return nil
	}
	if h.cs != nil {
		if err := h.cs.Out(gpio.Low); err != nil {
			return &BusError{Op: fmt.Sprintf("%s.Out(%v)", h.cs, gpio.Low), Err: err}
		}
		defer func() {
			if e := h.cs.Out(gpio.High); e != nil && err == nil {
				err = &BusError{Op: fmt.Sprintf("%s.Out(%v)", h.cs, gpio.High), Err: e}
			}
		}()
	}
	b := &batchedWriter{dst: txWriter{h.c}, batchSize: h.txLimit}
	if n, err := b.Write(p); err != nil {
		return &BusError{Op: fmt.Sprintf("write %d/%d bytes", n, len(p)), Err: err}
	}
	return nil
}

func (h *hardware) SetCommandMode(cmd bool) error {
	l := gpio.High
	if cmd {
		l = gpio.Low
	}
	if err := h.dc.Out(l); err != nil {
		return &BusError{Op: fmt.Sprintf("%s.Out(%v)", h.dc, l), Err: err}
	}
	return nil
}

func (h *hardware) SetReset(l gpio.Level) error {
	if err := h.rst.Out(l); err != nil {
		return &BusError{Op: fmt.Sprintf("%s.Out(%v)", h.rst, l), Err: err}
	}
	return nil
}

func (h *hardware) Busy() bool {
	return h.busy.Read() == gpio.Low
}

func (h *hardware) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (h *hardware) Now() time.Time {
	return time.Now()
}

// Close releases the SPI port when the bus opened it.
func (h *hardware) Close() error {
	if h.port == nil {
		return nil
	}
	return h.port.Close()
}

func (h *hardware) String() string {
	return h.c.String()
}

// txWriter sends each Write as one SPI transaction.
type txWriter struct {
	c conn.Conn
}

func (w txWriter) Write(p []byte) (int, error) {
	if err := w.c.Tx(p, nil); err != nil {
		return 0, err
	}
	return len(p), nil
}

type batchedWriter struct {
	dst       io.Writer
	batchSize int
}

func (b *batchedWriter) Write(p []byte) (int, error) {
	if b.batchSize <= 0 {
		return 0, io.ErrShortWrite
	}
	var sent int
	for i := 0; i < len(p); i += b.batchSize {
		j := i + b.batchSize
		if j > len(p) {
			j = len(p)
		}
		n, err := b.dst.Write(p[i:j])
		sent += n
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}
