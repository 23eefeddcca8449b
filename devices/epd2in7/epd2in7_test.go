package epd2in7

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/periph/conn/gpio"
)

var errFake = errors.New("fake bus failure")

// fakeBus records the command stream in the same shape as fakeController.
type fakeBus struct {
	cmd    bool
	ops    fakeController
	resets []gpio.Level
	sleeps []time.Duration
	closed bool

	// busy is the number of Busy calls that report true.
	busy       int
	alwaysBusy bool
	// failOn makes the write of that command fail.
	failOn command

	// now advances with Sleep and by writeCost on every Write.
	now       time.Time
	writeCost time.Duration
}

func (b *fakeBus) Write(p []byte) error {
	b.now = b.now.Add(b.writeCost)
	if b.cmd {
		for _, c := range p {
			if b.failOn != 0 && command(c) == b.failOn {
				return errFake
			}
			b.ops.sendCommand(command(c))
		}
		return nil
	}
	if len(b.ops) == 0 {
		return errors.New("data without command")
	}
	b.ops.sendData(p)
	return nil
}

func (b *fakeBus) SetCommandMode(cmd bool) error {
	b.cmd = cmd
	return nil
}

func (b *fakeBus) SetReset(l gpio.Level) error {
	b.resets = append(b.resets, l)
	return nil
}

func (b *fakeBus) Busy() bool {
	if b.alwaysBusy {
		return true
	}
	if b.busy > 0 {
		b.busy--
		return true
	}
	return false
}

func (b *fakeBus) Sleep(d time.Duration) {
	b.sleeps = append(b.sleeps, d)
	b.now = b.now.Add(d)
}

func (b *fakeBus) Now() time.Time {
	return b.now
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBus) clear() {
	b.ops = nil
	b.resets = nil
	b.sleeps = nil
}

func (b *fakeBus) commands() []command {
	var out []command
	for _, r := range b.ops {
		out = append(out, r.cmd)
	}
	return out
}

func newReadyDev(t *testing.T, bus *fakeBus) *Dev {
	t.Helper()
	d, err := New(bus, EPD2in7, nil)
	if err != nil {
		t.Fatalf("New() = _, %v", err)
	}
	if err := d.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	bus.clear()
	return d
}

func TestNewRejectsBadGeometry(t *testing.T) {
	for _, g := range []Geometry{{0, 264}, {176, 0}, {170, 264}, {176, 261}} {
		if _, err := New(&fakeBus{}, g, nil); err == nil {
			t.Errorf("New(%v) = _, nil, want error", g)
		}
	}
}

func TestInit(t *testing.T) {
	bus := &fakeBus{busy: 1}
	d, err := New(bus, EPD2in7, nil)
	if err != nil {
		t.Fatalf("New() = _, %v", err)
	}

	if err := d.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}

	if diff := cmp.Diff(bus.resets, []gpio.Level{gpio.High, gpio.Low, gpio.High}); diff != "" {
		t.Errorf("reset line (-got +want):\n%s", diff)
	}
	want := []command{
		powerSetting,
		boosterSoftStart,
		powerOptimization, powerOptimization, powerOptimization, powerOptimization,
		powerOptimization, powerOptimization, powerOptimization,
		partialDisplayRefresh,
		powerOn,
		getStatus,
		panelSetting,
		pllControl,
		vcmDCSettingRegister,
		lutForVCOM, lutWhiteToWhite, lutBlackToWhite, lutWhiteToBlack, lutBlackToBlack,
	}
	if diff := cmp.Diff(bus.commands(), want); diff != "" {
		t.Errorf("Init() commands (-got +want):\n%s", diff)
	}
	// Three reset levels, one status poll, then the settle after power on.
	wantSleeps := []time.Duration{resetHold, resetHold, resetHold, busyPoll, busySettle}
	if diff := cmp.Diff(bus.sleeps, wantSleeps); diff != "" {
		t.Errorf("Init() sleeps (-got +want):\n%s", diff)
	}
	if resetHold != 200*time.Millisecond || busySettle != 100*time.Millisecond {
		t.Errorf("resetHold, busySettle = %v, %v, want 200ms, 100ms", resetHold, busySettle)
	}
	if got := bus.ops[0].data; len(got) != 5 {
		t.Errorf("powerSetting sent %d bytes, want 5", len(got))
	}
	if d.State() != Idle {
		t.Errorf("State() = %v, want %v", d.State(), Idle)
	}
}

func TestClearThenDisplayBlack(t *testing.T) {
	bus := &fakeBus{}
	d := newReadyDev(t, bus)
	white := bytes.Repeat([]byte{0xFF}, 5808)
	black := make([]byte, 5808)

	if err := d.Clear(0xFF); err != nil {
		t.Fatalf("Clear(0xFF) = %v", err)
	}
	if diff := cmp.Diff(bus.sleeps, []time.Duration{busySettle}); diff != "" {
		t.Errorf("Clear() sleeps (-got +want):\n%s", diff)
	}
	bus.sleeps = nil
	bus.busy = 3
	img := image.NewGray(image.Rect(0, 0, 176, 264))
	fb, err := d.Encode(img)
	if err != nil {
		t.Fatalf("Encode() = _, %v", err)
	}
	if err := d.Display(fb); err != nil {
		t.Fatalf("Display() = %v", err)
	}

	want := []record{
		{cmd: dataStartTransmission1, data: white},
		{cmd: dataStartTransmission2, data: white},
		{cmd: displayRefresh},
		{cmd: dataStartTransmission1, data: white},
		{cmd: dataStartTransmission2, data: black},
		{cmd: displayRefresh},
		{cmd: getStatus},
		{cmd: getStatus},
		{cmd: getStatus},
	}
	if diff := diffRecords(bus.ops, want); diff != "" {
		t.Errorf("Clear()/Display() difference (-got +want):\n%s", diff)
	}
	wantSleeps := []time.Duration{busyPoll, busyPoll, busyPoll, busySettle}
	if diff := cmp.Diff(bus.sleeps, wantSleeps); diff != "" {
		t.Errorf("Display() sleeps (-got +want):\n%s", diff)
	}
	if d.State() != Idle {
		t.Errorf("State() = %v, want %v", d.State(), Idle)
	}
}

func TestClearFillsBothPlanes(t *testing.T) {
	bus := &fakeBus{}
	d := newReadyDev(t, bus)

	if err := d.Clear(0x00); err != nil {
		t.Fatalf("Clear(0x00) = %v", err)
	}

	for _, r := range bus.ops[:2] {
		if !bytes.Equal(r.data, make([]byte, 5808)) {
			t.Errorf("%v was not filled with 0x00", r.cmd)
		}
	}
}

func TestDisplayDimensionMismatch(t *testing.T) {
	for _, tc := range []struct {
		name string
		init bool
	}{
		{name: "idle", init: true},
		{name: "uninitialized"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bus := &fakeBus{}
			var d *Dev
			if tc.init {
				d = newReadyDev(t, bus)
			} else {
				d, _ = New(bus, EPD2in7, nil)
			}

			err := d.Display(make(FrameBuffer, 5807))

			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Display() = %v, want %v", err, ErrDimensionMismatch)
			}
			if len(bus.ops) != 0 {
				t.Errorf("Display() sent %d commands, want none", len(bus.ops))
			}
		})
	}
}

func TestNotReady(t *testing.T) {
	bus := &fakeBus{}
	d, err := New(bus, EPD2in7, nil)
	if err != nil {
		t.Fatalf("New() = _, %v", err)
	}
	fb := make(FrameBuffer, EPD2in7.BufSize())

	for name, f := range map[string]func() error{
		"Display": func() error { return d.Display(fb) },
		"Clear":   func() error { return d.Clear(0xFF) },
		"Sleep":   d.Sleep,
	} {
		if err := f(); !errors.Is(err, ErrNotReady) {
			t.Errorf("%s() before Init = %v, want %v", name, err, ErrNotReady)
		}
	}
	if len(bus.ops) != 0 {
		t.Errorf("sent %d commands before Init, want none", len(bus.ops))
	}
}

func TestSleep(t *testing.T) {
	bus := &fakeBus{}
	d := newReadyDev(t, bus)

	if err := d.Sleep(); err != nil {
		t.Fatalf("Sleep() = %v", err)
	}

	want := []record{
		{cmd: vcomAndDataIntervalSetting, data: []byte{0xF7}},
		{cmd: powerOff},
		{cmd: deepSleep, data: []byte{0xA5}},
	}
	if diff := diffRecords(bus.ops, want); diff != "" {
		t.Errorf("Sleep() difference (-got +want):\n%s", diff)
	}
	if d.State() != Asleep {
		t.Errorf("State() = %v, want %v", d.State(), Asleep)
	}
	if err := d.Clear(0xFF); !errors.Is(err, ErrNotReady) {
		t.Errorf("Clear() while asleep = %v, want %v", err, ErrNotReady)
	}
	if err := d.Init(); err != nil {
		t.Fatalf("Init() after Sleep = %v", err)
	}
	if d.State() != Idle {
		t.Errorf("State() after wake = %v, want %v", d.State(), Idle)
	}
}

func TestBusyTimeout(t *testing.T) {
	bus := &fakeBus{alwaysBusy: true}
	d, err := New(bus, EPD2in7, &Opts{BusyTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() = _, %v", err)
	}

	err = d.Init()

	if !errors.Is(err, ErrControllerUnresponsive) {
		t.Fatalf("Init() = %v, want %v", err, ErrControllerUnresponsive)
	}
	if d.State() != Uninitialized {
		t.Errorf("State() = %v, want %v", d.State(), Uninitialized)
	}
	// One reset from Init and one forced by the timeout.
	if len(bus.resets) != 6 {
		t.Errorf("reset line toggled %d times, want 6", len(bus.resets))
	}
	var polls int
	for _, c := range bus.commands() {
		if c == getStatus {
			polls++
		}
	}
	if polls != 5 {
		t.Errorf("sent %d status requests, want 5", polls)
	}
}

func TestBusyTimeoutCountsWrites(t *testing.T) {
	bus := &fakeBus{writeCost: 20 * time.Millisecond}
	d := newReadyDev(t, bus)
	d.opts.BusyTimeout = 50 * time.Millisecond
	bus.alwaysBusy = true

	err := d.Clear(0xFF)

	if !errors.Is(err, ErrControllerUnresponsive) {
		t.Fatalf("Clear() = %v, want %v", err, ErrControllerUnresponsive)
	}
	// Each round costs a 20ms status write and a 10ms poll: 0, 30, then 60ms
	// is past the bound.
	var polls int
	for _, c := range bus.commands() {
		if c == getStatus {
			polls++
		}
	}
	if polls != 2 {
		t.Errorf("sent %d status requests, want 2", polls)
	}
	if d.State() != Uninitialized {
		t.Errorf("State() = %v, want %v", d.State(), Uninitialized)
	}
}

func TestWaitUntilIdleSettles(t *testing.T) {
	for _, busy := range []int{0, 1, 4} {
		bus := &fakeBus{busy: busy}
		eh := &errorHandler{bus: bus}

		eh.waitUntilIdle()

		if eh.err != nil {
			t.Fatalf("waitUntilIdle() with %d busy rounds: %v", busy, eh.err)
		}
		if n := len(bus.sleeps); n != busy+1 || bus.sleeps[n-1] != busySettle {
			t.Errorf("waitUntilIdle() with %d busy rounds slept %v, want %d polls then %v", busy, bus.sleeps, busy, busySettle)
		}
	}
}

func TestBusErrorPropagates(t *testing.T) {
	bus := &fakeBus{}
	d := newReadyDev(t, bus)
	bus.failOn = dataStartTransmission2

	err := d.Clear(0xFF)

	if !errors.Is(err, errFake) {
		t.Fatalf("Clear() = %v, want %v", err, errFake)
	}
	if d.State() != Transmitting {
		t.Errorf("State() = %v, want %v", d.State(), Transmitting)
	}
	if diff := cmp.Diff(bus.commands(), []command{dataStartTransmission1}); diff != "" {
		t.Errorf("commands after failure (-got +want):\n%s", diff)
	}
	if err := d.Init(); err != nil {
		t.Errorf("Init() after failure = %v", err)
	}
}

func TestClose(t *testing.T) {
	bus := &fakeBus{}
	d := newReadyDev(t, bus)

	if err := d.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	if !bus.closed {
		t.Error("Close() did not close the bus")
	}
	if d.State() != Asleep {
		t.Errorf("State() = %v, want %v", d.State(), Asleep)
	}
}

func TestDraw(t *testing.T) {
	bus := &fakeBus{}
	d := newReadyDev(t, bus)

	err := d.Draw(image.Rect(0, 0, 8, 1), image.NewUniform(color.Black), image.Point{})
	if err != nil {
		t.Fatalf("Draw() = %v", err)
	}

	next := bus.ops[1].data
	if next[0] != 0x00 || next[1] != 0xFF {
		t.Errorf("Draw() first bytes = %08b %08b, want 00000000 11111111", next[0], next[1])
	}
}

func TestStateString(t *testing.T) {
	if got := Refreshing.String(); got != "Refreshing" {
		t.Errorf("Refreshing.String() = %q", got)
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("State(42).String() = %q", got)
	}
}
