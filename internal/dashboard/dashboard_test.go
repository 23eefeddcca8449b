package dashboard

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothrot/inkdash/devices/epd2in7"
	"github.com/toothrot/inkdash/internal/bitmap"
	"github.com/toothrot/inkdash/internal/sensor"
)

func testRenderer(t *testing.T, landscape bool) *Renderer {
	t.Helper()
	faces, err := LoadFaces("", 32, 10, 18)
	require.NoError(t, err)
	r := NewRenderer(epd2in7.EPD2in7, landscape, faces)
	r.Now = func() time.Time { return time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC) }
	return r
}

func value(f float64) *float64 { return &f }

func readings(n int) []sensor.Reading {
	out := make([]sensor.Reading, n)
	for i := range out {
		out[i] = sensor.Reading{Name: "Room", Unit: "temperature", Value: value(20 + float64(i)), Trend: value(0)}
	}
	return out
}

func blackIn(img *image.Gray, r image.Rectangle) int {
	var n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.GrayAt(x, y).Y == 0 {
				n++
			}
		}
	}
	return n
}

func TestRenderPortrait(t *testing.T) {
	img := testRenderer(t, false).Render(readings(2))

	require.Equal(t, image.Rect(0, 0, 176, 264), img.Bounds())
	assert.True(t, bitmap.IsBinary(img))
	// Row separators and the toolbar line.
	for _, y := range []int{50, 100, 240} {
		assert.Equal(t, uint8(0), img.GrayAt(88, y).Y, "row %d", y)
	}
	// Toolbar separators.
	for _, x := range []int{44, 88, 132} {
		assert.Equal(t, uint8(0), img.GrayAt(x, 260).Y, "column %d", x)
	}
	assert.NotZero(t, blackIn(img, image.Rect(10, 0, 176, 36)), "value text")
	assert.Zero(t, blackIn(img, image.Rect(0, 120, 176, 200)), "unused rows")
}

func TestRenderLandscape(t *testing.T) {
	img := testRenderer(t, true).Render(readings(1))

	require.Equal(t, image.Rect(0, 0, 264, 176), img.Bounds())
	assert.True(t, bitmap.IsBinary(img))
	assert.Equal(t, uint8(0), img.GrayAt(132, 176-24).Y)

	fb, err := epd2in7.Encode(epd2in7.EPD2in7, img)
	require.NoError(t, err)
	assert.Len(t, fb, 5808)
}

func TestRenderDropsOverflowingRows(t *testing.T) {
	img := testRenderer(t, false).Render(readings(10))

	// Four rows fit above the toolbar; a fifth would end at 250.
	assert.Equal(t, uint8(0), img.GrayAt(88, 200).Y)
	assert.Zero(t, blackIn(img, image.Rect(0, 201, 176, 220)))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "7.3.2024 9:05", FormatTimestamp(time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, "31.12.2025 23:59", FormatTimestamp(time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)))
}

func TestLoadFacesMissingFile(t *testing.T) {
	_, err := LoadFaces(filepath.Join(t.TempDir(), "none.ttf"), 32, 10, 18)
	assert.Error(t, err)
}

type fakePanel struct {
	state   epd2in7.State
	calls   []string
	shown   []epd2in7.FrameBuffer
	initErr error
	dispErr error
}

func (p *fakePanel) Init() error {
	p.calls = append(p.calls, "Init")
	if p.initErr != nil {
		return p.initErr
	}
	p.state = epd2in7.Idle
	return nil
}

func (p *fakePanel) State() epd2in7.State { return p.state }

func (p *fakePanel) Encode(img image.Image) (epd2in7.FrameBuffer, error) {
	p.calls = append(p.calls, "Encode")
	return epd2in7.Encode(epd2in7.EPD2in7, img)
}

func (p *fakePanel) Display(fb epd2in7.FrameBuffer) error {
	p.calls = append(p.calls, "Display")
	if p.dispErr != nil {
		return p.dispErr
	}
	p.shown = append(p.shown, fb)
	return nil
}

func (p *fakePanel) Sleep() error {
	p.calls = append(p.calls, "Sleep")
	p.state = epd2in7.Asleep
	return nil
}

type staticSource struct {
	readings []sensor.Reading
	err      error
}

func (s staticSource) Readings(context.Context) ([]sensor.Reading, error) {
	return s.readings, s.err
}

func TestScreenUpdate(t *testing.T) {
	for _, tc := range []struct {
		name      string
		state     epd2in7.State
		opts      ScreenOpts
		wantCalls []string
		wantState epd2in7.State
	}{
		{
			name:      "idle",
			state:     epd2in7.Idle,
			wantCalls: []string{"Encode", "Display"},
			wantState: epd2in7.Idle,
		},
		{
			name:      "wakes sleeping panel",
			state:     epd2in7.Asleep,
			wantCalls: []string{"Init", "Encode", "Display"},
			wantState: epd2in7.Idle,
		},
		{
			name:      "sleep between",
			state:     epd2in7.Uninitialized,
			opts:      ScreenOpts{SleepBetween: true},
			wantCalls: []string{"Init", "Encode", "Display", "Sleep"},
			wantState: epd2in7.Asleep,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePanel{state: tc.state}
			s := NewScreen(p, testRenderer(t, false), staticSource{readings: readings(3)}, tc.opts)

			require.NoError(t, s.Update(context.Background()))

			assert.Equal(t, tc.wantCalls, p.calls)
			assert.Equal(t, tc.wantState, p.state)
			require.Len(t, p.shown, 1)
			assert.Len(t, p.shown[0], 5808)
		})
	}
}

func TestScreenUpdateErrors(t *testing.T) {
	errSource := errors.New("collector down")
	errPanel := errors.New("spi gone")

	s := NewScreen(&fakePanel{}, testRenderer(t, false), staticSource{err: errSource}, ScreenOpts{})
	assert.ErrorIs(t, s.Update(context.Background()), errSource)

	p := &fakePanel{initErr: epd2in7.ErrControllerUnresponsive}
	s = NewScreen(p, testRenderer(t, false), staticSource{}, ScreenOpts{})
	assert.ErrorIs(t, s.Update(context.Background()), epd2in7.ErrControllerUnresponsive)
	assert.Equal(t, []string{"Init"}, p.calls)

	p = &fakePanel{state: epd2in7.Idle, dispErr: errPanel}
	s = NewScreen(p, testRenderer(t, false), staticSource{}, ScreenOpts{})
	assert.ErrorIs(t, s.Update(context.Background()), errPanel)
}

func TestScreenDump(t *testing.T) {
	dir := t.TempDir()
	s := NewScreen(nil, testRenderer(t, false), staticSource{readings: readings(1)}, ScreenOpts{DumpDir: dir})

	require.NoError(t, s.Update(context.Background()))

	fb, err := os.ReadFile(filepath.Join(dir, "dashboard.bin"))
	require.NoError(t, err)
	assert.Len(t, fb, 5808)
	_, err = os.Stat(filepath.Join(dir, "dashboard.png"))
	assert.NoError(t, err)
	assert.NoError(t, s.Shutdown())
}

func TestScreenShutdown(t *testing.T) {
	p := &fakePanel{state: epd2in7.Idle}
	s := NewScreen(p, testRenderer(t, false), staticSource{}, ScreenOpts{})

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())

	assert.Equal(t, []string{"Sleep"}, p.calls)
}
