package dashboard

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/toothrot/inkdash/devices/epd2in7"
	"github.com/toothrot/inkdash/internal/sensor"
)

// Panel is the part of *epd2in7.Dev a Screen drives.
type Panel interface {
	Init() error
	State() epd2in7.State
	Encode(img image.Image) (epd2in7.FrameBuffer, error)
	Display(fb epd2in7.FrameBuffer) error
	Sleep() error
}

// ScreenOpts configures a Screen.
type ScreenOpts struct {
	// SleepBetween puts the panel to sleep after every update.
	SleepBetween bool
	// DumpDir, when set, receives dashboard.png and dashboard.bin on every
	// update.
	DumpDir string
	Logger  zerolog.Logger
}

// Screen renders the readings of a source onto a panel. Updates from the
// scheduler and the refresh button are serialized.
type Screen struct {
	mu       sync.Mutex
	panel    Panel
	renderer *Renderer
	source   sensor.Source
	opts     ScreenOpts
}

// NewScreen returns a Screen. A nil panel only renders, which together with
// DumpDir allows running without hardware.
func NewScreen(panel Panel, r *Renderer, src sensor.Source, opts ScreenOpts) *Screen {
	return &Screen{panel: panel, renderer: r, source: src, opts: opts}
}

// Update fetches the readings, renders them and shows the result.
func (s *Screen) Update(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	defer func(start time.Time) {
		s.opts.Logger.Debug().Dur("took", time.Since(start)).Msg("update")
	}(now)

	readings, err := s.source.Readings(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: readings: %w", err)
	}
	img := s.renderer.Render(readings)

	if s.panel == nil {
		fb, err := epd2in7.Encode(epd2in7.EPD2in7, img)
		if err != nil {
			return err
		}
		return s.dump(img, fb)
	}

	if s.panel.State() != epd2in7.Idle {
		s.opts.Logger.Info().Stringer("state", s.panel.State()).Msg("initializing panel")
		if err := s.panel.Init(); err != nil {
			return fmt.Errorf("dashboard: init: %w", err)
		}
	}
	fb, err := s.panel.Encode(img)
	if err != nil {
		return err
	}
	if err := s.dump(img, fb); err != nil {
		s.opts.Logger.Warn().Err(err).Msg("dump failed")
	}
	if err := s.panel.Display(fb); err != nil {
		return fmt.Errorf("dashboard: display: %w", err)
	}
	s.opts.Logger.Info().Int("readings", len(readings)).Msg("panel updated")
	if s.opts.SleepBetween {
		return s.panel.Sleep()
	}
	return nil
}

// Shutdown puts the panel to sleep if it is awake.
func (s *Screen) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.panel == nil || s.panel.State() != epd2in7.Idle {
		return nil
	}
	s.opts.Logger.Info().Msg("shutting down")
	return s.panel.Sleep()
}

func (s *Screen) dump(img image.Image, fb epd2in7.FrameBuffer) error {
	if s.opts.DumpDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.opts.DumpDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.opts.DumpDir, "dashboard.png"))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.opts.DumpDir, "dashboard.bin"), fb, 0o644)
}
