// Package config holds the inkdash configuration and its YAML load/save.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

// Pins names the GPIO lines of the panel. Empty fields use the HAT defaults.
type Pins struct {
	SPI  string `yaml:"spi"`
	Busy string `yaml:"busy"`
	CS   string `yaml:"cs,omitempty"`
	DC   string `yaml:"dc"`
	RST  string `yaml:"rst"`
}

// Display configures the panel.
type Display struct {
	Pins Pins `yaml:"pins"`
	// BusyTimeout bounds every wait on the busy line. Zero waits forever.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	// Orientation is "portrait" (176x264) or "landscape" (264x176).
	Orientation string `yaml:"orientation"`
	// SleepBetween powers the panel down between refreshes.
	SleepBetween bool `yaml:"sleep_between"`
}

// Fonts configures the dashboard typography. Sizes are in points.
type Fonts struct {
	// Path is a TrueType file. Empty uses the built-in Go font.
	Path        string  `yaml:"path,omitempty"`
	Measurement float64 `yaml:"measurement"`
	Description float64 `yaml:"description"`
	Toolbar     float64 `yaml:"toolbar"`
}

// Buttons names the GPIO lines of the HAT keys.
type Buttons struct {
	// Refresh triggers an immediate redraw. Empty disables it.
	Refresh string `yaml:"refresh,omitempty"`
}

// Sensor is one line of the dashboard.
type Sensor struct {
	Name string `yaml:"name"`
	// Unit selects the value suffix, e.g. "temperature".
	Unit string `yaml:"unit"`
	// Metric is the key in the readings file.
	Metric string `yaml:"metric"`
}

// Config is the top-level application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// Refresh is a cron schedule, e.g. "*/5 * * * *".
	Refresh      string   `yaml:"refresh"`
	Display      Display  `yaml:"display"`
	Fonts        Fonts    `yaml:"fonts"`
	Buttons      Buttons  `yaml:"buttons"`
	ReadingsFile string   `yaml:"readings_file"`
	Sensors      []Sensor `yaml:"sensors"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Refresh:  "*/5 * * * *",
		Display: Display{
			Pins: Pins{
				Busy: "P1_18",
				DC:   "P1_22",
				RST:  "P1_11",
			},
			BusyTimeout: 30 * time.Second,
			Orientation: Portrait,
		},
		Fonts: Fonts{
			Measurement: 32,
			Description: 10,
			Toolbar:     18,
		},
		Buttons: Buttons{
			Refresh: "P1_29",
		},
		ReadingsFile: "/var/lib/inkdash/readings.yaml",
		Sensors: []Sensor{
			{Name: "Living room", Unit: "temperature", Metric: "living_room_temperature"},
		},
	}
}

// Normalize fills in missing values with defaults so that partially filled
// files still work.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Refresh == "" {
		c.Refresh = d.Refresh
	}
	if c.Display.Pins.Busy == "" {
		c.Display.Pins.Busy = d.Display.Pins.Busy
	}
	if c.Display.Pins.DC == "" {
		c.Display.Pins.DC = d.Display.Pins.DC
	}
	if c.Display.Pins.RST == "" {
		c.Display.Pins.RST = d.Display.Pins.RST
	}
	if c.Display.BusyTimeout < 0 {
		c.Display.BusyTimeout = 0
	}
	switch c.Display.Orientation {
	case Portrait, Landscape:
	default:
		c.Display.Orientation = Portrait
	}
	if c.Fonts.Measurement <= 0 {
		c.Fonts.Measurement = d.Fonts.Measurement
	}
	if c.Fonts.Description <= 0 {
		c.Fonts.Description = d.Fonts.Description
	}
	if c.Fonts.Toolbar <= 0 {
		c.Fonts.Toolbar = d.Fonts.Toolbar
	}
	if c.ReadingsFile == "" {
		c.ReadingsFile = d.ReadingsFile
	}
	if c.Sensors == nil {
		c.Sensors = []Sensor{}
	}
}

// Validate reports settings that cannot be fixed by Normalize.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		return fmt.Errorf("config: refresh %q: %w", c.Refresh, err)
	}
	for i, s := range c.Sensors {
		if s.Metric == "" {
			return fmt.Errorf("config: sensor %d (%q) has no metric", i, s.Name)
		}
	}
	return nil
}

// Load reads the YAML file at path. On first run the file does not exist yet;
// a default one is written and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path through a temp file and rename, with 0600
// permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".inkdash-config-*.tmp")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
