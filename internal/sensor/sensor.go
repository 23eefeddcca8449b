// Package sensor provides the readings shown on the dashboard.
package sensor

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec describes one sensor line.
type Spec struct {
	Name   string
	Unit   string
	Metric string
}

// Reading is the latest state of one sensor. Value and Trend are nil when
// the collector has nothing for the metric.
type Reading struct {
	Name   string
	Metric string
	Unit   string
	Value  *float64
	Trend  *float64
}

var unitSymbols = map[string]string{
	"temperature": "℃",
	"humidity":    "%",
	"pressure":    "hPa",
}

// FormatValue renders the value with its unit symbol, or N/A.
func (r Reading) FormatValue() string {
	if r.Value == nil {
		return "N/A"
	}
	sym, ok := unitSymbols[r.Unit]
	if !ok {
		sym = r.Unit
	}
	return fmt.Sprintf("%05.2f %s", *r.Value, sym)
}

// TrendSymbol is an arrow for the trend: rising at 1 or more, falling at -1
// or less, steady otherwise. A missing trend is "-".
func (r Reading) TrendSymbol() string {
	switch {
	case r.Trend == nil:
		return "-"
	case *r.Trend >= 1:
		return "↗"
	case *r.Trend <= -1:
		return "↘"
	}
	return "→"
}

// Source yields the current readings in display order.
type Source interface {
	Readings(ctx context.Context) ([]Reading, error)
}

type sample struct {
	Value *float64 `yaml:"value"`
	Trend *float64 `yaml:"trend"`
}

// FileSource reads a YAML file kept up to date by an external collector:
//
//	living_room_temperature:
//	  value: 21.5
//	  trend: -0.2
//	balcony_humidity:
//	  value: 64
type FileSource struct {
	Path    string
	Sensors []Spec
}

func (s *FileSource) Readings(ctx context.Context) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("sensor: %w", err)
	}
	samples := map[string]sample{}
	if err := yaml.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("sensor: parse %s: %w", s.Path, err)
	}

	out := make([]Reading, 0, len(s.Sensors))
	for _, spec := range s.Sensors {
		smp := samples[spec.Metric]
		out = append(out, Reading{
			Name:   spec.Name,
			Metric: spec.Metric,
			Unit:   spec.Unit,
			Value:  smp.Value,
			Trend:  smp.Trend,
		})
	}
	return out, nil
}
