// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package placer

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is returned for a configuration that cannot run.
var ErrInvalidConfig = errors.New("placer: invalid config")

// Duration is a time.Duration decoded from a TOML string such as "10ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config describes one placement run.
type Config struct {
	// Synthetic netlist
	Nodes       int     `toml:"nodes"`
	Nets        int     `toml:"nets"`
	NetSize     int     `toml:"net_size"`
	MaxNodeSize float64 `toml:"max_node_size"`

	// Grid: cell side is MaxNodeSize·Spacing; the grid holds
	// Nodes/Utilization fields.
	Spacing     float64 `toml:"spacing"`
	Utilization float64 `toml:"utilization"`

	// Force model
	Iterations       int     `toml:"iterations"`
	Damping          float64 `toml:"damping"`
	OverlapThreshold float64 `toml:"overlap_threshold"`

	// Pipeline
	Workers    int      `toml:"workers"`
	MaxPark    Duration `toml:"max_park"`
	PinWorkers bool     `toml:"pin_workers"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Nodes:            400,
		Nets:             600,
		NetSize:          4,
		MaxNodeSize:      4,
		Spacing:          1.25,
		Utilization:      0.5,
		Iterations:       20,
		Damping:          0.8,
		OverlapThreshold: 0.5,
		Workers:          4,
		MaxPark:          Duration{10 * time.Millisecond},
	}
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
// Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case c.Nodes < 1:
		return fmt.Errorf("%w: nodes must be >= 1, got %d", ErrInvalidConfig, c.Nodes)
	case c.Nets < 0:
		return fmt.Errorf("%w: nets must be >= 0, got %d", ErrInvalidConfig, c.Nets)
	case c.NetSize < 2:
		return fmt.Errorf("%w: net_size must be >= 2, got %d", ErrInvalidConfig, c.NetSize)
	case c.MaxNodeSize < 1:
		return fmt.Errorf("%w: max_node_size must be >= 1, got %v", ErrInvalidConfig, c.MaxNodeSize)
	case c.Spacing < 1:
		return fmt.Errorf("%w: spacing must be >= 1, got %v", ErrInvalidConfig, c.Spacing)
	case c.Utilization <= 0 || c.Utilization > 1:
		return fmt.Errorf("%w: utilization must be in (0, 1], got %v", ErrInvalidConfig, c.Utilization)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidConfig, c.Iterations)
	case c.Damping <= 0 || c.Damping > 1:
		return fmt.Errorf("%w: damping must be in (0, 1], got %v", ErrInvalidConfig, c.Damping)
	case c.OverlapThreshold < 0 || c.OverlapThreshold > 1:
		return fmt.Errorf("%w: overlap_threshold must be in [0, 1], got %v", ErrInvalidConfig, c.OverlapThreshold)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}
