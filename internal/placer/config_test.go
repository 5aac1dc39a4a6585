// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package placer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fdplace.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate: %v", err)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
nodes = 64
workers = 2
damping = 0.5
max_park = "250us"
pin_workers = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Nodes != 64 || cfg.Workers != 2 || cfg.Damping != 0.5 || !cfg.PinWorkers {
		t.Fatalf("LoadConfig: got %+v", cfg)
	}
	if cfg.MaxPark.Duration != 250*time.Microsecond {
		t.Fatalf("MaxPark: got %v, want 250µs", cfg.MaxPark.Duration)
	}
	def := DefaultConfig()
	if cfg.Iterations != def.Iterations || cfg.Spacing != def.Spacing {
		t.Fatalf("absent keys: got iterations=%d spacing=%v, want defaults", cfg.Iterations, cfg.Spacing)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown key", "nodez = 3\n", ErrInvalidConfig},
		{"invalid value", "workers = 0\n", ErrInvalidConfig},
		{"utilization above one", "utilization = 1.5\n", ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); !errors.Is(err, tt.want) {
				t.Fatalf("LoadConfig: got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(writeConfig(t, "max_park = \"soon\"\n")); err == nil {
		t.Fatal("LoadConfig with bad duration: want error")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("LoadConfig of missing file: want error")
	}
}

func TestDurationText(t *testing.T) {
	d := Duration{1500 * time.Millisecond}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back Duration
	if err := back.UnmarshalText(text); err != nil || back != d {
		t.Fatalf("UnmarshalText(%s): got (%v, %v), want %v", text, back, err, d)
	}
}
