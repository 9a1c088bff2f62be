// Package config loads run settings from TOML or YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full set of run settings.
type Config struct {
	Grid     GridConfig    `toml:"grid" yaml:"grid"`
	Sim      SimConfig     `toml:"sim" yaml:"sim"`
	Log      LogConfig     `toml:"log" yaml:"log"`
	Metrics  MetricsConfig `toml:"metrics" yaml:"metrics"`
	Scenario Scenario      `toml:"scenario" yaml:"scenario"`
}

type GridConfig struct {
	Size int `toml:"size" yaml:"size"`
}

type SimConfig struct {
	// Milliseconds between ticks when running on a timer; 0 runs flat out.
	TickIntervalMs int `toml:"tick_interval_ms" yaml:"tick_interval_ms"`
	// Time horizon of the timed search; 0 derives it from the grid.
	MaxTimeSteps int `toml:"max_time_steps" yaml:"max_time_steps"`
	// Treat path-marked cells as impassable.
	ExcludePathCells bool `toml:"exclude_path_cells" yaml:"exclude_path_cells"`
	// Mark planned paths on the grid.
	MarkPaths bool `toml:"mark_paths" yaml:"mark_paths"`
	// Stop a run after this many ticks; 0 means until halt.
	MaxTicks int `toml:"max_ticks" yaml:"max_ticks"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type MetricsConfig struct {
	// Listen address for /metrics; empty disables the endpoint.
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Grid: GridConfig{Size: 12},
		Sim: SimConfig{
			TickIntervalMs: 500,
			MarkPaths:      true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// TickInterval returns the tick cadence as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Sim.TickIntervalMs) * time.Millisecond
}

// Load reads path over the defaults, picking the decoder by extension,
// then applies environment overrides and validates. An empty path yields
// defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := decode(path, buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s parse failed: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, buf []byte, v any) error {
	switch format(path) {
	case "yaml":
		return yaml.Unmarshal(buf, v)
	default:
		return toml.Unmarshal(buf, v)
	}
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// Marshal encodes cfg as TOML or YAML ("yaml"/"yml" select YAML).
func Marshal(cfg Config, as string) ([]byte, error) {
	if format("."+as) == "yaml" {
		return yaml.Marshal(cfg)
	}
	return toml.Marshal(cfg)
}

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg Config) error {
	buf, err := Marshal(cfg, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf, 0o644)
}

// ApplyEnv overrides settings from DMAPF_GRID_SIZE, DMAPF_TICK_MS,
// DMAPF_METRICS_ADDR, LOG_LEVEL and LOG_FORMAT.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("DMAPF_GRID_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DMAPF_GRID_SIZE: %w", err)
		}
		c.Grid.Size = n
	}
	if v, ok := os.LookupEnv("DMAPF_TICK_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DMAPF_TICK_MS: %w", err)
		}
		c.Sim.TickIntervalMs = n
	}
	if v, ok := os.LookupEnv("DMAPF_METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	return nil
}

// Validate checks ranges and that every scenario cell fits the grid.
func (c Config) Validate() error {
	if c.Grid.Size < 1 {
		return fmt.Errorf("%w: grid.size %d must be positive", ErrInvalid, c.Grid.Size)
	}
	if c.Sim.TickIntervalMs < 0 {
		return fmt.Errorf("%w: sim.tick_interval_ms %d is negative", ErrInvalid, c.Sim.TickIntervalMs)
	}
	if c.Sim.MaxTimeSteps < 0 {
		return fmt.Errorf("%w: sim.max_time_steps %d is negative", ErrInvalid, c.Sim.MaxTimeSteps)
	}
	if c.Sim.MaxTicks < 0 {
		return fmt.Errorf("%w: sim.max_ticks %d is negative", ErrInvalid, c.Sim.MaxTicks)
	}
	return c.Scenario.validate(c.Grid.Size)
}
