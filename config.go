// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that reads and writes Go duration strings
// ("16ms", "5s") in TOML files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config controls the bridge. The zero value is not useful; start from
// DefaultConfig or LoadConfig.
type Config struct {
	// TickInterval is how often the owner loop pumps the toolkit and ticks
	// live widgets. Zero disables the pump.
	TickInterval Duration `toml:"tick_interval"`

	// DecisionTimeout bounds how long the owner thread waits for the control
	// thread to answer a decision callback before applying the default
	// answer. Zero waits until the decision is answered, the instance is
	// destroyed, or the bridge shuts down.
	DecisionTimeout Duration `toml:"decision_timeout"`

	// EventBacklog caps queued notifications. When exceeded the oldest
	// notifications are dropped; decisions are never dropped. Zero means
	// unbounded.
	EventBacklog int `toml:"event_backlog"`

	Ultralight UltralightConfig `toml:"ultralight"`
}

// UltralightConfig holds settings for the native Ultralight widget.
type UltralightConfig struct {
	// BaseDir contains the bridge shared library and the Ultralight SDK
	// libraries. Empty means the working directory, then the executable's.
	BaseDir string `toml:"base_dir"`
	// Debug enables the native bridge's own log files.
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the defaults used when no file is given.
func DefaultConfig() Config {
	return Config{
		TickInterval:    Duration{16 * time.Millisecond},
		DecisionTimeout: Duration{5 * time.Second},
		EventBacklog:    4096,
	}
}

// ParseConfig decodes TOML on top of DefaultConfig, so a file only needs
// the keys it changes.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func (c Config) validate() error {
	if c.TickInterval.Duration < 0 {
		return fmt.Errorf("config: tick_interval must not be negative, got %s", c.TickInterval)
	}
	if c.DecisionTimeout.Duration < 0 {
		return fmt.Errorf("config: decision_timeout must not be negative, got %s", c.DecisionTimeout)
	}
	if c.EventBacklog < 0 {
		return fmt.Errorf("config: event_backlog must not be negative, got %d", c.EventBacklog)
	}
	return nil
}
