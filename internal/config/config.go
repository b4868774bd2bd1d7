// Package config loads the YAML configuration of the rtlphy command.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soypat/rtlphy/internal"
)

type Config struct {
	Log     LogConfig      `yaml:"log"`
	Devices []DeviceConfig `yaml:"devices"`
}

type LogConfig struct {
	// Level is one of trace, debug, info, warn or error.
	Level string `yaml:"level"`
}

// DeviceConfig names a PHY reachable through a network interface's MDIO bus.
type DeviceConfig struct {
	Name      string `yaml:"name"`
	Interface string `yaml:"interface"`
	// PHYAddr is the Clause 22 address. When nil the address reported by
	// the interface driver is used.
	PHYAddr *uint8 `yaml:"phy_addr"`
	// EEEAdvertise is the EEE mode mask written by the eee-adv command.
	EEEAdvertise *uint16 `yaml:"eee_advertise"`
}

// Load reads, normalizes and validates the configuration at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown fields are rejected.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil {
		return nil, err
	}
	Normalize(&cfg)
	err = Validate(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Device returns the device configuration called name.
func (cfg *Config) Device(name string) (DeviceConfig, bool) {
	for _, d := range cfg.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return DeviceConfig{}, false
}

// SlogLevel returns the configured log level. Validate rejects unknown levels.
func (l LogConfig) SlogLevel() slog.Level {
	lvl, _ := parseLevel(l.Level)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "trace":
		return internal.LevelTrace, true
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
