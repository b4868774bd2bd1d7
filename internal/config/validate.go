package config

import (
	"errors"
	"fmt"
)

const maxPHYAddr = 31

// eeeModeMask covers the defined bits of the EEE advertisement register.
const eeeModeMask = 0x007e

// Validate checks configuration correctness. It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if _, ok := parseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}
	if len(cfg.Devices) == 0 {
		return errors.New("no devices configured")
	}
	names := make(map[string]int, len(cfg.Devices))
	for i, d := range cfg.Devices {
		if d.Interface == "" {
			return fmt.Errorf("device %d: interface is required", i)
		}
		if prev, exists := names[d.Name]; exists {
			return fmt.Errorf("device %q: name used by devices %d and %d", d.Name, prev, i)
		}
		names[d.Name] = i
		if d.PHYAddr != nil && *d.PHYAddr > maxPHYAddr {
			return fmt.Errorf("device %q: phy_addr %d out of range 0..%d", d.Name, *d.PHYAddr, maxPHYAddr)
		}
		if d.EEEAdvertise != nil && *d.EEEAdvertise&^eeeModeMask != 0 {
			return fmt.Errorf("device %q: eee_advertise %#x sets reserved bits", d.Name, *d.EEEAdvertise)
		}
	}
	return nil
}
