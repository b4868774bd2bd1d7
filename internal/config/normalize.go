package config

import "strings"

// Normalize fills in defaults. It is called before Validate so that
// validation sees the effective configuration.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		d.Interface = strings.TrimSpace(d.Interface)
		if d.Name == "" {
			d.Name = d.Interface
		}
	}
}
