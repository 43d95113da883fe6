package config

import (
	"fmt"
	"strings"

	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/model"
)

// normalize repairs recoverable issues in a parsed config and reports
// what it changed.
func normalize(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Hotkey.Trigger == 0 || len(cfg.Hotkey.Modifiers) == 0 {
		warnings = append(warnings, Warning{Message: "hotkey missing modifiers or trigger; using default"})
		cfg.Hotkey = hotkey.DefaultDescriptor()
	}
	if strings.TrimSpace(cfg.Hotkey.DisplayName) == "" {
		cfg.Hotkey.DisplayName = hotkey.BuildDisplayName(cfg.Hotkey.Modifiers, cfg.Hotkey.Trigger)
	}

	name := strings.TrimSpace(cfg.Model.Name)
	if name == "" {
		cfg.Model.Name = model.DefaultName
	} else if resolved := model.Lookup(name).Name; resolved != name {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("unknown model %q; using %q", cfg.Model.Name, resolved),
		})
		cfg.Model.Name = resolved
	}

	if strings.TrimSpace(cfg.Audio.Input) == "" {
		cfg.Audio.Input = "default"
	}
	if strings.TrimSpace(cfg.Audio.Fallback) == "" {
		cfg.Audio.Fallback = "default"
	}

	return warnings
}
