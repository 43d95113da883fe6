package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath returns the config file location: an explicit path wins,
// otherwise the per-user config dir (XDG_CONFIG_HOME or ~/.config).
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "parla", "config.toml"), nil
}
