package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/autobot-dev/autobot/internal/config"
)

// runPreflight fails early with a readable message when neither a config
// file nor the required environment overrides are present.
func runPreflight(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config %s: %w", path, err)
	}

	var missing []string
	for _, key := range []string{"WS_SERVER", "SELF_ID"} {
		if strings.TrimSpace(os.Getenv(config.EnvPrefix+key)) == "" {
			missing = append(missing, config.EnvPrefix+key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no configuration found: create %s or set %s", path, strings.Join(missing, ", "))
	}
	return nil
}
