package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Load resolves the configuration in precedence order: defaults, TOML file,
// .env and process environment, then flags already written into cfg (listed
// in changed). An empty path falls back to DefaultConfigPath when that file
// exists.
func Load(cfg *Config, path string, changed map[string]bool) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if path == "" {
		if p := DefaultConfigPath(); p != "" && FileExists(p) {
			path = p
		}
	}
	if path != "" {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}
