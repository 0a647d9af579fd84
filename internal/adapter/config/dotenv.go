package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files without overwriting variables already set.
// Explicit paths come first, then ./.env, then .env next to the config file.
func LoadDotEnv(configPath string, paths ...string) error {
	candidates := append([]string{}, paths...)
	candidates = append(candidates, ".env")
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
