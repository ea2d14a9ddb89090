// Package config defines the savecore configuration structure.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyCloud(&cfg.Cloud); err != nil {
		return err
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case BackendBadger, BackendSQLite, BackendMemory:
	default:
		return errors.New("storage.backend must be badger, sqlite, or memory")
	}

	if cfg.Backend != BackendMemory {
		if cfg.Dir == "" {
			return errors.New("storage.dir is required")
		}
		if strings.HasPrefix(cfg.Dir, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return errors.New("cannot resolve home directory: " + err.Error())
			}
			cfg.Dir = filepath.Join(home, strings.TrimPrefix(cfg.Dir, "~"))
		}
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return errors.New("cannot create saves directory: " + err.Error())
		}
	}

	if cfg.Slots < 1 {
		return errors.New("storage.slots must be at least 1")
	}

	return nil
}

func verifyCloud(cfg *CloudSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Server == "" {
		return errors.New("cloud.server is required when cloud sync is enabled")
	}
	if cfg.UploadsPerSecond <= 0 {
		return errors.New("cloud.uploads_per_second must be positive")
	}
	return nil
}
