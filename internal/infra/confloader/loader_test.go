package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Storage struct {
		Backend string `koanf:"backend"`
		Dir     string `koanf:"dir"`
		Slots   int    `koanf:"slots"`
	} `koanf:"storage"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "savecore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  backend: badger
  dir: /tmp/saves
  slots: 10
log:
  level: debug
`)

	var cfg testConfig
	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "badger" || cfg.Storage.Slots != 10 {
		t.Errorf("storage = %+v, want badger with 10 slots", cfg.Storage)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if !loader.IsLoaded() {
		t.Error("IsLoaded() = false after successful load")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  backend: badger
  dir: /tmp/saves
`)
	t.Setenv("SAVECORE_STORAGE_BACKEND", "sqlite")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, env should override file", cfg.Storage.Backend)
	}
	if cfg.Storage.Dir != "/tmp/saves" {
		t.Errorf("dir = %q, file value should survive", cfg.Storage.Dir)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	var cfg testConfig
	err := NewLoader(WithConfigFile("/does/not/exist.yaml")).Load(&cfg)
	if err == nil {
		t.Fatal("Load() with missing file succeeded")
	}
}

func TestLoadMap(t *testing.T) {
	loader := NewLoader()
	if err := loader.LoadMap(map[string]any{"storage.backend": "memory"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := loader.GetString("storage.backend"); got != "memory" {
		t.Errorf("GetString() = %q, want memory", got)
	}
}

func TestLoad_CustomPrefix(t *testing.T) {
	t.Setenv("GAME_LOG_LEVEL", "warn")

	var cfg testConfig
	if err := NewLoader(WithEnvPrefix("GAME_")).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn from custom prefix", cfg.Log.Level)
	}
}
