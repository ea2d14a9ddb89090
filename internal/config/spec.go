// Package config defines the savecore configuration structure.
package config

import "time"

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the root configuration for savecore.
type Config struct {
	Storage  StorageSection  `koanf:"storage" yaml:"storage"`
	Cloud    CloudSection    `koanf:"cloud" yaml:"cloud"`
	Security SecuritySection `koanf:"security" yaml:"security"`
	Log      LogSection      `koanf:"log" yaml:"log"`
	Metrics  MetricsSection  `koanf:"metrics" yaml:"metrics"`
}

// StorageSection configures the local save store.
type StorageSection struct {
	// Backend selects the store implementation: "badger", "sqlite", or
	// "memory".
	Backend string `koanf:"backend" yaml:"backend"`

	// Dir is the saves directory. The SQLite backend stores a single
	// saves.db file inside it.
	Dir string `koanf:"dir" yaml:"dir"`

	// Slots is the fixed save slot count.
	Slots int `koanf:"slots" yaml:"slots"`

	// SyncWrites forces an fsync per write on the Badger backend.
	SyncWrites bool `koanf:"sync_writes" yaml:"sync_writes"`

	// GCInterval is the Badger value log GC cadence.
	GCInterval time.Duration `koanf:"gc_interval" yaml:"gc_interval"`
}

// CloudSection configures remote save sync.
type CloudSection struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Server  string `koanf:"server" yaml:"server"`
	APIKey  string `koanf:"api_key" yaml:"api_key"`

	// CAFile is an optional PEM bundle trusted in addition to the
	// system roots when talking to the save server.
	CAFile string `koanf:"ca_file" yaml:"ca_file"`

	// UploadsPerSecond paces outbound sync requests.
	UploadsPerSecond float64 `koanf:"uploads_per_second" yaml:"uploads_per_second"`
	UploadBurst      int     `koanf:"upload_burst" yaml:"upload_burst"`
}

// SecuritySection configures at-rest save encryption. Empty passphrase
// disables encryption.
type SecuritySection struct {
	EncryptionPassphrase string `koanf:"encryption_passphrase" yaml:"encryption_passphrase"`

	// EncryptionSaltFile persists the key derivation salt between runs.
	EncryptionSaltFile string `koanf:"encryption_salt_file" yaml:"encryption_salt_file"`

	// Algorithm selects the cipher: "aes-gcm" or "chacha20-poly1305".
	// Empty picks per hardware.
	Algorithm string `koanf:"algorithm" yaml:"algorithm"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
}
