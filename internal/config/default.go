// Package config defines the savecore configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultBackend    = "badger"
	DefaultDir        = "~/.sawyers-rpg/saves"
	DefaultSlots      = 10
	DefaultGCInterval = 10 * time.Minute

	DefaultUploadsPerSecond = 1.0
	DefaultUploadBurst      = 3

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsAddr = "127.0.0.1:9590"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageSection{
			Backend:    DefaultBackend,
			Dir:        DefaultDir,
			Slots:      DefaultSlots,
			SyncWrites: true,
			GCInterval: DefaultGCInterval,
		},
		Cloud: CloudSection{
			Enabled:          false,
			UploadsPerSecond: DefaultUploadsPerSecond,
			UploadBurst:      DefaultUploadBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
	}
}
