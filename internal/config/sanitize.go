// Package config defines the savecore configuration structure.
package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	if sanitized.Cloud.APIKey != "" {
		sanitized.Cloud.APIKey = maskSecret(sanitized.Cloud.APIKey)
	}
	if sanitized.Security.EncryptionPassphrase != "" {
		sanitized.Security.EncryptionPassphrase = maskSecret(sanitized.Security.EncryptionPassphrase)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
