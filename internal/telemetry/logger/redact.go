package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"api_key",
	"apikey",
	"credential",
	"auth",
	"bearer",
}

// Keys that carry raw save data. Payloads can contain anything the game
// wrote, so their values are masked wholesale rather than logged.
var payloadKeyNames = []string{
	"payload",
	"save_data",
	"record_body",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		keyLower := strings.ToLower(a.Key)

		if IsPayloadKey(keyLower) {
			return slog.String(a.Key, redactedValue)
		}

		if IsSensitiveKey(keyLower) {
			if a.Value.String() != "" {
				return slog.String(a.Key, redactedValue)
			}
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsPayloadKey checks if a key names a raw save payload field.
func IsPayloadKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, name := range payloadKeyNames {
		if keyLower == name {
			return true
		}
	}
	return false
}

// MaskSecret partially masks a secret, keeping a short prefix for
// correlation. Use this when a value would otherwise be fully hidden by
// the handler but an operator needs to tell two keys apart.
func MaskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****"
}
