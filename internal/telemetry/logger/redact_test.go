package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Log with sensitive key names (should be redacted regardless of value)
	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{"password", "mysecret123", "***REDACTED***"},
		{"encryption_passphrase", "hunter2", "***REDACTED***"},
		{"api_key", "some-key-value", "***REDACTED***"},
		{"auth_token", "bearer-xyz", "***REDACTED***"},
		{"credential", "cred123", "***REDACTED***"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			buf.Reset()
			l.Info("test", tt.key, tt.value)

			var logEntry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}

			val, ok := logEntry[tt.key].(string)
			if !ok {
				t.Fatalf("Expected %s field in log", tt.key)
			}

			if val != tt.expected {
				t.Errorf("Key %q should be redacted to %q, got %q", tt.key, tt.expected, val)
			}
		})
	}
}

func TestRedactSensitive_PayloadKey(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	raw := `{"player":{"name":"Sawyer","gold":340}}`
	l.Info("record written", "payload", raw)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	val, ok := logEntry["payload"].(string)
	if !ok {
		t.Fatal("Expected payload field in log")
	}
	if val != "***REDACTED***" {
		t.Errorf("Payload should be redacted, got: %s", val)
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Normal values should not be redacted
	l.Info("slot saved", "slot_key", "sawyers_rpg_save_slot_3", "checksum", "abc123")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if key, ok := logEntry["slot_key"].(string); !ok || key != "sawyers_rpg_save_slot_3" {
		t.Errorf("Slot key should not be redacted, got: %v", logEntry["slot_key"])
	}

	if sum, ok := logEntry["checksum"].(string); !ok || sum != "abc123" {
		t.Errorf("Checksum (public) should not be redacted, got: %v", logEntry["checksum"])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"encryption_passphrase", true},
		{"PASSWORD", true},
		{"secret", true},
		{"api_secret", true},
		{"token", true},
		{"auth_token", true},
		{"api_key", true},
		{"credential", true},
		{"auth", true},
		{"bearer", true},
		{"slot_key", false},
		{"slot_index", false},
		{"checksum", false},
		{"operation_id", false},
		{"data", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			result := IsSensitiveKey(tt.key)
			if result != tt.sensitive {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, result, tt.sensitive)
			}
		})
	}
}

func TestIsPayloadKey(t *testing.T) {
	tests := []struct {
		key     string
		payload bool
	}{
		{"payload", true},
		{"Payload", true},
		{"save_data", true},
		{"record_body", true},
		{"payload_size", false},
		{"metadata", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			result := IsPayloadKey(tt.key)
			if result != tt.payload {
				t.Errorf("IsPayloadKey(%q) = %v, want %v", tt.key, result, tt.payload)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "long value",
			value:    "correct-horse-battery-staple",
			expected: "corr****",
		},
		{
			name:     "short value",
			value:    "hunter2",
			expected: "****",
		},
		{
			name:     "empty value",
			value:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MaskSecret(tt.value)
			if result != tt.expected {
				t.Errorf("MaskSecret(%q) = %q, want %q", tt.value, result, tt.expected)
			}
		})
	}
}
