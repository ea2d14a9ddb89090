package adaptive

import (
	"bytes"
	"strings"
	"testing"
)

var savePayload = []byte(`{"player":{"name":"Sawyer","level":7,"gold":340},"currentArea":"ashwood_village"}`)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestNew(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	switch c.Type() {
	case CipherAESGCM, CipherChaCha20:
	default:
		t.Errorf("Type() = %q, want a known cipher", c.Type())
	}
}

func TestNewWithType(t *testing.T) {
	tests := []struct {
		cipherType CipherType
		want       CipherType
	}{
		{CipherAESGCM, CipherAESGCM},
		{CipherChaCha20, CipherChaCha20},
	}

	for _, tt := range tests {
		t.Run(string(tt.cipherType), func(t *testing.T) {
			c, err := NewWithType(testKey(), tt.cipherType)
			if err != nil {
				t.Fatalf("NewWithType() error = %v", err)
			}
			if c.Type() != tt.want {
				t.Errorf("Type() = %q, want %q", c.Type(), tt.want)
			}
		})
	}
}

func TestNewWithType_Unknown(t *testing.T) {
	_, err := NewWithType(testKey(), "rot13")
	if err == nil {
		t.Fatal("NewWithType() expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "unknown cipher type") {
		t.Errorf("error = %v", err)
	}
}

func TestNewAESGCM_KeySizes(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		if _, err := NewAESGCM(make([]byte, size)); err != nil {
			t.Errorf("NewAESGCM(%d-byte key) error = %v", size, err)
		}
	}
	for _, size := range []int{0, 15, 31, 33} {
		if _, err := NewAESGCM(make([]byte, size)); err == nil {
			t.Errorf("NewAESGCM(%d-byte key) expected error", size)
		}
	}
}

func TestNewChaCha20_KeySizes(t *testing.T) {
	if _, err := NewChaCha20(make([]byte, 32)); err != nil {
		t.Errorf("NewChaCha20(32-byte key) error = %v", err)
	}
	for _, size := range []int{0, 16, 31, 33} {
		if _, err := NewChaCha20(make([]byte, size)); err == nil {
			t.Errorf("NewChaCha20(%d-byte key) expected error", size)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, cipherType := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(cipherType), func(t *testing.T) {
			c, err := NewWithType(testKey(), cipherType)
			if err != nil {
				t.Fatalf("NewWithType() error = %v", err)
			}

			slotKey := []byte("sawyers_rpg_save_slot_0")
			sealed, err := c.Encrypt(savePayload, slotKey)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bytes.Contains(sealed, []byte("Sawyer")) {
				t.Error("sealed payload leaks plaintext")
			}

			opened, err := c.Decrypt(sealed, slotKey)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened, savePayload) {
				t.Errorf("Decrypt() = %q, want original payload", opened)
			}
		})
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	for _, cipherType := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(cipherType), func(t *testing.T) {
			c, err := NewWithType(testKey(), cipherType)
			if err != nil {
				t.Fatalf("NewWithType() error = %v", err)
			}

			slotKey := []byte("sawyers_rpg_save_slot_0")
			sealed, err := c.Encrypt(savePayload, slotKey)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			sealed[len(sealed)-1] ^= 0x01
			if _, err := c.Decrypt(sealed, slotKey); err == nil {
				t.Error("Decrypt() accepted a tampered payload")
			}
		})
	}
}

func TestDecrypt_WrongSlotKey(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sealed, err := c.Encrypt(savePayload, []byte("sawyers_rpg_save_slot_0"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// A record copied into another slot must not open there.
	if _, err := c.Decrypt(sealed, []byte("sawyers_rpg_save_slot_1")); err == nil {
		t.Error("Decrypt() accepted a payload sealed for another slot")
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := c.Decrypt([]byte("short"), nil); err == nil {
		t.Error("Decrypt() accepted ciphertext shorter than a nonce")
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a, err := c.Encrypt(savePayload, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	b, err := c.Encrypt(savePayload, nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same payload produced identical ciphertexts")
	}
}
