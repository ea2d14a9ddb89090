package adaptive

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"runtime"
)

// CipherType identifies the cipher algorithm. The names double as the
// `security.algorithm` config values.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// Cipher seals and opens save payloads. Callers bind a payload to its
// slot by passing the storage key as associated data, so a sealed
// record pasted into another slot fails to open.
type Cipher interface {
	Type() CipherType

	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)

	// NonceSize returns the nonce size in bytes.
	NonceSize() int

	// Overhead returns the authentication tag size in bytes.
	Overhead() int
}

// New creates a cipher with the given key, picking the algorithm the
// hardware runs fastest.
func New(key []byte) (Cipher, error) {
	if hardwareAES() {
		return NewAESGCM(key)
	}
	return NewChaCha20(key)
}

// NewWithType creates a cipher of the specified type. Used when the
// algorithm is pinned in config, since a store written with one cipher
// must be reopened with the same one.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	switch cipherType {
	case CipherAESGCM:
		return NewAESGCM(key)
	case CipherChaCha20:
		return NewChaCha20(key)
	default:
		return nil, errors.New("unknown cipher type: " + string(cipherType))
	}
}

// hardwareAES reports whether this architecture runs AES in hardware.
// Go's crypto/aes uses AES-NI on amd64 and the crypto extensions on
// arm64; everywhere else ChaCha20 wins.
func hardwareAES() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

// sealer wraps an AEAD with the nonce handling shared by both ciphers.
// The nonce is drawn fresh per call and prepended to the ciphertext.
type sealer struct {
	aead cipher.AEAD
}

func (s *sealer) NonceSize() int {
	return s.aead.NonceSize()
}

func (s *sealer) Overhead() int {
	return s.aead.Overhead()
}

func (s *sealer) encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (s *sealer) decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	if len(ciphertext) < s.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:s.aead.NonceSize()]
	ciphertext = ciphertext[s.aead.NonceSize():]

	return s.aead.Open(nil, nonce, ciphertext, additionalData)
}
