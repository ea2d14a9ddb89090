package slot

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/sawyersrpg/savecore/pkg/crypto/adaptive"
)

// Encryption errors.
var (
	ErrKeyTooShort       = errors.New("slot: encryption key too short (minimum 16 bytes)")
	ErrPassphraseTooWeak = errors.New("slot: passphrase too weak (minimum 8 characters)")
)

const (
	minKeyLength        = 16
	minPassphraseLength = 8
	saltLength          = 16

	// Argon2id parameters for key derivation from a passphrase.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// EncryptionConfig configures at-rest save encryption.
type EncryptionConfig struct {
	// Key is the raw encryption key. Either Key or Passphrase must be
	// provided.
	Key []byte

	// Passphrase derives the key via Argon2id. If provided, Key is
	// ignored.
	Passphrase []byte

	// Salt is required to derive the same key on a later run. Nil
	// generates a new random salt; the caller must persist the salt
	// returned by NewEncryptedStore or previously saved records become
	// unreadable.
	Salt []byte

	// Algorithm selects the cipher: "aes-gcm" (default) or
	// "chacha20-poly1305". Empty picks per hardware.
	Algorithm string
}

// EncryptedStore wraps a Store with authenticated encryption. Each
// record is sealed with its storage key as additional data, so a value
// copied between slots fails to decrypt.
type EncryptedStore struct {
	inner  Store
	cipher adaptive.Cipher
}

// NewEncryptedStore builds an encrypting wrapper around inner. The
// returned salt is non-nil only for passphrase-derived keys and must be
// persisted by the caller.
func NewEncryptedStore(inner Store, cfg EncryptionConfig) (*EncryptedStore, []byte, error) {
	key := cfg.Key
	var salt []byte

	if len(cfg.Passphrase) > 0 {
		if len(cfg.Passphrase) < minPassphraseLength {
			return nil, nil, ErrPassphraseTooWeak
		}
		salt = cfg.Salt
		if salt == nil {
			salt = make([]byte, saltLength)
			if _, err := rand.Read(salt); err != nil {
				return nil, nil, fmt.Errorf("slot: derive key: %w", err)
			}
		}
		key = argon2.IDKey(cfg.Passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	} else if len(key) < minKeyLength {
		return nil, nil, ErrKeyTooShort
	}

	var (
		cipher adaptive.Cipher
		err    error
	)
	if cfg.Algorithm == "" {
		cipher, err = adaptive.New(key)
	} else {
		cipher, err = adaptive.NewWithType(key, adaptive.CipherType(cfg.Algorithm))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("slot: build cipher: %w", err)
	}

	return &EncryptedStore{inner: inner, cipher: cipher}, salt, nil
}

// Put seals and stores a record.
func (s *EncryptedStore) Put(ctx context.Context, key string, value []byte) error {
	sealed, err := s.cipher.Encrypt(value, []byte(key))
	if err != nil {
		return fmt.Errorf("slot: encrypt %s: %w", key, err)
	}
	return s.inner.Put(ctx, key, sealed)
}

// Get retrieves and opens a record. A record that fails authentication
// surfaces as a decrypt error, never as silent garbage.
func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	value, err := s.cipher.Decrypt(sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("slot: decrypt %s: %w", key, err)
	}
	return value, nil
}

// Delete removes a record.
func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Scan iterates over decrypted records. Undecryptable values abort the
// scan.
func (s *EncryptedStore) Scan(ctx context.Context, prefix string, fn func(key string, value []byte) bool) error {
	var decErr error
	err := s.inner.Scan(ctx, prefix, func(key string, sealed []byte) bool {
		value, err := s.cipher.Decrypt(sealed, []byte(key))
		if err != nil {
			decErr = fmt.Errorf("slot: decrypt %s: %w", key, err)
			return false
		}
		return fn(key, value)
	})
	if decErr != nil {
		return decErr
	}
	return err
}

// Close closes the underlying store.
func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}
