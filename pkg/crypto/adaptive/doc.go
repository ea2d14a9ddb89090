// Package adaptive provides authenticated encryption for save records,
// selecting the cipher per hardware: AES-256-GCM where AES runs in
// silicon (amd64, arm64), ChaCha20-Poly1305 elsewhere.
//
// The encrypting slot store derives the 32-byte key (Argon2id from the
// configured passphrase) and passes the storage key as associated
// data, which pins every sealed payload to its slot.
//
// Usage:
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(payload, []byte(slotKey))
//	payload, err := c.Decrypt(sealed, []byte(slotKey))
package adaptive
