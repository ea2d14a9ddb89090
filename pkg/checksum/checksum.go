// Package checksum provides payload integrity digests for save data.
//
// Two digests are exposed. Generate produces the SHA-256 integrity
// checksum stored alongside every save record; it detects tampering and
// on-disk corruption. Fingerprint produces a cheap murmur3 value used
// only to detect "has this payload changed since the last upload" and
// carries no integrity guarantee.
package checksum

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/spaolacci/murmur3"

	"github.com/sawyersrpg/savecore/pkg/canonical"
)

// Generate computes the hex SHA-256 digest of the canonical form of v.
//
// Objects are canonicalized to sorted-key JSON first; strings are
// digested as-is. Equal inputs always yield equal output. Serialization
// errors (for example cyclic structures) propagate to the caller.
func Generate(v any) (string, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest of v and compares it with expected.
//
// It never returns an error on mismatch, only false. A value that
// cannot be serialized also reports false.
func Verify(v any, expected string) bool {
	actual, err := Generate(v)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}

// Fingerprint computes a 64-bit murmur3 fingerprint over the canonical
// form of v. Used for change detection, not integrity.
func Fingerprint(v any) (uint64, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return 0, err
	}
	return murmur3.Sum64(data), nil
}
