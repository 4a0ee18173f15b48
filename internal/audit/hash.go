// Package audit computes content digests of documents and persists the
// before/after records that tie a stamped output to its source.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the SHA-256 digest of data
func Hash(data []byte) [sha256.Size]byte {
	return sha256.Sum256(data)
}

// HashHex returns the SHA-256 digest of data as a lowercase hex string
func HashHex(data []byte) string {
	sum := Hash(data)
	return hex.EncodeToString(sum[:])
}
