package fta

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashHex computes the SHA-256 digest of the canonical text and returns it as
// a lowercase hex string (64 characters). Pure function: no timestamp, nonce
// or ambient state is mixed in. The signature and the QR payload both anchor
// on this value.
func HashHex(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
