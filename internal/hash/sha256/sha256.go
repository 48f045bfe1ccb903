// Package sha256 provides the digest used to fingerprint stored leads.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLen is the number of hex characters kept by Short.
const ShortLen = 16

// Hasher hashes lead fingerprints with SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns the full hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Short returns the first ShortLen hex characters of the digest.
func (h *Hasher) Short(data []byte) (string, error) {
	full, err := h.Hash(data)
	if err != nil {
		return "", err
	}
	return full[:ShortLen], nil
}
