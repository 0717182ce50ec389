// Package metadata computes and verifies content digests for published
// snapshots.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Digest verification errors.
var (
	ErrNoHashFound  = errors.New("no hash found in metadata")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Metadata describes one published snapshot.
type Metadata struct {
	LastModify time.Time
	Hash       string
	Count      int
}

// CalculateHash computes the SHA-256 hash of content.
func CalculateHash(content []byte) string {
	hash := sha256.Sum256(content)

	return hex.EncodeToString(hash[:])
}

// JSONHash hashes the compact JSON encoding of v, so formatting choices such
// as indentation do not change the digest.
func JSONHash(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode for hashing: %w", err)
	}

	return CalculateHash(data), nil
}

// New builds metadata for a value at a point in time.
func New(v any, count int, modified time.Time) (*Metadata, error) {
	hash, err := JSONHash(v)
	if err != nil {
		return nil, err
	}

	return &Metadata{LastModify: modified.UTC(), Hash: hash, Count: count}, nil
}

// Verify checks that v hashes to meta.Hash.
func Verify(v any, meta *Metadata) (bool, error) {
	if meta == nil || meta.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated, err := JSONHash(v)
	if err != nil {
		return false, err
	}

	if calculated != meta.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return true, nil
}

// ETag renders a hash as a strong HTTP entity tag.
func ETag(hash string) string {
	if len(hash) > 32 {
		hash = hash[:32]
	}

	return `"` + hash + `"`
}
