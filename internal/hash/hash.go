// Package hash computes artifact digests for reporting.
//
// wspack reports a SHA-256 digest and byte size for every packed archive so a
// deployment can be checked against what the build produced.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest is the content hash and size of a file.
type Digest struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Short returns the first 12 hex characters of the digest.
func (d Digest) Short() string {
	if len(d.SHA256) <= 12 {
		return d.SHA256
	}
	return d.SHA256[:12]
}

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the digest of the file at the given path.
	HashFile(path string) (Digest, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile streams the file through SHA-256, counting bytes as it goes.
func (h *SHA256Hasher) HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	n, err := io.Copy(hasher, file)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to read file: %w", err)
	}

	return Digest{SHA256: hex.EncodeToString(hasher.Sum(nil)), Size: n}, nil
}
