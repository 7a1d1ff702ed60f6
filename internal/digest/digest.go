package digest

import (
	"crypto/md5"  //nolint:gosec // Used for content deduplication, not security
	"crypto/sha1" //nolint:gosec // Used for content deduplication, not security
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a digest algorithm.
type Algorithm string

// Supported algorithms.
const (
	MD5        Algorithm = "md5"
	SHA1       Algorithm = "sha1"
	SHA256     Algorithm = "sha256"
	SHA3256    Algorithm = "sha3-256"
	BLAKE2b256 Algorithm = "blake2b-256"
)

// ErrUnknownAlgorithm is returned for an algorithm name that is not supported.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Algorithms returns the supported algorithms in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA1, SHA256, SHA3256, BLAKE2b256}
}

// Parse converts a case-insensitive name into an Algorithm.
func Parse(name string) (Algorithm, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	for _, a := range Algorithms() {
		if a == alg {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Size returns the digest length in bytes.
func (a Algorithm) Size() int {
	h, err := New(a)
	if err != nil {
		return 0
	}
	return h.Size()
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// New returns a fresh hash for the algorithm.
func New(a Algorithm) (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil //nolint:gosec // Used for content deduplication, not security
	case SHA1:
		return sha1.New(), nil //nolint:gosec // Used for content deduplication, not security
	case SHA256:
		return sha256.New(), nil
	case SHA3256:
		return sha3.New256(), nil
	case BLAKE2b256:
		// New256 only fails for keys longer than 64 bytes.
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Sum returns the lowercase hex digest of data.
func Sum(a Algorithm, data []byte) (string, error) {
	h, err := New(a)
	if err != nil {
		return "", err
	}
	_, _ = h.Write(data) // hash.Hash.Write never returns an error
	return hex.EncodeToString(h.Sum(nil)), nil
}
