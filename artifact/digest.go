package artifact

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// hashers maps the supported digest algorithms to their constructors. Only
// algorithms OCI descriptors actually carry are accepted; anything else is
// rejected at parse time rather than at verification time.
var hashers = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// Digest is a content hash pinned to its algorithm. The zero value means
// "no digest expected" and is skipped by integrity checks.
type Digest struct {
	algorithm string
	value     string // hex
}

// NewDigest creates a digest from an algorithm name and hex value.
func NewDigest(algorithm, hexValue string) (Digest, error) {
	if _, ok := hashers[algorithm]; !ok {
		return Digest{}, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
	return Digest{algorithm: algorithm, value: hexValue}, nil
}

// ParseDigest parses the canonical "algorithm:hex" form used in OCI
// descriptors and lockfiles.
func ParseDigest(s string) (Digest, error) {
	algorithm, value, ok := strings.Cut(s, ":")
	if !ok {
		return Digest{}, fmt.Errorf("invalid digest format: %s", s)
	}
	return NewDigest(algorithm, value)
}

// Compute hashes reader contents with the named algorithm.
func Compute(algorithm string, r io.Reader) (Digest, error) {
	newHash, ok := hashers[algorithm]
	if !ok {
		return Digest{}, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, err
	}
	return Digest{algorithm: algorithm, value: hex.EncodeToString(h.Sum(nil))}, nil
}

// ComputeDigestSHA256 computes the SHA-256 digest of reader contents, the
// default for locally stored modules.
func ComputeDigestSHA256(r io.Reader) (Digest, error) {
	return Compute("sha256", r)
}

func (d Digest) String() string {
	return d.algorithm + ":" + d.value
}

// Algorithm returns the hash algorithm name.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns the hex-encoded hash.
func (d Digest) Value() string {
	return d.value
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	return d.algorithm == "" && d.value == ""
}

// Equals checks equality with another digest.
func (d Digest) Equals(other Digest) bool {
	return d == other
}

// Verify re-hashes data with this digest's algorithm and returns an
// IntegrityError on mismatch.
func (d Digest) Verify(data []byte) error {
	computed, err := Compute(d.algorithm, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if !d.Equals(computed) {
		return &IntegrityError{Expected: d, Actual: computed}
	}
	return nil
}
