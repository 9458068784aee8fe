package source

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/zeebo/blake3"
)

// hashPattern matches a lowercase 256-bit hex digest.
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Hashes holds the SHA-256 and BLAKE3 digests of decompressed content.
type Hashes struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Digest computes both hashes of data.
func Digest(data []byte) Hashes {
	s := sha256.Sum256(data)
	return Hashes{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: Blake3Hash(data),
	}
}

// Blake3Hash computes the BLAKE3 digest of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// IsValidHash reports whether s looks like a digest produced by Digest.
func IsValidHash(s string) bool {
	return hashPattern.MatchString(s)
}
