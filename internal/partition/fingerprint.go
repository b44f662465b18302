package partition

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// FingerprintFunc computes a song uid from (artist, title, album).
type FingerprintFunc func(artistName, title, albumName string) string

// Fingerprint hashes the plain concatenation of the three fields with SHA-256.
//
// There is no separator between fields, so ("AB", "C", "") and ("A", "BC", "") collide.
// Collisions are treated as the same song.
func Fingerprint(artistName, title, albumName string) string {
	sum := sha256.Sum256([]byte(artistName + title + albumName))
	return hex.EncodeToString(sum[:])
}

// DelimitedFingerprint hashes a length-prefixed encoding of the fields, removing field-boundary collisions.
//
// Its output is not interchangeable with [Fingerprint]; a catalog must use one scheme throughout.
func DelimitedFingerprint(artistName, title, albumName string) string {
	h := sha256.New()
	var size [8]byte
	for _, field := range []string{artistName, title, albumName} {
		binary.BigEndian.PutUint64(size[:], uint64(len(field)))
		h.Write(size[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintByName resolves a configured scheme name ("concat" or "delimited").
func FingerprintByName(name string) (FingerprintFunc, error) {
	switch name {
	case "", "concat":
		return Fingerprint, nil
	case "delimited":
		return DelimitedFingerprint, nil
	default:
		return nil, fmt.Errorf("unknown fingerprint scheme %q", name)
	}
}
