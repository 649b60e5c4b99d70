// Package digest derives cache validators for rendered QR artifacts.
package digest

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ETag returns a strong HTTP entity tag for the given parts. Each part is
// length-prefixed, so ("ab", "c") and ("a", "bc") differ.
func ETag(parts ...string) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// Match reports whether an If-None-Match header value matches etag.
func Match(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "W/"+etag {
			return true
		}
	}
	return false
}
