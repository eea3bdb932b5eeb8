// Package obfuscation turns internal resource records into public-safe
// records. Every transform is deterministic; none reads shared state.
package obfuscation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
)

const (
	gpuIDPrefix  = "gh-gpu-"
	cpuIDPrefix  = "gh-cpu-"
	publicIDHash = 6
)

// ToPublicResourceID derives a public id from an internal id with a 32-bit
// string hash rendered in base 36. It is stable across processes but not
// secret; use an IDObfuscator with a key for unlinkable ids.
func ToPublicResourceID(internalID string) string {
	var h int32
	for _, c := range internalID {
		h = (h << 5) - h + int32(c)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return publicIDPrefix(internalID) + truncate(strconv.FormatInt(n, 36))
}

// publicIDPrefix matches the lowercase "gpu" marker only
func publicIDPrefix(internalID string) string {
	if strings.Contains(internalID, "gpu") {
		return gpuIDPrefix
	}
	return cpuIDPrefix
}

func truncate(s string) string {
	if len(s) > publicIDHash {
		return s[:publicIDHash]
	}
	return s
}

// IDObfuscator produces public ids. With a key it uses HMAC-SHA256 so ids
// cannot be linked back without the key; without one it falls back to
// ToPublicResourceID. The output format is the same in both modes.
type IDObfuscator struct {
	key []byte
}

// NewIDObfuscator creates an obfuscator. An empty secret selects the unkeyed hash.
func NewIDObfuscator(secret string) *IDObfuscator {
	o := &IDObfuscator{}
	if secret != "" {
		o.key = []byte(secret)
	}
	return o
}

// Keyed reports whether the obfuscator uses a secret key
func (o *IDObfuscator) Keyed() bool {
	return o != nil && len(o.key) > 0
}

// PublicID returns the public id for an internal id
func (o *IDObfuscator) PublicID(internalID string) string {
	if !o.Keyed() {
		return ToPublicResourceID(internalID)
	}

	mac := hmac.New(sha256.New, o.key)
	mac.Write([]byte(internalID))
	sum := mac.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])

	encoded := strconv.FormatUint(n, 36)
	// Left-pad so short encodings keep the fixed width
	if len(encoded) < publicIDHash {
		encoded = strings.Repeat("0", publicIDHash-len(encoded)) + encoded
	}
	return publicIDPrefix(internalID) + truncate(encoded)
}
