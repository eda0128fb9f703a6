// Package netutil holds small address-classification and sampling helpers
// shared by the pipeline stages.
package netutil

import (
	"crypto/rand"
	"math/big"
	"net"
)

const lowerAlpha = "abcdefghijklmnopqrstuvwxyz"

// IsPublicIPv4 reports whether ip is a routable IPv4 address: not private
// (RFC 1918), not loopback, not link-local, not unspecified. It uses the
// standard library rather than a pack dependency — no third-party library
// in the corpus offers a more complete
// or more idiomatic private-range predicate than net.IP's own, and
// reimplementing the RFC 1918/loopback/link-local ranges by hand would be
// both redundant and a correctness risk (see DESIGN.md).
func IsPublicIPv4(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	return !v4.IsPrivate() && !v4.IsLoopback() && !v4.IsLinkLocalUnicast() && !v4.IsUnspecified()
}

// RandomVhostLabel returns a fresh lower-case ASCII 8-char label under
// ".com", per SPEC_FULL.md §4.5: a name vanishingly unlikely to exist,
// used both for SNI and for baselining "what does this service return for
// an unknown vhost".
func RandomVhostLabel() string {
	const n = 8
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(lowerAlpha))))
		if err != nil {
			// crypto/rand failing means the platform RNG is broken; there is
			// no sane fallback that preserves the "unlikely to exist" property.
			panic("netutil: crypto/rand unavailable: " + err.Error())
		}
		b[i] = lowerAlpha[idx.Int64()]
	}
	return string(b) + ".com"
}

// SampleWithoutReplacement returns a uniform random sample of size n from
// items, without replacement. If n <= 0 or n >= len(items), items is
// returned as-is with its order randomized (SPEC_FULL.md §9: when unset,
// the entire set is used but iteration order must still be randomized).
func SampleWithoutReplacement[T any](items []T, n int) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	shuffle(shuffled)
	if n <= 0 || n >= len(shuffled) {
		return shuffled
	}
	return shuffled[:n]
}

func shuffle[T any](items []T) {
	for i := len(items) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			panic("netutil: crypto/rand unavailable: " + err.Error())
		}
		j := int(jBig.Int64())
		items[i], items[j] = items[j], items[i]
	}
}
