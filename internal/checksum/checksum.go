// Package checksum provides content digests for window documents. Digests
// back the If-Match optimistic concurrency check, sync change detection, and
// the catalog snapshot signature.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumPairs digests a key/checksum set as sorted "key:value" lines. The result
// changes iff any key or value changes, independent of map iteration order.
func SumPairs(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(pairs[k])
		b.WriteByte('\n')
	}
	return Sum([]byte(b.String()))
}
