// Package digest computes content digests used for rewrite-on-close dirty
// detection: backends that cannot mutate their transport in place only
// rewrite the file when the decoded contents actually changed.
package digest

import "github.com/cespare/xxhash/v2"

// Sum computes the xxHash64 of the given byte regions in order.
func Sum(regions ...[]byte) uint64 {
	d := xxhash.New()
	for _, r := range regions {
		_, _ = d.Write(r)
	}

	return d.Sum64()
}
