package hash

import "github.com/cespare/xxhash/v2"

// Key hashes parts separated by NUL bytes, so ("ab", "c") and ("a", "bc")
// differ. The result is stable across processes and platforms.
//
// Key mixes its input non-linearly: keys that differ only in one part
// produce unrelated sums, unlike a CRC.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}
