// Package codec centralizes document encoding and compression for
// persisted datasets.
//
// Codec names are stored next to the documents they produce, so changing
// a codec's output is a breaking change for files written earlier.
package codec

import (
	"fmt"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name. Compressed variants
// are named "<codec>+<compression>", for example "json+zstd".
func ByName(name string) (Codec, bool) {
	base, comp, compressed := strings.Cut(name, "+")
	var c Codec
	switch base {
	case "json":
		c = JSON{}
	default:
		return nil, false
	}
	if !compressed {
		return c, true
	}
	kind, err := ParseCompression(comp)
	if err != nil || kind == None {
		return nil, false
	}
	return Compressed{Codec: c, Compression: kind}, true
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
