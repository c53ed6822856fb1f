package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects a stream compression applied to encoded documents.
type Compression uint8

const (
	// None stores documents as encoded.
	None Compression = iota
	// LZ4 uses the LZ4 frame format (fast).
	LZ4
	// Zstd uses the Zstandard frame format (better ratio).
	Zstd
)

// ErrUnknownCompression is returned for unsupported compression names.
var ErrUnknownCompression = errors.New("codec: unknown compression")

// ParseCompression converts a compression name. The empty string is None.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return Zstd, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

func (c Compression) String() string {
	switch c {
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return "none"
	}
}

// Ext is the file name suffix for documents in this compression.
func (c Compression) Ext() string {
	switch c {
	case LZ4:
		return ".lz4"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect reports the compression of data from its frame magic.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4
	default:
		return None
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress compresses data as a single frame.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case None:
		return data, nil
	case Zstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// Decompress reverses Compress. The compression is detected from the data;
// uncompressed input is returned as is.
func Decompress(data []byte) ([]byte, error) {
	switch Detect(data) {
	case Zstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		return dec.DecodeAll(data, nil)
	case LZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return data, nil
	}
}

// Compressed wraps a codec with a compression.
type Compressed struct {
	Codec       Codec
	Compression Compression
}

// Marshal encodes then compresses.
func (c Compressed) Marshal(v any) ([]byte, error) {
	b, err := c.Codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Compress(b, c.Compression)
}

// Unmarshal decompresses then decodes. Uncompressed input is accepted.
func (c Compressed) Unmarshal(data []byte, v any) error {
	b, err := Decompress(data)
	if err != nil {
		return err
	}
	return c.Codec.Unmarshal(b, v)
}

// Name returns "<codec>+<compression>".
func (c Compressed) Name() string {
	if c.Compression == None {
		return c.Codec.Name()
	}
	return c.Codec.Name() + "+" + c.Compression.String()
}
