// Package compress centralizes the compression codecs used for cube
// artifact sections.
//
// Codec selection is a persistence boundary: the codec name is written
// into the artifact header, and loading resolves it via ByName, so
// artifacts stay self-describing across codec changes.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses and decompresses artifact sections.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Name is the stable identifier stored in artifact headers.
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	case "none":
		return None{}, true
	default:
		return nil, false
	}
}

// Default is the codec used for newly written artifacts.
var Default Codec = Zstd{}

// Shared zstd coder pair; EncodeAll/DecodeAll are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
}

// Zstd is the zstandard codec.
type Zstd struct{}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// Compress encodes src as a zstd frame.
func (Zstd) Compress(src []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

// Decompress decodes a zstd frame.
func (Zstd) Decompress(src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, nil)
}

// LZ4 is the lz4 frame codec.
type LZ4 struct{}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

// Compress encodes src as an lz4 frame.
func (LZ4) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decodes an lz4 frame.
func (LZ4) Decompress(src []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
}

// None is the identity codec for debugging and size comparisons.
type None struct{}

// Name returns "none".
func (None) Name() string { return "none" }

// Compress returns src unchanged.
func (None) Compress(src []byte) ([]byte, error) { return src, nil }

// Decompress returns src unchanged.
func (None) Decompress(src []byte) ([]byte, error) { return src, nil }
