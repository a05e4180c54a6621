// Package persistence implements the binary artifact format for cubes.
//
// An artifact is a single file: a fixed 64-byte header, a body of
// compressed sections (one per dimension, one per measure), and a CRC32
// trailer covering both header and body. The header is validated before
// any section is parsed, and the checksum before any cube is exposed, so
// corrupt or truncated artifacts fail closed instead of yielding a wrong
// cube.
package persistence

import (
	"bytes"
	"errors"
)

const (
	// MagicNumber identifies cube artifact files (ASCII: "CUB1").
	MagicNumber = 0x43554231
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000
)

// Header flag bits.
const (
	// FlagZeroOnEmpty records the cube's empty-selection policy.
	FlagZeroOnEmpty = 1 << 0
	// FlagSortedCodes records that dictionary codes were assigned in
	// sorted value order.
	FlagSortedCodes = 1 << 1
)

var (
	// ErrCorruptArtifact wraps every validation failure during load.
	ErrCorruptArtifact = errors.New("corrupt cube artifact")
	// ErrInvalidMagic is returned for files that are not cube artifacts.
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrInvalidVersion is returned for unrecognized format versions.
	// Best-effort parsing of unknown versions is deliberately not attempted.
	ErrInvalidVersion = errors.New("unsupported format version")
	// ErrUnknownCodec is returned when the header names a compression
	// codec this build does not provide.
	ErrUnknownCodec = errors.New("unknown compression codec")
)

// FileHeader is the 64-byte header at the start of every cube artifact.
type FileHeader struct {
	Magic          uint32
	Version        uint32
	RowCount       uint64
	DimensionCount uint32
	MeasureCount   uint32
	Codec          [8]byte // NUL-padded codec name
	Flags          uint32
	Reserved       [28]byte // Future use
}

// CodecName returns the codec name with NUL padding stripped.
func (h *FileHeader) CodecName() string {
	return string(bytes.TrimRight(h.Codec[:], "\x00"))
}

// SetCodecName stores a codec name into the fixed header field.
func (h *FileHeader) SetCodecName(name string) error {
	if len(name) > len(h.Codec) {
		return errors.New("codec name too long for header")
	}
	h.Codec = [8]byte{}
	copy(h.Codec[:], name)
	return nil
}
