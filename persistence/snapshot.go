package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/cubego/column"
	"github.com/hupe1980/cubego/compress"
	"github.com/hupe1980/cubego/index"
	"github.com/hupe1980/cubego/measure"
)

// maxSectionSize bounds a single compressed section, so a corrupted length
// field cannot trigger an arbitrarily large allocation before the checksum
// gets a chance to fail.
const maxSectionSize = 1 << 31

// Snapshot is the serializable state of a cube: everything needed to make
// a reloaded cube query-equivalent to the original.
type Snapshot struct {
	RowCount    uint64
	ZeroOnEmpty bool
	SortedCodes bool
	Dimensions  []*index.Dimension
	Measures    []*measure.Column
}

// Write serializes the snapshot: header, one compressed section per
// dimension and per measure, then a CRC32 trailer over everything before
// it, header included.
func Write(w io.Writer, snap *Snapshot, codec compress.Codec) error {
	if codec == nil {
		codec = compress.Default
	}

	header := FileHeader{
		Magic:          MagicNumber,
		Version:        Version,
		RowCount:       snap.RowCount,
		DimensionCount: uint32(len(snap.Dimensions)),
		MeasureCount:   uint32(len(snap.Measures)),
	}
	if snap.ZeroOnEmpty {
		header.Flags |= FlagZeroOnEmpty
	}
	if snap.SortedCodes {
		header.Flags |= FlagSortedCodes
	}
	if err := header.SetCodecName(codec.Name()); err != nil {
		return err
	}
	// The header goes through the checksum writer too, so a flipped flag
	// or row-count byte is caught just like body corruption.
	cw := NewChecksumWriter(w)
	if err := binary.Write(cw, binary.LittleEndian, &header); err != nil {
		return err
	}

	for _, d := range snap.Dimensions {
		section, err := encodeDimension(d)
		if err != nil {
			return fmt.Errorf("encoding dimension %q: %w", d.Name(), err)
		}
		if err := writeSection(cw, codec, section); err != nil {
			return fmt.Errorf("writing dimension %q: %w", d.Name(), err)
		}
	}
	for _, m := range snap.Measures {
		section, err := encodeMeasure(m)
		if err != nil {
			return fmt.Errorf("encoding measure %q: %w", m.Name(), err)
		}
		if err := writeSection(cw, codec, section); err != nil {
			return fmt.Errorf("writing measure %q: %w", m.Name(), err)
		}
	}

	return binary.Write(w, binary.LittleEndian, cw.Sum())
}

// Read deserializes a snapshot, validating the header, section shapes and
// the checksum over header and body. It never returns a partially
// populated snapshot.
func Read(r io.Reader) (*Snapshot, error) {
	cr := NewChecksumReader(r)

	var header FileHeader
	if err := binary.Read(cr, binary.LittleEndian, &header); err != nil {
		return nil, corrupt(fmt.Errorf("reading header: %w", err))
	}
	if header.Magic != MagicNumber {
		return nil, corrupt(fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic))
	}
	if header.Version != Version {
		return nil, corrupt(fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version))
	}
	codec, ok := compress.ByName(header.CodecName())
	if !ok {
		return nil, corrupt(fmt.Errorf("%w: %q", ErrUnknownCodec, header.CodecName()))
	}

	snap := &Snapshot{
		RowCount:    header.RowCount,
		ZeroOnEmpty: header.Flags&FlagZeroOnEmpty != 0,
		SortedCodes: header.Flags&FlagSortedCodes != 0,
	}

	for i := uint32(0); i < header.DimensionCount; i++ {
		section, err := readSection(cr, codec)
		if err != nil {
			return nil, corrupt(fmt.Errorf("dimension section %d: %w", i, err))
		}
		d, err := decodeDimension(section, header.RowCount)
		if err != nil {
			return nil, corrupt(fmt.Errorf("dimension section %d: %w", i, err))
		}
		snap.Dimensions = append(snap.Dimensions, d)
	}
	for i := uint32(0); i < header.MeasureCount; i++ {
		section, err := readSection(cr, codec)
		if err != nil {
			return nil, corrupt(fmt.Errorf("measure section %d: %w", i, err))
		}
		m, err := decodeMeasure(section, header.RowCount)
		if err != nil {
			return nil, corrupt(fmt.Errorf("measure section %d: %w", i, err))
		}
		snap.Measures = append(snap.Measures, m)
	}

	// Trailer is read from the underlying reader so it stays outside the
	// checksummed body.
	var want uint32
	if err := binary.Read(r, binary.LittleEndian, &want); err != nil {
		return nil, corrupt(fmt.Errorf("reading checksum: %w", err))
	}
	if err := cr.Verify(want); err != nil {
		return nil, corrupt(err)
	}
	return snap, nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
}

// writeSection compresses a section and writes it length-prefixed.
func writeSection(w io.Writer, codec compress.Codec, section []byte) error {
	blob, err := codec.Compress(section)
	if err != nil {
		return err
	}
	if _, err := w.Write(binary.AppendUvarint(nil, uint64(len(blob)))); err != nil {
		return err
	}
	_, err = w.Write(blob)
	return err
}

// readSection reads one length-prefixed section and decompresses it.
func readSection(r io.Reader, codec compress.Codec) ([]byte, error) {
	n, err := binary.ReadUvarint(&byteReader{r: r})
	if err != nil {
		return nil, err
	}
	if n > maxSectionSize {
		return nil, fmt.Errorf("section length %d out of range", n)
	}
	blob := make([]byte, n)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, err
	}
	return codec.Decompress(blob)
}

// byteReader adapts an io.Reader for binary.ReadUvarint without buffering
// ahead, which would pull trailer bytes into the checksummed body.
type byteReader struct {
	r io.Reader
	b [1]byte
}

func (br *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(br.r, br.b[:]); err != nil {
		return 0, err
	}
	return br.b[0], nil
}

// Dimension section layout: name, cardinality, then per code the raw value
// and its Roaring-serialized posting set.
func encodeDimension(d *index.Dimension) ([]byte, error) {
	buf := binary.AppendUvarint(nil, uint64(len(d.Name())))
	buf = append(buf, d.Name()...)
	card := d.Cardinality()
	buf = binary.AppendUvarint(buf, uint64(card))
	for code := 0; code < card; code++ {
		var err error
		buf, err = column.AppendValue(buf, d.Value(uint32(code)))
		if err != nil {
			return nil, err
		}
		bm, err := d.Postings(uint32(code)).MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = binary.AppendUvarint(buf, uint64(len(bm)))
		buf = append(buf, bm...)
	}
	return buf, nil
}

func decodeDimension(data []byte, rowCount uint64) (*index.Dimension, error) {
	nameLen, data, err := takeUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("name length: %w", err)
	}
	nameBytes, data, err := takeBytes(data, nameLen)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	name := string(nameBytes)

	card, data, err := takeUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("dimension %q: cardinality: %w", name, err)
	}
	if card > rowCount {
		return nil, fmt.Errorf("dimension %q: cardinality %d exceeds row count %d", name, card, rowCount)
	}

	values := make([]column.Value, 0, card)
	postings := make([]*index.RowSet, 0, card)
	for code := uint64(0); code < card; code++ {
		var v column.Value
		v, data, err = column.ParseValue(data)
		if err != nil {
			return nil, fmt.Errorf("dimension %q code %d: %w", name, code, err)
		}
		if v.IsNull() {
			return nil, fmt.Errorf("dimension %q code %d: null dictionary value", name, code)
		}

		var bmLen uint64
		bmLen, data, err = takeUvarint(data)
		if err != nil {
			return nil, fmt.Errorf("dimension %q code %d: bitmap length: %w", name, code, err)
		}
		var bm []byte
		bm, data, err = takeBytes(data, bmLen)
		if err != nil {
			return nil, fmt.Errorf("dimension %q code %d: bitmap: %w", name, code, err)
		}
		rs := index.NewRowSet()
		if err := rs.UnmarshalBinary(bm); err != nil {
			return nil, fmt.Errorf("dimension %q code %d: bitmap: %w", name, code, err)
		}
		if !rs.IsEmpty() && uint64(rs.Maximum()) >= rowCount {
			return nil, fmt.Errorf("dimension %q code %d: row position %d beyond row count %d", name, code, rs.Maximum(), rowCount)
		}
		values = append(values, v)
		postings = append(postings, rs)
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("dimension %q: %d trailing bytes", name, len(data))
	}
	return index.Restore(name, values, postings)
}

// Measure section layout: name, element type tag, raw little-endian array.
func encodeMeasure(c *measure.Column) ([]byte, error) {
	buf := binary.AppendUvarint(nil, uint64(len(c.Name())))
	buf = append(buf, c.Name()...)
	buf = append(buf, byte(c.Elem()))

	var raw []byte
	switch c.Elem() {
	case measure.ElemFloat64:
		raw = float64Bytes(c.Float64s())
	case measure.ElemInt64:
		raw = int64Bytes(c.Int64s())
	default:
		return nil, fmt.Errorf("measure %q: invalid element type", c.Name())
	}
	buf = binary.AppendUvarint(buf, uint64(len(raw)))
	buf = append(buf, raw...)
	return buf, nil
}

func decodeMeasure(data []byte, rowCount uint64) (*measure.Column, error) {
	nameLen, data, err := takeUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("name length: %w", err)
	}
	nameBytes, data, err := takeBytes(data, nameLen)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	name := string(nameBytes)

	if len(data) == 0 {
		return nil, fmt.Errorf("measure %q: missing element type", name)
	}
	elem := measure.ElemType(data[0])
	data = data[1:]

	rawLen, data, err := takeUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("measure %q: array length: %w", name, err)
	}
	raw, data, err := takeBytes(data, rawLen)
	if err != nil {
		return nil, fmt.Errorf("measure %q: array: %w", name, err)
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("measure %q: %d trailing bytes", name, len(data))
	}

	switch elem {
	case measure.ElemFloat64:
		vals, err := bytesToFloat64(raw)
		if err != nil {
			return nil, fmt.Errorf("measure %q: %w", name, err)
		}
		if uint64(len(vals)) != rowCount {
			return nil, fmt.Errorf("measure %q: %d values but row count %d", name, len(vals), rowCount)
		}
		return measure.AdoptFloat64(name, vals), nil
	case measure.ElemInt64:
		vals, err := bytesToInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("measure %q: %w", name, err)
		}
		if uint64(len(vals)) != rowCount {
			return nil, fmt.Errorf("measure %q: %d values but row count %d", name, len(vals), rowCount)
		}
		return measure.AdoptInt64(name, vals), nil
	default:
		return nil, fmt.Errorf("measure %q: unknown element type %d", name, elem)
	}
}

func takeUvarint(data []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, errors.New("invalid uvarint")
	}
	return v, data[n:], nil
}

func takeBytes(data []byte, n uint64) ([]byte, []byte, error) {
	if uint64(len(data)) < n {
		return nil, nil, fmt.Errorf("short buffer: need %d bytes, have %d", n, len(data))
	}
	return data[:n], data[n:], nil
}
