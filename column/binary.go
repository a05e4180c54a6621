package column

import (
	"encoding/binary"
	"errors"
	"math"
	"unique"
)

// AppendValue encodes v onto buf using a compact tagged binary format.
// The format is part of the persisted artifact and must remain stable.
func AppendValue(buf []byte, v Value) ([]byte, error) {
	// Write Kind (byte)
	buf = append(buf, byte(v.Kind))

	switch v.Kind {
	case KindNull:
		// No payload
	case KindInt:
		buf = binary.AppendVarint(buf, v.I64)
	case KindFloat:
		bits := math.Float64bits(v.F64)
		buf = binary.LittleEndian.AppendUint64(buf, bits)
	case KindString:
		s := v.s.Value()
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	case KindBool:
		if v.B {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	default:
		return nil, errors.New("unknown value kind")
	}
	return buf, nil
}

// ParseValue decodes one value off the front of data and returns the
// remaining bytes.
func ParseValue(data []byte) (Value, []byte, error) {
	if len(data) == 0 {
		return Value{}, nil, errors.New("short buffer for value kind")
	}
	kind := Kind(data[0])
	data = data[1:]

	var v Value
	v.Kind = kind

	switch kind {
	case KindNull:
		// No payload
	case KindInt:
		i, n := binary.Varint(data)
		if n <= 0 {
			return v, nil, errors.New("invalid int value")
		}
		v.I64 = i
		data = data[n:]
	case KindFloat:
		if len(data) < 8 {
			return v, nil, errors.New("short buffer for float")
		}
		bits := binary.LittleEndian.Uint64(data)
		v.F64 = math.Float64frombits(bits)
		data = data[8:]
	case KindString:
		sLen, n := binary.Uvarint(data)
		if n <= 0 {
			return v, nil, errors.New("invalid string length")
		}
		data = data[n:]
		if uint64(len(data)) < sLen {
			return v, nil, errors.New("short buffer for string")
		}
		v.s = unique.Make(string(data[:sLen]))
		data = data[sLen:]
	case KindBool:
		if len(data) == 0 {
			return v, nil, errors.New("short buffer for bool")
		}
		v.B = data[0] != 0
		data = data[1:]
	default:
		return v, nil, errors.New("unknown value kind")
	}
	return v, data, nil
}
