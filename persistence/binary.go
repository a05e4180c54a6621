package persistence

import (
	"errors"
	"unsafe"
)

// Raw numeric array conversions used for measure sections.
//
// Arrays are written as their in-memory little-endian representation
// (native on x86/ARM) and re-materialized into freshly allocated slices on
// load, so decoded cubes never alias the read buffer.

// float64Bytes views a float64 slice as raw bytes without copying.
func float64Bytes(vals []float64) []byte {
	if len(vals) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*8)
}

// int64Bytes views an int64 slice as raw bytes without copying.
func int64Bytes(vals []int64) []byte {
	if len(vals) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*8)
}

// bytesToFloat64 copies raw bytes into a newly allocated float64 slice.
func bytesToFloat64(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, errors.New("float64 section length not a multiple of 8")
	}
	n := len(data) / 8
	if n == 0 {
		return nil, nil
	}
	vals := make([]float64, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(data)), data)
	return vals, nil
}

// bytesToInt64 copies raw bytes into a newly allocated int64 slice.
func bytesToInt64(data []byte) ([]int64, error) {
	if len(data)%8 != 0 {
		return nil, errors.New("int64 section length not a multiple of 8")
	}
	n := len(data) / 8
	if n == 0 {
		return nil, nil
	}
	vals := make([]int64, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(data)), data)
	return vals, nil
}
