package column

import (
	"math"
	"strconv"
	"unique"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents a missing value. Null dimension values are never
	// assigned a code; null measure values are excluded from aggregation.
	KindNull
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	default:
		return "Invalid"
	}
}

// Value is a small typed value used for dimension members and aggregate
// results.
//
// The representation is designed to make dictionary lookups fast and
// predictable: no reflection and no fmt-based stringification. Matching is
// exact and case-sensitive; callers that want alias normalization
// ("yes"/"on"/"1") must do it before querying.
//
// NOTE: This is also used for persistence; keep it stable.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	s    unique.Handle[string] // Private interned string
	B    bool
}

// Key returns a stable string representation for use in dictionary maps.
//
// It is intended for internal indexing and must remain stable across
// versions for persisted cube artifacts.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindString:
		return "s:" + v.s.Value()
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	default:
		return "invalid"
	}
}

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
// Integer values are converted, so aggregate results can be consumed
// uniformly as floats.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.F64, true
	case KindInt:
		return float64(v.I64), true
	default:
		return 0, false
	}
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.s.Value(), true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, s: unique.Make(v)} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Strings converts a raw string column into Values.
func Strings(vals []string) []Value {
	out := make([]Value, len(vals))
	for i, s := range vals {
		out[i] = String(s)
	}
	return out
}

// Ints converts a raw integer column into Values.
func Ints(vals []int64) []Value {
	out := make([]Value, len(vals))
	for i, n := range vals {
		out[i] = Int(n)
	}
	return out
}

// Bools converts a raw boolean column into Values.
func Bools(vals []bool) []Value {
	out := make([]Value, len(vals))
	for i, b := range vals {
		out[i] = Bool(b)
	}
	return out
}
