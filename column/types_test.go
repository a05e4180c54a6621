package column

import "testing"

func TestValueKey(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "null", v: Null(), want: "null"},
		{name: "int", v: Int(42), want: "i:42"},
		{name: "negative int", v: Int(-7), want: "i:-7"},
		{name: "string", v: String("Online"), want: "s:Online"},
		{name: "empty string", v: String(""), want: "s:"},
		{name: "bool true", v: Bool(true), want: "b:1"},
		{name: "bool false", v: Bool(false), want: "b:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueKeyDistinguishesKinds(t *testing.T) {
	// An int 1, a float 1.0, the string "1" and bool true are four
	// different dictionary members.
	keys := map[string]bool{}
	for _, v := range []Value{Int(1), Float(1), String("1"), Bool(true)} {
		keys[v.Key()] = true
	}
	if len(keys) != 4 {
		t.Errorf("expected 4 distinct keys, got %d", len(keys))
	}
}

func TestValueAccessors(t *testing.T) {
	if v, ok := Int(5).AsInt64(); !ok || v != 5 {
		t.Errorf("AsInt64 = %v, %v", v, ok)
	}
	if _, ok := String("x").AsInt64(); ok {
		t.Error("AsInt64 on string should fail")
	}
	if v, ok := Float(2.5).AsFloat64(); !ok || v != 2.5 {
		t.Errorf("AsFloat64 = %v, %v", v, ok)
	}
	// Int converts to float for uniform aggregate consumption.
	if v, ok := Int(3).AsFloat64(); !ok || v != 3 {
		t.Errorf("AsFloat64 on int = %v, %v", v, ok)
	}
	if s, ok := String("Retail").AsString(); !ok || s != "Retail" {
		t.Errorf("AsString = %v, %v", s, ok)
	}
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Errorf("AsBool = %v, %v", b, ok)
	}
	if !Null().IsNull() {
		t.Error("Null().IsNull() = false")
	}
	if Int(0).IsNull() {
		t.Error("Int(0).IsNull() = true")
	}
}

func TestConverters(t *testing.T) {
	s := Strings([]string{"a", "b"})
	if len(s) != 2 || s[0].Key() != "s:a" || s[1].Key() != "s:b" {
		t.Errorf("Strings = %v", s)
	}
	n := Ints([]int64{1, 2})
	if len(n) != 2 || n[1].Key() != "i:2" {
		t.Errorf("Ints = %v", n)
	}
	bs := Bools([]bool{true, false})
	if len(bs) != 2 || bs[0].Key() != "b:1" {
		t.Errorf("Bools = %v", bs)
	}
}
