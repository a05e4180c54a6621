package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	values := []Value{
		Null(),
		Int(0),
		Int(-123456789),
		Float(3.14159),
		String("Online"),
		String(""),
		Bool(true),
		Bool(false),
	}

	var buf []byte
	for _, v := range values {
		var err error
		buf, err = AppendValue(buf, v)
		require.NoError(t, err)
	}

	rest := buf
	for _, want := range values {
		var got Value
		var err error
		got, rest, err = ParseValue(rest)
		require.NoError(t, err)
		assert.Equal(t, want.Key(), got.Key())
	}
	assert.Empty(t, rest)
}

func TestParseValueErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty buffer", data: nil},
		{name: "unknown kind", data: []byte{0xFF}},
		{name: "truncated float", data: []byte{byte(KindFloat), 1, 2, 3}},
		{name: "truncated string", data: []byte{byte(KindString), 10, 'a'}},
		{name: "truncated bool", data: []byte{byte(KindBool)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseValue(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestAppendValueInvalidKind(t *testing.T) {
	_, err := AppendValue(nil, Value{Kind: KindInvalid})
	assert.Error(t, err)
}
