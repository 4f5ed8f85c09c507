package variables

import (
	"testing"
)

func TestSimpleFormatter_ValueToString(t *testing.T) {
	f := NewSimpleFormatter()

	tests := []struct {
		name     string
		value    Value
		opts     Options
		expected string
	}{
		{
			name:     "nil value",
			value:    nil,
			expected: "null",
		},
		{
			name:     "integer",
			value:    NewInt(42),
			expected: "42",
		},
		{
			name:     "integer hex",
			value:    NewInt(255),
			opts:     Options{Hex: true},
			expected: "0xff",
		},
		{
			name:     "non-integer ignores hex",
			value:    &Primitive{Type: "string", Text: `"abc"`},
			opts:     Options{Hex: true},
			expected: `"abc"`,
		},
		{
			name:     "truncated",
			value:    &Primitive{Type: "string", Text: "abcdefghij"},
			opts:     Options{MaxStringLength: 4},
			expected: "abcd...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ValueToString(tt.value, tt.opts); got != tt.expected {
				t.Errorf("ValueToString() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestSimpleFormatter_TypeToString(t *testing.T) {
	f := NewSimpleFormatter()

	if got := f.TypeToString("int[]", Options{}); got != "int[]" {
		t.Errorf("TypeToString(int[]) = %s", got)
	}
	if got := f.TypeToString("", Options{}); got != UnknownType {
		t.Errorf("missing type should render %q, got %q", UnknownType, got)
	}
}
