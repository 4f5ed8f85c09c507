package variables

import (
	"fmt"
)

// UnknownType is the placeholder rendered when a value's runtime type is
// missing.
const UnknownType = "<unknown>"

// Options controls how values and types are rendered.
type Options struct {
	// Hex renders integer primitives in hexadecimal.
	Hex bool

	// MaxStringLength truncates rendered values longer than this. Zero means
	// no limit.
	MaxStringLength int
}

// Formatter renders values and types to display strings.
type Formatter interface {
	// ValueToString renders a value under the given options.
	ValueToString(v Value, opts Options) string

	// TypeToString renders a type name, tolerating a missing type.
	TypeToString(typeName string, opts Options) string
}

// SimpleFormatter is the default Formatter implementation.
type SimpleFormatter struct{}

// NewSimpleFormatter creates the default formatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{}
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{MaxStringLength: 0}
}

// ValueToString renders a value under the given options.
func (f *SimpleFormatter) ValueToString(v Value, opts Options) string {
	if v == nil {
		return "null"
	}

	if opts.Hex {
		if n, ok := IntValue(v); ok {
			return fmt.Sprintf("0x%x", n)
		}
	}

	s := v.String()
	if opts.MaxStringLength > 0 && len(s) > opts.MaxStringLength {
		s = s[:opts.MaxStringLength] + "..."
	}
	return s
}

// TypeToString renders a type name, substituting a placeholder when the type
// is missing.
func (f *SimpleFormatter) TypeToString(typeName string, opts Options) string {
	if typeName == "" {
		return UnknownType
	}
	return typeName
}
