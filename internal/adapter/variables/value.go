// Package variables provides the value model, formatting, and reference
// handle management for the debug adapter.
package variables

// Kind classifies an evaluated value.
type Kind int

const (
	// KindVoid is the distinguished "no value" result.
	KindVoid Kind = iota
	// KindPrimitive is a non-expandable scalar value.
	KindPrimitive
	// KindArray is an array-like value with positionally addressable elements.
	KindArray
	// KindObject is a reference-type value with named children.
	KindObject
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a value produced by the evaluation engine.
type Value interface {
	// Kind returns the value classification.
	Kind() Kind

	// TypeName returns the runtime type name, or "" when unknown.
	TypeName() string

	// String returns the raw textual form of the value.
	String() string
}

// ArrayValue is a Value with positionally addressable elements.
type ArrayValue interface {
	Value

	// Length returns the number of elements.
	Length() int

	// Element returns the element at index i.
	Element(i int) Value
}

// ObjectValue is a Value whose children can be enumerated.
type ObjectValue interface {
	Value

	// Children returns the enumerable children. Static members are included
	// only when includeStatic is set.
	Children(includeStatic bool) []NamedValue
}

// NamedValue pairs a child value with its name.
type NamedValue struct {
	Name  string
	Value Value
}

// Classification is the result of probing a value exactly once. All
// downstream logic switches on the tag instead of re-probing the value.
type Classification struct {
	// Kind is the value tag.
	Kind Kind

	// Length is the element count for KindArray values.
	Length int

	// HasChildren reports whether a KindObject value has at least one
	// enumerable child under the visibility captured at classification time.
	HasChildren bool
}

// Classify derives a value's classification. includeStatic controls whether
// static members count as enumerable children for object values.
func Classify(v Value, includeStatic bool) Classification {
	if v == nil {
		return Classification{Kind: KindVoid}
	}

	switch v.Kind() {
	case KindArray:
		c := Classification{Kind: KindArray}
		if av, ok := v.(ArrayValue); ok {
			c.Length = av.Length()
		}
		return c
	case KindObject:
		c := Classification{Kind: KindObject}
		if ov, ok := v.(ObjectValue); ok {
			c.HasChildren = len(ov.Children(includeStatic)) > 0
		}
		return c
	case KindVoid:
		return Classification{Kind: KindVoid}
	default:
		return Classification{Kind: KindPrimitive}
	}
}

// IntValue extracts an integer from a primitive value. It returns false when
// the value is not an integer primitive.
func IntValue(v Value) (int, bool) {
	iv, ok := v.(interface{ Int() (int, bool) })
	if !ok {
		return 0, false
	}
	return iv.Int()
}

// StackFrameReference identifies a suspended execution point as a
// (thread, depth) pair. It is valid only while the thread stays suspended;
// the owning pool recycles it when the thread resumes.
type StackFrameReference struct {
	// ThreadID is the debuggee thread.
	ThreadID int64

	// Depth is the frame depth, 0 being the top frame.
	Depth int
}

// VariableProxy holds a live value behind a reference handle so a later
// variables request can enumerate its children.
type VariableProxy struct {
	// ThreadID is the thread the value was evaluated on.
	ThreadID int64

	// Scope names where the proxy came from ("eval", "locals", ...).
	Scope string

	// Value is the referenced live value.
	Value Value
}
