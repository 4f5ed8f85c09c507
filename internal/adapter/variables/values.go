package variables

import (
	"strconv"
)

// Void is the distinguished "no value" result.
type Void struct {
	// Text is the raw textual form, e.g. "nil".
	Text string
}

// Kind returns KindVoid.
func (v *Void) Kind() Kind { return KindVoid }

// TypeName returns "".
func (v *Void) TypeName() string { return "" }

// String returns the raw textual form.
func (v *Void) String() string {
	if v.Text == "" {
		return "nil"
	}
	return v.Text
}

// Primitive is a non-expandable scalar value.
type Primitive struct {
	// Type is the runtime type name.
	Type string

	// Text is the rendered value.
	Text string

	// N holds the numeric value when IsInt is set.
	N int

	// IsInt marks integer primitives, enabling hex rendering and logical
	// size adoption.
	IsInt bool
}

// NewInt creates an integer primitive.
func NewInt(n int) *Primitive {
	return &Primitive{Type: "number", Text: strconv.Itoa(n), N: n, IsInt: true}
}

// Kind returns KindPrimitive.
func (p *Primitive) Kind() Kind { return KindPrimitive }

// TypeName returns the runtime type name.
func (p *Primitive) TypeName() string { return p.Type }

// String returns the rendered value.
func (p *Primitive) String() string { return p.Text }

// Int returns the numeric value of an integer primitive.
func (p *Primitive) Int() (int, bool) { return p.N, p.IsInt }

// Array is an array-like value holding its elements.
type Array struct {
	// Type is the runtime type name.
	Type string

	// Text is the rendered value.
	Text string

	// Elems are the elements in index order.
	Elems []Value
}

// Kind returns KindArray.
func (a *Array) Kind() Kind { return KindArray }

// TypeName returns the runtime type name.
func (a *Array) TypeName() string { return a.Type }

// String returns the rendered value.
func (a *Array) String() string { return a.Text }

// Length returns the element count.
func (a *Array) Length() int { return len(a.Elems) }

// Element returns the element at index i.
func (a *Array) Element(i int) Value { return a.Elems[i] }

// Object is a reference-type value holding named members.
type Object struct {
	// Type is the runtime type name.
	Type string

	// Text is the rendered value.
	Text string

	// Fields are the instance members.
	Fields []NamedValue

	// Statics are the static members, visible only when static visibility
	// is enabled.
	Statics []NamedValue
}

// Kind returns KindObject.
func (o *Object) Kind() Kind { return KindObject }

// TypeName returns the runtime type name.
func (o *Object) TypeName() string { return o.Type }

// String returns the rendered value.
func (o *Object) String() string { return o.Text }

// Children returns the enumerable members, including statics only when
// includeStatic is set.
func (o *Object) Children(includeStatic bool) []NamedValue {
	if !includeStatic || len(o.Statics) == 0 {
		return o.Fields
	}
	children := make([]NamedValue, 0, len(o.Fields)+len(o.Statics))
	children = append(children, o.Fields...)
	children = append(children, o.Statics...)
	return children
}
