// Package typedvalue implements the tagged-union TypedValue described in
// spec.md §3 and §4.C, grounded on original_source/btrieve/BindableValue.h's
// five-way union (Null/Integer/Double/Text/Blob). Conversion to a SQL bind
// parameter is a total function, never a nullable-pointer encoding.
package typedvalue

import "fmt"

// Kind discriminates the tagged union held by a Value.
type Kind int

const (
	Null Kind = iota
	Integer
	Double
	Text
	Blob
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Integer:
		return "Integer"
	case Double:
		return "Double"
	case Text:
		return "Text"
	case Blob:
		return "Blob"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the tagged value used when binding to SQL parameters and when
// returning indexed column values back out of the store.
type Value struct {
	kind    Kind
	integer int64
	double  float64
	text    string
	blob    []byte
}

// NewNull returns the Null value.
func NewNull() Value { return Value{kind: Null} }

// NewInteger wraps a signed 64-bit integer.
func NewInteger(v int64) Value { return Value{kind: Integer, integer: v} }

// NewDouble wraps a 64-bit float.
func NewDouble(v float64) Value { return Value{kind: Double, double: v} }

// NewText wraps a string. Its bytes are kept as given and need not be
// valid UTF-8 (text keys carry raw record bytes).
func NewText(v string) Value { return Value{kind: Text, text: v} }

// NewBlob wraps raw bytes. The slice is retained, not copied.
func NewBlob(v []byte) Value { return Value{kind: Blob, blob: v} }

// Kind reports which variant is held.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds the Null variant.
func (v Value) IsNull() bool { return v.kind == Null }

// Integer returns the wrapped integer. Only valid when Kind() == Integer.
func (v Value) Integer() int64 { return v.integer }

// Double returns the wrapped float. Only valid when Kind() == Double.
func (v Value) Double() float64 { return v.double }

// Text returns the wrapped string. Only valid when Kind() == Text.
func (v Value) Text() string { return v.text }

// Blob returns the wrapped bytes. Only valid when Kind() == Blob.
func (v Value) Blob() []byte { return v.blob }

// SQLParam converts v into a value suitable for database/sql parameter
// binding (driver.Value-compatible: nil, int64, float64, string, []byte).
func (v Value) SQLParam() any {
	switch v.kind {
	case Null:
		return nil
	case Integer:
		return v.integer
	case Double:
		return v.double
	case Text:
		return v.text
	case Blob:
		return v.blob
	default:
		return nil
	}
}

// FromSQL converts a value scanned out of database/sql (which yields one of
// nil, int64, float64, string, []byte for the driver types this module
// uses) back into a Value.
func FromSQL(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return NewNull()
	case int64:
		return NewInteger(t)
	case float64:
		return NewDouble(t)
	case string:
		return NewText(t)
	case []byte:
		return NewBlob(t)
	default:
		return NewNull()
	}
}
