package schema

import (
	"fmt"
	"strings"
)

// DataType enumerates the value types a Field may carry
type DataType int

const (
	// Null indicates the absence of a concrete type
	Null DataType = iota
	// Bool is a boolean type
	Bool
	// Int32 is a 32-bit signed integer type
	Int32
	// Int64 is a 64-bit signed integer type
	Int64
	// UInt64 is a 64-bit unsigned integer type
	UInt64
	// Float64 is a 64-bit floating point type
	Float64
	// Utf8 is a variable-length string type
	Utf8
)

// String returns a textual representation of this DataType
func (t DataType) String() string {
	switch t {
	case Bool:
		return "Bool"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt64:
		return "UInt64"
	case Float64:
		return "Float64"
	case Utf8:
		return "Utf8"
	default:
		return "Null"
	}
}

// Field is a named, typed column within a Schema
type Field struct {
	Name string
	Type DataType
}

// String returns a textual representation of this Field
func (f Field) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Type)
}

// Schema is an ordered sequence of Fields describing the shape of
// tabular data. Schemas are values: once constructed they are never
// mutated, and derived schemas are always fresh copies.
type Schema struct {
	Fields []Field
}

// NewSchema creates a Schema from an ordered list of Fields
func NewSchema(fields []Field) Schema {
	return Schema{Fields: fields}
}

// Empty returns a Schema with no Fields
func Empty() Schema {
	return Schema{}
}

// Len returns the number of Fields in this Schema
func (s Schema) Len() int {
	return len(s.Fields)
}

// Field returns the Field at position i
func (s Schema) Field(i int) Field {
	return s.Fields[i]
}

// IndexOf returns the position of the Field with the given name, or -1
func (s Schema) IndexOf(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Select derives a new Schema containing only the Fields at the given
// positions, in the given order. The receiver is not modified.
func (s Schema) Select(indices []int) (Schema, error) {
	fields := make([]Field, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.Fields) {
			return Schema{}, fmt.Errorf("no field at index %d in schema of %d fields", i, len(s.Fields))
		}
		fields = append(fields, s.Fields[i])
	}
	return Schema{Fields: fields}, nil
}

// Equal returns true iff both Schemas contain identical Fields in
// identical order
func (s Schema) Equal(other Schema) bool {
	if len(s.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if f != other.Fields[i] {
			return false
		}
	}
	return true
}

// String returns a textual representation of this Schema
func (s Schema) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
