package table

import (
	"fmt"
	"strconv"

	"github.com/go-brig/brig/schema"
)

// Kind discriminates the concrete type held by a Scalar
type Kind int

const (
	// KindNull marks an absent value
	KindNull Kind = iota
	// KindBool marks a boolean value
	KindBool
	// KindInt64 marks a 64-bit signed integer value
	KindInt64
	// KindUInt64 marks a 64-bit unsigned integer value
	KindUInt64
	// KindFloat64 marks a 64-bit floating point value
	KindFloat64
	// KindString marks a string value
	KindString
)

// Scalar is a dynamically-typed cell value. Exactly one of the typed
// fields is meaningful, selected by Kind.
type Scalar struct {
	Kind    Kind
	Bool    bool
	Int64   int64
	UInt64  uint64
	Float64 float64
	Str     string
}

// Null returns the null Scalar
func Null() Scalar {
	return Scalar{Kind: KindNull}
}

// BoolValue creates a boolean Scalar
func BoolValue(v bool) Scalar {
	return Scalar{Kind: KindBool, Bool: v}
}

// Int64Value creates a signed integer Scalar
func Int64Value(v int64) Scalar {
	return Scalar{Kind: KindInt64, Int64: v}
}

// UInt64Value creates an unsigned integer Scalar
func UInt64Value(v uint64) Scalar {
	return Scalar{Kind: KindUInt64, UInt64: v}
}

// Float64Value creates a floating point Scalar
func Float64Value(v float64) Scalar {
	return Scalar{Kind: KindFloat64, Float64: v}
}

// StringValue creates a string Scalar
func StringValue(v string) Scalar {
	return Scalar{Kind: KindString, Str: v}
}

// IsNull returns true iff this Scalar is the null value
func (s Scalar) IsNull() bool {
	return s.Kind == KindNull
}

// DataType returns the schema DataType corresponding to this Scalar's Kind
func (s Scalar) DataType() schema.DataType {
	switch s.Kind {
	case KindBool:
		return schema.Bool
	case KindInt64:
		return schema.Int64
	case KindUInt64:
		return schema.UInt64
	case KindFloat64:
		return schema.Float64
	case KindString:
		return schema.Utf8
	default:
		return schema.Null
	}
}

// AsFloat coerces numeric Scalars to float64 for arithmetic
func (s Scalar) AsFloat() (float64, bool) {
	switch s.Kind {
	case KindInt64:
		return float64(s.Int64), true
	case KindUInt64:
		return float64(s.UInt64), true
	case KindFloat64:
		return s.Float64, true
	default:
		return 0, false
	}
}

// AsBool coerces this Scalar to a boolean for predicate evaluation
func (s Scalar) AsBool() (bool, bool) {
	switch s.Kind {
	case KindBool:
		return s.Bool, true
	case KindNull:
		return false, true
	default:
		return false, false
	}
}

// String returns a textual representation of this Scalar
func (s Scalar) String() string {
	switch s.Kind {
	case KindBool:
		return strconv.FormatBool(s.Bool)
	case KindInt64:
		return strconv.FormatInt(s.Int64, 10)
	case KindUInt64:
		return strconv.FormatUint(s.UInt64, 10)
	case KindFloat64:
		return fmt.Sprintf("%g", s.Float64)
	case KindString:
		return s.Str
	default:
		return "null"
	}
}
