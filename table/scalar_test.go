package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-brig/brig/schema"
)

func TestScalarDataType(t *testing.T) {
	require.Equal(t, schema.Int64, Int64Value(1).DataType())
	require.Equal(t, schema.UInt64, UInt64Value(1).DataType())
	require.Equal(t, schema.Float64, Float64Value(1.5).DataType())
	require.Equal(t, schema.Utf8, StringValue("x").DataType())
	require.Equal(t, schema.Bool, BoolValue(true).DataType())
	require.Equal(t, schema.Null, Null().DataType())
}

func TestScalarCoercion(t *testing.T) {
	f, ok := Int64Value(-3).AsFloat()
	require.True(t, ok)
	require.Equal(t, -3.0, f)

	_, ok = StringValue("3").AsFloat()
	require.False(t, ok)

	b, ok := BoolValue(true).AsBool()
	require.True(t, ok)
	require.True(t, b)

	b, ok = Null().AsBool()
	require.True(t, ok)
	require.False(t, b)
}

func TestScalarString(t *testing.T) {
	require.Equal(t, "42", Int64Value(42).String())
	require.Equal(t, "1024", UInt64Value(1024).String())
	require.Equal(t, "1.5", Float64Value(1.5).String())
	require.Equal(t, "null", Null().String())
}

func TestBatchWidthMismatch(t *testing.T) {
	s := schema.NewSchema([]schema.Field{{Name: "a", Type: schema.Int64}})
	_, err := NewBatch(s, [][]Scalar{{Int64Value(1), Int64Value(2)}})
	require.NotNil(t, err)
}
