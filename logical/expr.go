package logical

import (
	"fmt"
	"strings"

	"github.com/go-brig/brig/errors"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// Expr is a value or computation referenced inside a plan node: a
// positional column reference, a typed literal, the wildcard marker,
// or a named aggregate function call. The set of variants is closed;
// Expr values are immutable.
type Expr interface {
	// ToField derives the output Field this expression produces over
	// the given input schema
	ToField(input schema.Schema) (schema.Field, error)
	// String returns a textual representation of this expression
	String() string
	exprNode()
}

// ColumnExpr is a positional reference into the input schema
type ColumnExpr struct {
	Index int
}

func (e *ColumnExpr) exprNode() {}

// ToField copies name and type from the referenced input field
func (e *ColumnExpr) ToField(input schema.Schema) (schema.Field, error) {
	if e.Index < 0 || e.Index >= input.Len() {
		return schema.Field{}, &errors.SchemaError{
			Msg: fmt.Sprintf("column #%d references a schema with %d fields", e.Index, input.Len()),
		}
	}
	return input.Field(e.Index), nil
}

// String returns a textual representation of this column reference
func (e *ColumnExpr) String() string {
	return fmt.Sprintf("#%d", e.Index)
}

// LiteralExpr is a typed scalar constant
type LiteralExpr struct {
	Value table.Scalar
}

func (e *LiteralExpr) exprNode() {}

// ToField derives name and type from the literal's value
func (e *LiteralExpr) ToField(input schema.Schema) (schema.Field, error) {
	return schema.Field{Name: e.Value.String(), Type: e.Value.DataType()}, nil
}

// String returns a textual representation of this literal
func (e *LiteralExpr) String() string {
	return e.Value.String()
}

// WildcardExpr expands to one column reference per input field. It has
// meaning only inside a projection expression list, where it is
// replaced before schema derivation.
type WildcardExpr struct{}

func (e *WildcardExpr) exprNode() {}

// ToField fails: a wildcard must be expanded before schema derivation
func (e *WildcardExpr) ToField(input schema.Schema) (schema.Field, error) {
	return schema.Field{}, &errors.SchemaError{Msg: "wildcard is only valid inside a projection list"}
}

// String returns a textual representation of the wildcard
func (e *WildcardExpr) String() string {
	return "*"
}

// AggregateExpr is a named aggregate function call with a statically
// declared return type
type AggregateExpr struct {
	Name       string
	Args       []Expr
	ReturnType schema.DataType
}

func (e *AggregateExpr) exprNode() {}

// ToField derives the field name from the function name and the type
// from the declared return type
func (e *AggregateExpr) ToField(input schema.Schema) (schema.Field, error) {
	for _, arg := range e.Args {
		if _, err := arg.ToField(input); err != nil {
			return schema.Field{}, err
		}
	}
	return schema.Field{Name: e.Name, Type: e.ReturnType}, nil
}

// String returns a textual representation of this aggregate call
func (e *AggregateExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

// Col creates a positional column reference expression
func Col(index int) Expr {
	return &ColumnExpr{Index: index}
}

// Lit creates a literal expression from a scalar value
func Lit(value table.Scalar) Expr {
	return &LiteralExpr{Value: value}
}

// Wildcard creates the projection-list wildcard marker
func Wildcard() Expr {
	return &WildcardExpr{}
}

// IsWildcard returns true iff the given expression is the wildcard marker
func IsWildcard(e Expr) bool {
	_, ok := e.(*WildcardExpr)
	return ok
}

// ExprsToFields derives one output Field per expression over the given
// input schema, failing on the first invalid reference
func ExprsToFields(exprs []Expr, input schema.Schema) ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(exprs))
	for _, e := range exprs {
		f, err := e.ToField(input)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}
