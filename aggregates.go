package brig

import (
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/schema"
)

// Min creates an expression representing the MIN aggregate function
func Min(expr logical.Expr) logical.Expr {
	return AggregateFunction("MIN", expr)
}

// Max creates an expression representing the MAX aggregate function
func Max(expr logical.Expr) logical.Expr {
	return AggregateFunction("MAX", expr)
}

// Sum creates an expression representing the SUM aggregate function
func Sum(expr logical.Expr) logical.Expr {
	return AggregateFunction("SUM", expr)
}

// Count creates an expression representing the COUNT aggregate function
func Count(expr logical.Expr) logical.Expr {
	return AggregateFunction("COUNT", expr)
}

// Avg creates an expression representing the AVG aggregate function
func Avg(expr logical.Expr) logical.Expr {
	return AggregateFunction("AVG", expr)
}

// AggregateFunction creates an expression representing a named
// aggregate function call. The declared return type is always Float64,
// whatever the argument's type: executors compute every aggregate in
// floating point, and the declared type must agree with what they
// produce.
func AggregateFunction(name string, expr logical.Expr) logical.Expr {
	return &logical.AggregateExpr{
		Name:       name,
		Args:       []logical.Expr{expr},
		ReturnType: schema.Float64,
	}
}
