package engine

import (
	"fmt"

	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/table"
)

// evalExpr evaluates a row-level expression. Aggregate calls and
// wildcards never reach here: wildcards are expanded at plan
// construction and aggregates are handled by the aggregate operator.
func evalExpr(e logical.Expr, row []table.Scalar) (table.Scalar, error) {
	switch ex := e.(type) {
	case *logical.ColumnExpr:
		if ex.Index < 0 || ex.Index >= len(row) {
			return table.Scalar{}, fmt.Errorf("column #%d out of range for row of %d values", ex.Index, len(row))
		}
		return row[ex.Index], nil
	case *logical.LiteralExpr:
		return ex.Value, nil
	default:
		return table.Scalar{}, fmt.Errorf("expression %s cannot be evaluated against a row", e)
	}
}
