package engine

import (
	"fmt"
	"sort"

	"github.com/go-brig/brig/logical"
)

// A Rule rewrites a logical plan into an equivalent, cheaper one.
// Rules are pure: they build new plan nodes and never mutate the input
// tree.
type Rule interface {
	// Name identifies the rule in diagnostics
	Name() string
	// Apply rewrites the plan
	Apply(plan logical.LogicalPlan) (logical.LogicalPlan, error)
}

// projectionPushdown narrows an unprojected FileScan directly beneath
// a Projection to only the columns the projection references, so file
// providers never materialize unused columns
type projectionPushdown struct{}

// Name identifies this rule
func (r *projectionPushdown) Name() string {
	return "projection_pushdown"
}

// Apply rewrites the plan bottom-up
func (r *projectionPushdown) Apply(plan logical.LogicalPlan) (logical.LogicalPlan, error) {
	switch p := plan.(type) {
	case *logical.Projection:
		input, err := r.Apply(p.Input)
		if err != nil {
			return nil, err
		}
		if scan, ok := input.(*logical.FileScan); ok && scan.Projection == nil {
			return r.push(p, scan)
		}
		if input == p.Input {
			return p, nil
		}
		return logical.NewProjection(input, p.Expr)
	case *logical.Selection:
		input, err := r.Apply(p.Input)
		if err != nil {
			return nil, err
		}
		if input == p.Input {
			return p, nil
		}
		return logical.NewSelection(input, p.Expr), nil
	case *logical.Limit:
		input, err := r.Apply(p.Input)
		if err != nil {
			return nil, err
		}
		if input == p.Input {
			return p, nil
		}
		return &logical.Limit{Expr: p.Expr, Input: input, OutputSchema: p.OutputSchema}, nil
	case *logical.Aggregate:
		input, err := r.Apply(p.Input)
		if err != nil {
			return nil, err
		}
		if input == p.Input {
			return p, nil
		}
		return logical.NewAggregate(input, p.GroupExpr, p.AggrExpr)
	default:
		return plan, nil
	}
}

func (r *projectionPushdown) push(proj *logical.Projection, scan *logical.FileScan) (logical.LogicalPlan, error) {
	referenced := map[int]bool{}
	for _, e := range proj.Expr {
		collectColumns(e, referenced)
	}
	indices := make([]int, 0, len(referenced))
	for i := range referenced {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	mapping := make(map[int]int, len(indices))
	for pos, i := range indices {
		mapping[i] = pos
	}
	narrowed, err := logical.NewFileScan(scan.Path, scan.FileType, scan.FileSchema, indices, scan.HasHeader)
	if err != nil {
		return nil, err
	}
	remapped := make([]logical.Expr, len(proj.Expr))
	for i, e := range proj.Expr {
		remapped[i], err = remapColumns(e, mapping)
		if err != nil {
			return nil, err
		}
	}
	return logical.NewProjection(narrowed, remapped)
}

func collectColumns(e logical.Expr, out map[int]bool) {
	switch ex := e.(type) {
	case *logical.ColumnExpr:
		out[ex.Index] = true
	case *logical.AggregateExpr:
		for _, arg := range ex.Args {
			collectColumns(arg, out)
		}
	}
}

func remapColumns(e logical.Expr, mapping map[int]int) (logical.Expr, error) {
	switch ex := e.(type) {
	case *logical.ColumnExpr:
		pos, ok := mapping[ex.Index]
		if !ok {
			return nil, fmt.Errorf("column #%d missing from pushdown mapping", ex.Index)
		}
		return logical.Col(pos), nil
	case *logical.AggregateExpr:
		args := make([]logical.Expr, len(ex.Args))
		for i, arg := range ex.Args {
			remappedArg, err := remapColumns(arg, mapping)
			if err != nil {
				return nil, err
			}
			args[i] = remappedArg
		}
		return &logical.AggregateExpr{Name: ex.Name, Args: args, ReturnType: ex.ReturnType}, nil
	default:
		return e, nil
	}
}
