package logical

import (
	"fmt"
	"strings"

	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// LogicalPlan is an immutable tree describing a relational query as a
// composition of scan, projection, selection, limit and aggregate
// operators. The set of variants is closed. Every node derives its
// output schema once at construction; Schema never recomputes it.
// Nodes own their subtrees exclusively: chaining a new operator onto a
// plan never aliases mutable state with the original.
type LogicalPlan interface {
	// Schema returns the derived output schema of this node
	Schema() schema.Schema
	// Children returns the input plans of this node, if any
	Children() []LogicalPlan
	// String returns a one-line description of this node
	String() string
	planNode()
}

// EmptyRelation is a zero-row source with a fixed schema
type EmptyRelation struct {
	OutputSchema schema.Schema
}

func (p *EmptyRelation) planNode() {}

// Schema returns the fixed schema of this relation
func (p *EmptyRelation) Schema() schema.Schema {
	return p.OutputSchema
}

// Children returns no inputs
func (p *EmptyRelation) Children() []LogicalPlan {
	return nil
}

// String returns a one-line description of this node
func (p *EmptyRelation) String() string {
	return "EmptyRelation"
}

// MemoryScan is a source wrapping already-materialized batches
type MemoryScan struct {
	Batches []table.Batch
}

func (p *MemoryScan) planNode() {}

// Schema returns the schema of the wrapped batches
func (p *MemoryScan) Schema() schema.Schema {
	if len(p.Batches) == 0 {
		return schema.Empty()
	}
	return p.Batches[0].Schema
}

// Children returns no inputs
func (p *MemoryScan) Children() []LogicalPlan {
	return nil
}

// String returns a one-line description of this node
func (p *MemoryScan) String() string {
	return fmt.Sprintf("MemoryScan: %d batches", len(p.Batches))
}

// FileScan is a source describing an external file, the file's full
// schema, an optional column-index projection and the resulting
// projected schema. The node carries everything an executor needs to
// open the file exactly as the schema was resolved: FileSchema is
// authoritative (declared or inferred, never re-inferred downstream)
// and HasHeader records whether a CSV file's first line carries column
// names. Other formats ignore HasHeader.
type FileScan struct {
	Path            string
	FileType        string
	FileSchema      schema.Schema
	ProjectedSchema schema.Schema
	Projection      []int
	HasHeader       bool
}

// NewFileScan creates a FileScan, narrowing the file's native schema
// to the given column indices when a projection is supplied. Field
// order of the file is preserved by the projected schema following the
// projection's order.
func NewFileScan(path, fileType string, fileSchema schema.Schema, projection []int, hasHeader bool) (*FileScan, error) {
	projected := fileSchema
	if projection != nil {
		var err error
		projected, err = fileSchema.Select(projection)
		if err != nil {
			return nil, err
		}
	}
	return &FileScan{
		Path:            path,
		FileType:        fileType,
		FileSchema:      fileSchema,
		ProjectedSchema: projected,
		Projection:      projection,
		HasHeader:       hasHeader,
	}, nil
}

func (p *FileScan) planNode() {}

// Schema returns the projected schema of this scan
func (p *FileScan) Schema() schema.Schema {
	return p.ProjectedSchema
}

// Children returns no inputs
func (p *FileScan) Children() []LogicalPlan {
	return nil
}

// String returns a one-line description of this node
func (p *FileScan) String() string {
	if p.Projection != nil {
		return fmt.Sprintf("FileScan: %s (%s) projection=%v", p.Path, p.FileType, p.Projection)
	}
	return fmt.Sprintf("FileScan: %s (%s)", p.Path, p.FileType)
}

// Projection is a list of output expressions over an input plan
type Projection struct {
	Expr         []Expr
	Input        LogicalPlan
	OutputSchema schema.Schema
}

// NewProjection creates a Projection over the input. Each wildcard in
// the expression list is independently replaced, in place, by one
// column reference per field of the input schema; non-wildcard entries
// keep their position relative to the expanded columns. The output
// schema is derived from the expanded list.
func NewProjection(input LogicalPlan, exprs []Expr) (*Projection, error) {
	inputSchema := input.Schema()
	expanded := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if IsWildcard(e) {
			for i := 0; i < inputSchema.Len(); i++ {
				expanded = append(expanded, Col(i))
			}
		} else {
			expanded = append(expanded, e)
		}
	}
	fields, err := ExprsToFields(expanded, inputSchema)
	if err != nil {
		return nil, err
	}
	return &Projection{
		Expr:         expanded,
		Input:        input,
		OutputSchema: schema.NewSchema(fields),
	}, nil
}

func (p *Projection) planNode() {}

// Schema returns the derived schema of this projection
func (p *Projection) Schema() schema.Schema {
	return p.OutputSchema
}

// Children returns the input plan
func (p *Projection) Children() []LogicalPlan {
	return []LogicalPlan{p.Input}
}

// String returns a one-line description of this node
func (p *Projection) String() string {
	return "Projection: " + exprList(p.Expr)
}

// Selection filters an input plan with a boolean-valued expression.
// The schema is unchanged from the input.
type Selection struct {
	Expr  Expr
	Input LogicalPlan
}

// NewSelection creates a Selection over the input
func NewSelection(input LogicalPlan, expr Expr) *Selection {
	return &Selection{Expr: expr, Input: input}
}

func (p *Selection) planNode() {}

// Schema returns the input's schema, unchanged
func (p *Selection) Schema() schema.Schema {
	return p.Input.Schema()
}

// Children returns the input plan
func (p *Selection) Children() []LogicalPlan {
	return []LogicalPlan{p.Input}
}

// String returns a one-line description of this node
func (p *Selection) String() string {
	return "Selection: " + p.Expr.String()
}

// Limit truncates an input plan to a literal unsigned row count. The
// schema is copied unchanged from the input.
type Limit struct {
	Expr         Expr
	Input        LogicalPlan
	OutputSchema schema.Schema
}

// NewLimit creates a Limit wrapping a literal unsigned row count
func NewLimit(input LogicalPlan, n uint64) *Limit {
	return &Limit{
		Expr:         Lit(table.UInt64Value(n)),
		Input:        input,
		OutputSchema: input.Schema(),
	}
}

func (p *Limit) planNode() {}

// Schema returns the input's schema, unchanged
func (p *Limit) Schema() schema.Schema {
	return p.OutputSchema
}

// Children returns the input plan
func (p *Limit) Children() []LogicalPlan {
	return []LogicalPlan{p.Input}
}

// String returns a one-line description of this node
func (p *Limit) String() string {
	return "Limit: " + p.Expr.String()
}

// Aggregate groups an input plan by a list of grouping expressions and
// evaluates a list of aggregate expressions per group
type Aggregate struct {
	Input        LogicalPlan
	GroupExpr    []Expr
	AggrExpr     []Expr
	OutputSchema schema.Schema
}

// NewAggregate creates an Aggregate. The output schema is the ordered
// concatenation of fields derived from the grouping expressions
// followed by fields derived from the aggregate expressions.
func NewAggregate(input LogicalPlan, groupExpr []Expr, aggrExpr []Expr) (*Aggregate, error) {
	inputSchema := input.Schema()
	groupFields, err := ExprsToFields(groupExpr, inputSchema)
	if err != nil {
		return nil, err
	}
	aggrFields, err := ExprsToFields(aggrExpr, inputSchema)
	if err != nil {
		return nil, err
	}
	fields := make([]schema.Field, 0, len(groupFields)+len(aggrFields))
	fields = append(fields, groupFields...)
	fields = append(fields, aggrFields...)
	return &Aggregate{
		Input:        input,
		GroupExpr:    groupExpr,
		AggrExpr:     aggrExpr,
		OutputSchema: schema.NewSchema(fields),
	}, nil
}

func (p *Aggregate) planNode() {}

// Schema returns the derived schema of this aggregate
func (p *Aggregate) Schema() schema.Schema {
	return p.OutputSchema
}

// Children returns the input plan
func (p *Aggregate) Children() []LogicalPlan {
	return []LogicalPlan{p.Input}
}

// String returns a one-line description of this node
func (p *Aggregate) String() string {
	return fmt.Sprintf("Aggregate: group=%s aggr=%s", exprList(p.GroupExpr), exprList(p.AggrExpr))
}

func exprList(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
