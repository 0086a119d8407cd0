package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/go-brig/brig/datasource"
	"github.com/go-brig/brig/datasource/avro"
	"github.com/go-brig/brig/datasource/csv"
	"github.com/go-brig/brig/datasource/jsonl"
	"github.com/go-brig/brig/datasource/parquet"
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

func createExec(plan logical.LogicalPlan, batchSize int) (PhysicalPlan, error) {
	switch p := plan.(type) {
	case *logical.EmptyRelation:
		return &emptyExec{schema: p.OutputSchema}, nil
	case *logical.MemoryScan:
		return &memoryExec{schema: p.Schema(), batches: p.Batches}, nil
	case *logical.FileScan:
		provider, err := openProvider(p)
		if err != nil {
			return nil, err
		}
		return &scanExec{
			provider:   provider,
			projection: p.Projection,
			schema:     p.ProjectedSchema,
			batchSize:  batchSize,
		}, nil
	case *logical.Projection:
		input, err := createExec(p.Input, batchSize)
		if err != nil {
			return nil, err
		}
		return &projectExec{input: input, exprs: p.Expr, schema: p.OutputSchema}, nil
	case *logical.Selection:
		input, err := createExec(p.Input, batchSize)
		if err != nil {
			return nil, err
		}
		return &filterExec{input: input, pred: p.Expr}, nil
	case *logical.Limit:
		input, err := createExec(p.Input, batchSize)
		if err != nil {
			return nil, err
		}
		lit, ok := p.Expr.(*logical.LiteralExpr)
		if !ok || lit.Value.Kind != table.KindUInt64 {
			return nil, fmt.Errorf("limit expression %s is not an unsigned literal", p.Expr)
		}
		return &limitExec{input: input, remaining: lit.Value.UInt64}, nil
	case *logical.Aggregate:
		input, err := createExec(p.Input, batchSize)
		if err != nil {
			return nil, err
		}
		return newHashAggExec(input, p.GroupExpr, p.AggrExpr, p.OutputSchema, batchSize)
	default:
		return nil, fmt.Errorf("no physical operator for plan node %s", plan)
	}
}

// openProvider opens the scan's file with the configuration its schema
// was resolved with. The CSV provider is handed the scan's schema and
// header flag rather than re-inferring them from the file.
func openProvider(p *logical.FileScan) (datasource.Provider, error) {
	switch p.FileType {
	case "csv":
		return csv.NewProvider(p.Path, &csv.Conf{HasHeader: p.HasHeader}, p.FileSchema), nil
	case "parquet":
		return parquet.Open(p.Path)
	case "jsonl":
		return jsonl.Open(p.Path)
	case "avro":
		return avro.Open(p.Path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", p.FileType)
	}
}

// emptyExec produces no rows
type emptyExec struct {
	schema schema.Schema
}

func (e *emptyExec) Schema() schema.Schema {
	return e.schema
}

func (e *emptyExec) Next(ctx context.Context) (*table.Batch, error) {
	return nil, nil
}

func (e *emptyExec) Close() error {
	return nil
}

// memoryExec replays already-materialized batches
type memoryExec struct {
	schema  schema.Schema
	batches []table.Batch
	next    int
}

func (e *memoryExec) Schema() schema.Schema {
	return e.schema
}

func (e *memoryExec) Next(ctx context.Context) (*table.Batch, error) {
	if e.next >= len(e.batches) {
		return nil, nil
	}
	batch := e.batches[e.next]
	e.next++
	return &batch, nil
}

func (e *memoryExec) Close() error {
	return nil
}

// scanExec reads batches from a file provider, narrowing each batch to
// the scan's projected columns
type scanExec struct {
	provider   datasource.Provider
	projection []int
	schema     schema.Schema
	batchSize  int
	iterator   datasource.Iterator
}

func (e *scanExec) Schema() schema.Schema {
	return e.schema
}

func (e *scanExec) Next(ctx context.Context) (*table.Batch, error) {
	if e.iterator == nil {
		it, err := e.provider.Scan(e.batchSize)
		if err != nil {
			return nil, err
		}
		e.iterator = it
	}
	batch, err := e.iterator.Next()
	if err != nil || batch == nil {
		return nil, err
	}
	if e.projection == nil {
		return batch, nil
	}
	rows := make([][]table.Scalar, len(batch.Rows))
	for r, row := range batch.Rows {
		narrowed := make([]table.Scalar, len(e.projection))
		for i, col := range e.projection {
			narrowed[i] = row[col]
		}
		rows[r] = narrowed
	}
	projected, err := table.NewBatch(e.schema, rows)
	if err != nil {
		return nil, err
	}
	return &projected, nil
}

func (e *scanExec) Close() error {
	var result *multierror.Error
	if e.iterator != nil {
		result = multierror.Append(result, e.iterator.Close())
		e.iterator = nil
	}
	result = multierror.Append(result, e.provider.Close())
	return result.ErrorOrNil()
}

// projectExec evaluates one output expression per field for every row
type projectExec struct {
	input  PhysicalPlan
	exprs  []logical.Expr
	schema schema.Schema
}

func (e *projectExec) Schema() schema.Schema {
	return e.schema
}

func (e *projectExec) Next(ctx context.Context) (*table.Batch, error) {
	batch, err := e.input.Next(ctx)
	if err != nil || batch == nil {
		return nil, err
	}
	rows := make([][]table.Scalar, len(batch.Rows))
	for r, row := range batch.Rows {
		out := make([]table.Scalar, len(e.exprs))
		for i, expr := range e.exprs {
			out[i], err = evalExpr(expr, row)
			if err != nil {
				return nil, err
			}
		}
		rows[r] = out
	}
	projected, err := table.NewBatch(e.schema, rows)
	if err != nil {
		return nil, err
	}
	return &projected, nil
}

func (e *projectExec) Close() error {
	return e.input.Close()
}

// filterExec retains rows whose predicate evaluates to true
type filterExec struct {
	input PhysicalPlan
	pred  logical.Expr
}

func (e *filterExec) Schema() schema.Schema {
	return e.input.Schema()
}

func (e *filterExec) Next(ctx context.Context) (*table.Batch, error) {
	for {
		batch, err := e.input.Next(ctx)
		if err != nil || batch == nil {
			return nil, err
		}
		var rows [][]table.Scalar
		for _, row := range batch.Rows {
			v, err := evalExpr(e.pred, row)
			if err != nil {
				return nil, err
			}
			keep, ok := v.AsBool()
			if !ok {
				return nil, fmt.Errorf("filter predicate %s produced non-boolean %s", e.pred, v)
			}
			if keep {
				rows = append(rows, row)
			}
		}
		if len(rows) == 0 {
			continue
		}
		filtered, err := table.NewBatch(batch.Schema, rows)
		if err != nil {
			return nil, err
		}
		return &filtered, nil
	}
}

func (e *filterExec) Close() error {
	return e.input.Close()
}

// limitExec truncates its input to a fixed row count without draining
// the remainder
type limitExec struct {
	input     PhysicalPlan
	remaining uint64
}

func (e *limitExec) Schema() schema.Schema {
	return e.input.Schema()
}

func (e *limitExec) Next(ctx context.Context) (*table.Batch, error) {
	if e.remaining == 0 {
		return nil, nil
	}
	batch, err := e.input.Next(ctx)
	if err != nil || batch == nil {
		return nil, err
	}
	if uint64(len(batch.Rows)) <= e.remaining {
		e.remaining -= uint64(len(batch.Rows))
		return batch, nil
	}
	truncated, err := table.NewBatch(batch.Schema, batch.Rows[:e.remaining])
	if err != nil {
		return nil, err
	}
	e.remaining = 0
	return &truncated, nil
}

func (e *limitExec) Close() error {
	return e.input.Close()
}
