package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// hashAggExec consumes its entire input on first use, grouping rows by
// the xxhash of their grouping key and accumulating one value per
// aggregate expression. Groups are emitted in first-seen order.
type hashAggExec struct {
	input     PhysicalPlan
	groupExpr []logical.Expr
	aggs      []*logical.AggregateExpr
	schema    schema.Schema
	batchSize int
	done      bool
	entries   []*aggEntry
	emitted   int
}

type aggEntry struct {
	key       []byte
	groupVals []table.Scalar
	accs      []accumulator
}

func newHashAggExec(input PhysicalPlan, groupExpr, aggrExpr []logical.Expr, out schema.Schema, batchSize int) (PhysicalPlan, error) {
	aggs := make([]*logical.AggregateExpr, len(aggrExpr))
	for i, e := range aggrExpr {
		agg, ok := e.(*logical.AggregateExpr)
		if !ok {
			return nil, fmt.Errorf("aggregate list entry %s is not an aggregate function", e)
		}
		if len(agg.Args) != 1 {
			return nil, fmt.Errorf("%s takes exactly one argument, got %d", agg.Name, len(agg.Args))
		}
		if _, err := newAccumulator(agg.Name); err != nil {
			return nil, err
		}
		aggs[i] = agg
	}
	return &hashAggExec{
		input:     input,
		groupExpr: groupExpr,
		aggs:      aggs,
		schema:    out,
		batchSize: batchSize,
	}, nil
}

func (e *hashAggExec) Schema() schema.Schema {
	return e.schema
}

func (e *hashAggExec) Next(ctx context.Context) (*table.Batch, error) {
	if !e.done {
		if err := e.consume(ctx); err != nil {
			return nil, err
		}
		e.done = true
	}
	if e.emitted >= len(e.entries) {
		return nil, nil
	}
	end := e.emitted + e.batchSize
	if end > len(e.entries) {
		end = len(e.entries)
	}
	rows := make([][]table.Scalar, 0, end-e.emitted)
	for _, entry := range e.entries[e.emitted:end] {
		row := make([]table.Scalar, 0, len(entry.groupVals)+len(entry.accs))
		row = append(row, entry.groupVals...)
		for _, acc := range entry.accs {
			row = append(row, acc.result())
		}
		rows = append(rows, row)
	}
	e.emitted = end
	batch, err := table.NewBatch(e.schema, rows)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (e *hashAggExec) Close() error {
	return e.input.Close()
}

func (e *hashAggExec) consume(ctx context.Context) error {
	index := map[uint64][]*aggEntry{}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := e.input.Next(ctx)
		if err != nil {
			return err
		}
		if batch == nil {
			break
		}
		for _, row := range batch.Rows {
			entry, err := e.lookup(index, row)
			if err != nil {
				return err
			}
			for i, agg := range e.aggs {
				v, err := evalExpr(agg.Args[0], row)
				if err != nil {
					return err
				}
				entry.accs[i].update(v)
			}
		}
	}
	// a global aggregation over zero rows still produces one row
	if len(e.groupExpr) == 0 && len(e.entries) == 0 {
		e.entries = append(e.entries, e.newEntry(nil, nil))
	}
	return nil
}

func (e *hashAggExec) lookup(index map[uint64][]*aggEntry, row []table.Scalar) (*aggEntry, error) {
	groupVals := make([]table.Scalar, len(e.groupExpr))
	for i, g := range e.groupExpr {
		v, err := evalExpr(g, row)
		if err != nil {
			return nil, err
		}
		groupVals[i] = v
	}
	key := groupKey(groupVals)
	hash := xxhash.Sum64(key)
	for _, candidate := range index[hash] {
		if bytes.Equal(candidate.key, key) {
			return candidate, nil
		}
	}
	entry := e.newEntry(key, groupVals)
	index[hash] = append(index[hash], entry)
	e.entries = append(e.entries, entry)
	return entry, nil
}

func (e *hashAggExec) newEntry(key []byte, groupVals []table.Scalar) *aggEntry {
	accs := make([]accumulator, len(e.aggs))
	for i, agg := range e.aggs {
		accs[i], _ = newAccumulator(agg.Name)
	}
	return &aggEntry{key: key, groupVals: groupVals, accs: accs}
}

// groupKey serializes a grouping tuple unambiguously: each value is
// written as its kind, the length of its textual form, then the text
// itself, so no value can bleed into its neighbour's segment.
func groupKey(vals []table.Scalar) []byte {
	var buf bytes.Buffer
	var lenBuf [binary.MaxVarintLen64]byte
	for _, v := range vals {
		buf.WriteByte(byte(v.Kind))
		s := v.String()
		n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
		buf.Write(lenBuf[:n])
		buf.WriteString(s)
	}
	return buf.Bytes()
}

// An accumulator folds one column of values into a single result.
// Results are always Float64, matching the declared return type of
// aggregate expressions.
type accumulator interface {
	update(v table.Scalar)
	result() table.Scalar
}

func newAccumulator(name string) (accumulator, error) {
	switch name {
	case "MIN":
		return &minAcc{}, nil
	case "MAX":
		return &maxAcc{}, nil
	case "SUM":
		return &sumAcc{}, nil
	case "COUNT":
		return &countAcc{}, nil
	case "AVG":
		return &avgAcc{}, nil
	default:
		return nil, fmt.Errorf("unknown aggregate function %q", name)
	}
}

type minAcc struct {
	val float64
	set bool
}

func (a *minAcc) update(v table.Scalar) {
	if f, ok := v.AsFloat(); ok && (!a.set || f < a.val) {
		a.val, a.set = f, true
	}
}

func (a *minAcc) result() table.Scalar {
	if !a.set {
		return table.Null()
	}
	return table.Float64Value(a.val)
}

type maxAcc struct {
	val float64
	set bool
}

func (a *maxAcc) update(v table.Scalar) {
	if f, ok := v.AsFloat(); ok && (!a.set || f > a.val) {
		a.val, a.set = f, true
	}
}

func (a *maxAcc) result() table.Scalar {
	if !a.set {
		return table.Null()
	}
	return table.Float64Value(a.val)
}

type sumAcc struct {
	sum float64
	set bool
}

func (a *sumAcc) update(v table.Scalar) {
	if f, ok := v.AsFloat(); ok {
		a.sum += f
		a.set = true
	}
}

func (a *sumAcc) result() table.Scalar {
	if !a.set {
		return table.Null()
	}
	return table.Float64Value(a.sum)
}

type countAcc struct {
	count uint64
}

func (a *countAcc) update(v table.Scalar) {
	if !v.IsNull() {
		a.count++
	}
}

func (a *countAcc) result() table.Scalar {
	return table.Float64Value(float64(a.count))
}

type avgAcc struct {
	sum   float64
	count uint64
}

func (a *avgAcc) update(v table.Scalar) {
	if f, ok := v.AsFloat(); ok {
		a.sum += f
		a.count++
	}
}

func (a *avgAcc) result() table.Scalar {
	if a.count == 0 {
		return table.Null()
	}
	return table.Float64Value(a.sum / float64(a.count))
}
