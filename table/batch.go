package table

import (
	"fmt"

	"github.com/go-brig/brig/schema"
)

// Batch is a materialized, table-shaped chunk of rows with a fixed
// Schema. Batches are produced by execution and never mutated once
// returned to a caller.
type Batch struct {
	Schema schema.Schema
	Rows   [][]Scalar
}

// NewBatch creates a Batch, verifying that every row matches the width
// of the Schema
func NewBatch(s schema.Schema, rows [][]Scalar) (Batch, error) {
	for i, row := range rows {
		if len(row) != s.Len() {
			return Batch{}, fmt.Errorf("row %d has %d values, schema has %d fields", i, len(row), s.Len())
		}
	}
	return Batch{Schema: s, Rows: rows}, nil
}

// NumRows returns the number of rows in this Batch
func (b Batch) NumRows() int {
	return len(b.Rows)
}

// Column returns the values of the column at position i, in row order
func (b Batch) Column(i int) []Scalar {
	col := make([]Scalar, len(b.Rows))
	for r, row := range b.Rows {
		col[r] = row[i]
	}
	return col
}
