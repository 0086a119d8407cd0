// Package datasource defines the table-provider boundary: uniform
// access to the schema and row batches of external files, with one
// provider implementation per file format in the subpackages.
package datasource

import (
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// A Provider exposes the declared schema of an external file and scans
// its rows as batches. Providers perform all format parsing; callers
// never touch file bytes directly.
type Provider interface {
	// Schema returns the file's native schema, in the file's field order
	Schema() schema.Schema
	// Scan returns an iterator over the file's rows, batched to at
	// most batchSize rows per batch
	Scan(batchSize int) (Iterator, error)
	// Close releases the underlying file handle
	Close() error
}

// An Iterator yields batches until the source is exhausted, signalled
// by a nil batch
type Iterator interface {
	// Next returns the next batch, or nil when no rows remain
	Next() (*table.Batch, error)
	// Close releases any resources held by the iterator
	Close() error
}
