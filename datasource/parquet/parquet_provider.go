// Package parquet provides a table provider for Parquet files backed
// by the parquet-go reader. Only flat schemas are supported; nested
// groups are rejected at open time.
package parquet

import (
	"fmt"
	"io"
	"os"

	pq "github.com/parquet-go/parquet-go"

	"github.com/go-brig/brig/datasource"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// Provider reads the schema and rows of a Parquet file
type Provider struct {
	file   *os.File
	pf     *pq.File
	schema schema.Schema
}

// Open resolves the native schema of a Parquet file and returns a
// Provider for it
func Open(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	pf, err := pq.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	fields := make([]schema.Field, 0, len(pf.Schema().Fields()))
	for _, field := range pf.Schema().Fields() {
		if !field.Leaf() {
			f.Close()
			return nil, fmt.Errorf("%s: nested field %q is not supported", path, field.Name())
		}
		fields = append(fields, schema.Field{Name: field.Name(), Type: mapKind(field.Type().Kind())})
	}
	return &Provider{file: f, pf: pf, schema: schema.NewSchema(fields)}, nil
}

// Schema returns the file's native schema
func (p *Provider) Schema() schema.Schema {
	return p.schema
}

// Scan returns an iterator over the file's rows
func (p *Provider) Scan(batchSize int) (datasource.Iterator, error) {
	return &iterator{groups: p.pf.RowGroups(), schema: p.schema, batchSize: batchSize}, nil
}

// Close releases the underlying file handle
func (p *Provider) Close() error {
	return p.file.Close()
}

type iterator struct {
	groups    []pq.RowGroup
	current   pq.Rows
	schema    schema.Schema
	batchSize int
}

// Next returns the next batch of rows, or nil when every row group is
// exhausted
func (it *iterator) Next() (*table.Batch, error) {
	rows := make([][]table.Scalar, 0, it.batchSize)
	buf := make([]pq.Row, it.batchSize)
	for len(rows) < it.batchSize {
		if it.current == nil {
			if len(it.groups) == 0 {
				break
			}
			it.current = it.groups[0].Rows()
			it.groups = it.groups[1:]
		}
		n, err := it.current.ReadRows(buf[:it.batchSize-len(rows)])
		for _, raw := range buf[:n] {
			rows = append(rows, it.convertRow(raw))
		}
		if err == io.EOF {
			if cerr := it.current.Close(); cerr != nil {
				return nil, cerr
			}
			it.current = nil
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	batch, err := table.NewBatch(it.schema, rows)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// Close releases any partially-read row group
func (it *iterator) Close() error {
	if it.current != nil {
		err := it.current.Close()
		it.current = nil
		return err
	}
	return nil
}

func (it *iterator) convertRow(raw pq.Row) []table.Scalar {
	row := make([]table.Scalar, it.schema.Len())
	for i := range row {
		row[i] = table.Null()
	}
	for _, v := range raw {
		col := int(v.Column())
		if col < 0 || col >= len(row) {
			continue
		}
		row[col] = convertValue(v)
	}
	return row
}

func convertValue(v pq.Value) table.Scalar {
	if v.IsNull() {
		return table.Null()
	}
	switch v.Kind() {
	case pq.Boolean:
		return table.BoolValue(v.Boolean())
	case pq.Int32:
		return table.Int64Value(int64(v.Int32()))
	case pq.Int64:
		return table.Int64Value(v.Int64())
	case pq.Float:
		return table.Float64Value(float64(v.Float()))
	case pq.Double:
		return table.Float64Value(v.Double())
	case pq.ByteArray, pq.FixedLenByteArray:
		return table.StringValue(v.String())
	default:
		return table.Null()
	}
}

func mapKind(kind pq.Kind) schema.DataType {
	switch kind {
	case pq.Boolean:
		return schema.Bool
	case pq.Int32, pq.Int64:
		return schema.Int64
	case pq.Float, pq.Double:
		return schema.Float64
	default:
		return schema.Utf8
	}
}
