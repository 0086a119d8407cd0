// Package jsonl provides a table provider for JSON-lines files.
// Columns are parsed lazily from each line using their column name as
// a gjson path; the schema is inferred from the first non-empty line.
package jsonl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/go-brig/brig/datasource"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// Provider reads the schema and rows of a JSON-lines file
type Provider struct {
	path   string
	schema schema.Schema
}

// Open resolves the native schema of a JSON-lines file and returns a
// Provider for it
func Open(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var fields []schema.Field
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsed := gjson.Parse(line)
		if !parsed.IsObject() {
			return nil, fmt.Errorf("%s: line is not a JSON object", path)
		}
		parsed.ForEach(func(key, value gjson.Result) bool {
			fields = append(fields, schema.Field{Name: key.String(), Type: inferType(value)})
			return true
		})
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Provider{path: path, schema: schema.NewSchema(fields)}, nil
}

// Schema returns the file's native schema
func (p *Provider) Schema() schema.Schema {
	return p.schema
}

// Scan returns an iterator over the file's rows
func (p *Provider) Scan(batchSize int) (datasource.Iterator, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	return &iterator{file: f, scanner: bufio.NewScanner(f), schema: p.schema, batchSize: batchSize}, nil
}

// Close releases the Provider. Scans hold their own file handles, so
// this is a no-op.
func (p *Provider) Close() error {
	return nil
}

type iterator struct {
	file      *os.File
	scanner   *bufio.Scanner
	schema    schema.Schema
	batchSize int
	done      bool
}

// Next returns the next batch of rows, or nil at end of file
func (it *iterator) Next() (*table.Batch, error) {
	if it.done {
		return nil, nil
	}
	rows := make([][]table.Scalar, 0, it.batchSize)
	for len(rows) < it.batchSize {
		if !it.scanner.Scan() {
			if err := it.scanner.Err(); err != nil {
				return nil, err
			}
			it.done = true
			break
		}
		line := strings.TrimSpace(it.scanner.Text())
		if line == "" {
			continue
		}
		row := make([]table.Scalar, it.schema.Len())
		for i := 0; i < it.schema.Len(); i++ {
			field := it.schema.Field(i)
			row[i] = toScalar(gjson.Get(line, field.Name), field.Type)
		}
		rows = append(rows, row)
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

// Close releases the iterator's file handle
func (it *iterator) Close() error {
	return it.file.Close()
}

func inferType(value gjson.Result) schema.DataType {
	switch value.Type {
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return schema.Float64
		}
		return schema.Int64
	case gjson.True, gjson.False:
		return schema.Bool
	default:
		return schema.Utf8
	}
}

func toScalar(value gjson.Result, t schema.DataType) table.Scalar {
	if !value.Exists() || value.Type == gjson.Null {
		return table.Null()
	}
	switch t {
	case schema.Int64:
		return table.Int64Value(value.Int())
	case schema.UInt64:
		return table.UInt64Value(value.Uint())
	case schema.Float64:
		return table.Float64Value(value.Float())
	case schema.Bool:
		return table.BoolValue(value.Bool())
	default:
		return table.StringValue(value.String())
	}
}
