// Package csv provides a table provider for comma-separated files.
// Column names come from the header row when one is present, and
// column types are inferred from the first data record.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-brig/brig/datasource"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// Conf configures a CSV Provider
type Conf struct {
	HasHeader bool // Whether the first line carries column names
	Comma     rune // Field delimiter. Defaults to ','.
}

// Provider reads the schema and rows of a CSV file
type Provider struct {
	path   string
	conf   *Conf
	schema schema.Schema
}

// NewProvider creates a Provider over a file whose schema is already
// resolved. No inference happens: cells are parsed against the given
// schema exactly as declared.
func NewProvider(path string, conf *Conf, s schema.Schema) *Provider {
	if conf == nil {
		conf = &Conf{HasHeader: true}
	}
	if conf.Comma == 0 {
		conf.Comma = ','
	}
	return &Provider{path: path, conf: conf, schema: s}
}

// Open resolves the native schema of a CSV file and returns a Provider
// for it. The file is reopened for each Scan, so a Provider may be
// scanned more than once.
func Open(path string, conf *Conf) (*Provider, error) {
	if conf == nil {
		conf = &Conf{HasHeader: true}
	}
	if conf.Comma == 0 {
		conf.Comma = ','
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := newReader(f, conf)

	var names []string
	var sample []string
	first, err := reader.Read()
	if err == io.EOF {
		return &Provider{path: path, conf: conf, schema: schema.Empty()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if conf.HasHeader {
		names = make([]string, len(first))
		for i, h := range first {
			names[i] = strings.TrimSpace(h)
		}
		sample, err = reader.Read()
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
	} else {
		names = make([]string, len(first))
		for i := range first {
			names[i] = fmt.Sprintf("c%d", i)
		}
		sample = first
	}

	fields := make([]schema.Field, len(names))
	for i, name := range names {
		t := schema.Utf8
		if i < len(sample) {
			t = inferType(strings.TrimSpace(sample[i]))
		}
		fields[i] = schema.Field{Name: name, Type: t}
	}
	return &Provider{path: path, conf: conf, schema: schema.NewSchema(fields)}, nil
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
	reader := newReader(f, p.conf)
	if p.conf.HasHeader {
		if _, err := reader.Read(); err != nil && err != io.EOF {
			f.Close()
			return nil, err
		}
	}
	return &iterator{file: f, reader: reader, schema: p.schema, batchSize: batchSize}, nil
}

// Close releases the Provider. Scans hold their own file handles, so
// this is a no-op.
func (p *Provider) Close() error {
	return nil
}

type iterator struct {
	file      *os.File
	reader    *csv.Reader
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
		record, err := it.reader.Read()
		if err == io.EOF {
			it.done = true
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]table.Scalar, it.schema.Len())
		for i := 0; i < it.schema.Len(); i++ {
			if i < len(record) {
				row[i] = parseScalar(strings.TrimSpace(record[i]), it.schema.Field(i).Type)
			} else {
				row[i] = table.Null()
			}
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

func newReader(f *os.File, conf *Conf) *csv.Reader {
	reader := csv.NewReader(f)
	reader.Comma = conf.Comma
	reader.TrimLeadingSpace = true
	return reader
}

// inferType guesses the narrowest type a sample cell fits
func inferType(s string) schema.DataType {
	if s == "" {
		return schema.Utf8
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return schema.Int64
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return schema.Float64
	}
	if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") {
		return schema.Bool
	}
	return schema.Utf8
}

// parseScalar parses a cell according to the declared column type,
// yielding null for cells which do not fit it
func parseScalar(s string, t schema.DataType) table.Scalar {
	if s == "" || strings.EqualFold(s, "null") {
		return table.Null()
	}
	switch t {
	case schema.Int64:
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return table.Int64Value(v)
		}
	case schema.UInt64:
		if v, err := strconv.ParseUint(s, 10, 64); err == nil {
			return table.UInt64Value(v)
		}
	case schema.Float64:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return table.Float64Value(v)
		}
	case schema.Bool:
		if v, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
			return table.BoolValue(v)
		}
	default:
		return table.StringValue(s)
	}
	return table.Null()
}
