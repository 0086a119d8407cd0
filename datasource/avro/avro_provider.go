// Package avro provides a table provider for Avro object container
// files backed by goavro. The schema comes from the container's
// embedded Avro schema; union types resolve to their first non-null
// member.
package avro

import (
	"encoding/json"
	"fmt"
	"os"

	goavro "github.com/linkedin/goavro/v2"

	"github.com/go-brig/brig/datasource"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// Provider reads the schema and rows of an Avro OCF file
type Provider struct {
	path   string
	schema schema.Schema
}

// Open resolves the native schema of an Avro OCF file and returns a
// Provider for it
func Open(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read Avro OCF from %s: %w", path, err)
	}
	var schemaDef struct {
		Fields []struct {
			Name string      `json:"name"`
			Type interface{} `json:"type"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(ocfr.Codec().Schema()), &schemaDef); err != nil {
		return nil, fmt.Errorf("cannot parse Avro schema: %w", err)
	}
	fields := make([]schema.Field, len(schemaDef.Fields))
	for i, field := range schemaDef.Fields {
		fields[i] = schema.Field{Name: field.Name, Type: mapType(field.Type)}
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
	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &iterator{file: f, reader: ocfr, schema: p.schema, batchSize: batchSize}, nil
}

// Close releases the Provider. Scans hold their own file handles, so
// this is a no-op.
func (p *Provider) Close() error {
	return nil
}

type iterator struct {
	file      *os.File
	reader    *goavro.OCFReader
	schema    schema.Schema
	batchSize int
}

// Next returns the next batch of rows, or nil at end of file
func (it *iterator) Next() (*table.Batch, error) {
	rows := make([][]table.Scalar, 0, it.batchSize)
	for len(rows) < it.batchSize && it.reader.Scan() {
		datum, err := it.reader.Read()
		if err != nil {
			return nil, err
		}
		record, ok := datum.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected Avro record type %T", datum)
		}
		row := make([]table.Scalar, it.schema.Len())
		for i := 0; i < it.schema.Len(); i++ {
			row[i] = toScalar(record[it.schema.Field(i).Name])
		}
		rows = append(rows, row)
	}
	if err := it.reader.Err(); err != nil {
		return nil, err
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

func mapType(t interface{}) schema.DataType {
	switch v := t.(type) {
	case string:
		switch v {
		case "int", "long":
			return schema.Int64
		case "float", "double":
			return schema.Float64
		case "boolean":
			return schema.Bool
		default:
			return schema.Utf8
		}
	case []interface{}:
		for _, member := range v {
			if s, ok := member.(string); ok && s == "null" {
				continue
			}
			return mapType(member)
		}
		return schema.Utf8
	default:
		return schema.Utf8
	}
}

func toScalar(v interface{}) table.Scalar {
	switch val := v.(type) {
	case nil:
		return table.Null()
	case int32:
		return table.Int64Value(int64(val))
	case int64:
		return table.Int64Value(val)
	case float32:
		return table.Float64Value(float64(val))
	case float64:
		return table.Float64Value(val)
	case bool:
		return table.BoolValue(val)
	case string:
		return table.StringValue(val)
	case []byte:
		return table.StringValue(string(val))
	case map[string]interface{}:
		// union values decode as a single-entry {"type": value} map
		for _, inner := range val {
			return toScalar(inner)
		}
		return table.Null()
	default:
		return table.StringValue(fmt.Sprintf("%v", val))
	}
}
