package brig

import (
	"fmt"

	"github.com/go-brig/brig/datasource/avro"
	"github.com/go-brig/brig/datasource/csv"
	"github.com/go-brig/brig/datasource/jsonl"
	"github.com/go-brig/brig/datasource/parquet"
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// SparkHostKey is the settings key naming the host of a legacy
// cluster-manager-backed executor
const SparkHostKey = "spark.ballista.host"

// SparkPortKey is the settings key naming the port of a legacy
// cluster-manager-backed executor
const SparkPortKey = "spark.ballista.port"

// ContextState is the fixed choice of execution target bound to a
// Context at construction. It never transitions: the variant chosen by
// a factory holds for the Context's lifetime, and its settings are
// copied once and never mutated, so the handle is safe to share across
// every DataFrame derived from the Context without locking.
type ContextState interface {
	// String names the backend, for diagnostics and error messages
	String() string
	stateNode()
}

// LocalState executes plans in-process
type LocalState struct {
	settings map[string]string
}

func (s *LocalState) stateNode() {}

// String names this backend
func (s *LocalState) String() string {
	return "Local"
}

// RemoteState executes plans against a remote executor service
type RemoteState struct {
	host     string
	port     int
	settings map[string]string
}

func (s *RemoteState) stateNode() {}

// String names this backend
func (s *RemoteState) String() string {
	return fmt.Sprintf("Remote(%s:%d)", s.host, s.port)
}

// SparkState executes plans against a legacy cluster-manager-backed
// executor, addressed through its settings map
type SparkState struct {
	master        string
	sparkSettings map[string]string
}

func (s *SparkState) stateNode() {}

// String names this backend
func (s *SparkState) String() string {
	return fmt.Sprintf("Spark(%s)", s.master)
}

// Context is a factory for DataFrames bound to one execution backend
type Context struct {
	state ContextState
}

// Local creates a context for executing queries against the local
// in-process engine
func Local(settings map[string]string) *Context {
	return &Context{state: &LocalState{settings: copySettings(settings)}}
}

// Remote creates a context for executing queries against a remote executor
func Remote(host string, port int, settings map[string]string) *Context {
	return &Context{state: &RemoteState{host: host, port: port, settings: copySettings(settings)}}
}

// Spark creates a context for executing queries against a legacy
// cluster-manager-backed executor
func Spark(master string, sparkSettings map[string]string) *Context {
	return &Context{state: &SparkState{master: master, sparkSettings: copySettings(sparkSettings)}}
}

// State returns the backend state bound to this Context
func (c *Context) State() ContextState {
	return c.state
}

// CreateDataFrame creates a DataFrame from existing in-memory batches
func (c *Context) CreateDataFrame(batches []table.Batch) (*DataFrame, error) {
	return fromPlan(c.state, &logical.MemoryScan{Batches: batches}), nil
}

// ReadCSV creates a DataFrame scanning a CSV file. When fileSchema is
// nil the file's native schema is resolved through the CSV provider.
func (c *Context) ReadCSV(path string, fileSchema *schema.Schema, projection []int, hasHeader bool) (*DataFrame, error) {
	var s schema.Schema
	if fileSchema != nil {
		s = *fileSchema
	} else {
		provider, err := csv.Open(path, &csv.Conf{HasHeader: hasHeader})
		if err != nil {
			return nil, err
		}
		defer provider.Close()
		s = provider.Schema()
	}
	return scanFile(c.state, path, "csv", s, projection, hasHeader)
}

// ReadParquet creates a DataFrame scanning a Parquet file, resolving
// the file's native schema through the Parquet provider
func (c *Context) ReadParquet(path string, projection []int) (*DataFrame, error) {
	provider, err := parquet.Open(path)
	if err != nil {
		return nil, err
	}
	defer provider.Close()
	return scanFile(c.state, path, "parquet", provider.Schema(), projection, false)
}

// ReadJSONL creates a DataFrame scanning a JSON-lines file, resolving
// the file's native schema through the JSONL provider
func (c *Context) ReadJSONL(path string, projection []int) (*DataFrame, error) {
	provider, err := jsonl.Open(path)
	if err != nil {
		return nil, err
	}
	defer provider.Close()
	return scanFile(c.state, path, "jsonl", provider.Schema(), projection, false)
}

// ReadAvro creates a DataFrame scanning an Avro OCF file, resolving
// the file's native schema through the Avro provider
func (c *Context) ReadAvro(path string, projection []int) (*DataFrame, error) {
	provider, err := avro.Open(path)
	if err != nil {
		return nil, err
	}
	defer provider.Close()
	return scanFile(c.state, path, "avro", provider.Schema(), projection, false)
}

func scanFile(state ContextState, path, fileType string, fileSchema schema.Schema, projection []int, hasHeader bool) (*DataFrame, error) {
	scan, err := logical.NewFileScan(path, fileType, fileSchema, projection, hasHeader)
	if err != nil {
		return nil, err
	}
	return fromPlan(state, scan), nil
}
