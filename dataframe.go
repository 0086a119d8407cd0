package brig

import (
	"context"
	"strconv"

	"github.com/go-brig/brig/client"
	"github.com/go-brig/brig/engine"
	"github.com/go-brig/brig/errors"
	"github.com/go-brig/brig/logging"
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/rpc"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

var explainLogger = logging.CreateLogger(logging.InfoLevel)

// A DataFrame is a lazy builder for logical query plans. Every
// construction method returns a new DataFrame over a new immutable
// plan tree, sharing the read-only backend state of its parent;
// nothing is evaluated until Collect.
type DataFrame struct {
	state ContextState
	plan  logical.LogicalPlan
}

func fromPlan(state ContextState, plan logical.LogicalPlan) *DataFrame {
	return &DataFrame{state: state, plan: plan}
}

// Empty creates a DataFrame over a zero-row relation with an empty schema
func Empty(state ContextState) *DataFrame {
	return fromPlan(state, &logical.EmptyRelation{OutputSchema: schema.Empty()})
}

// Schema returns the derived output schema of the accumulated plan
func (df *DataFrame) Schema() schema.Schema {
	return df.plan.Schema()
}

// LogicalPlan returns the accumulated plan tree
func (df *DataFrame) LogicalPlan() logical.LogicalPlan {
	return df.plan
}

// Project applies a projection. Wildcards in the expression list are
// expanded to one column reference per input field.
func (df *DataFrame) Project(exprs []logical.Expr) (*DataFrame, error) {
	proj, err := logical.NewProjection(df.plan, exprs)
	if err != nil {
		return nil, err
	}
	return fromPlan(df.state, proj), nil
}

// Filter applies a boolean-valued predicate. The schema is unchanged.
func (df *DataFrame) Filter(expr logical.Expr) (*DataFrame, error) {
	return fromPlan(df.state, logical.NewSelection(df.plan, expr)), nil
}

// Limit truncates the result to at most n rows. The schema is unchanged.
func (df *DataFrame) Limit(n uint64) (*DataFrame, error) {
	return fromPlan(df.state, logical.NewLimit(df.plan, n)), nil
}

// Aggregate groups by the given expressions and evaluates the given
// aggregate expressions per group
func (df *DataFrame) Aggregate(groupExpr []logical.Expr, aggrExpr []logical.Expr) (*DataFrame, error) {
	agg, err := logical.NewAggregate(df.plan, groupExpr, aggrExpr)
	if err != nil {
		return nil, err
	}
	return fromPlan(df.state, agg), nil
}

// Explain logs a diagnostic dump of the accumulated plan tree
func (df *DataFrame) Explain() {
	explainLogger.Infof("Logical plan:\n%s", logical.Format(df.plan))
}

// Collect evaluates the accumulated plan against the bound backend and
// returns the ordered result batches. Exactly one execution is
// dispatched per call; a failure at any stage aborts the whole call
// with no partial result.
func (df *DataFrame) Collect(ctx context.Context) ([]table.Batch, error) {
	switch state := df.state.(type) {
	case *LocalState:
		return df.collectLocal(ctx, state)
	case *RemoteState:
		return client.ExecuteAction(ctx, state.host, state.port, &rpc.Action{Plan: df.plan})
	case *SparkState:
		host, ok := state.sparkSettings[SparkHostKey]
		if !ok {
			return nil, &errors.ConfigurationError{Key: SparkHostKey, Reason: "setting is required for a Spark context"}
		}
		portStr, ok := state.sparkSettings[SparkPortKey]
		if !ok {
			return nil, &errors.ConfigurationError{Key: SparkPortKey, Reason: "setting is required for a Spark context"}
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, &errors.ConfigurationError{Key: SparkPortKey, Reason: "not a valid port number: " + portStr}
		}
		return client.ExecuteAction(ctx, host, int(port), &rpc.Action{Plan: df.plan})
	default:
		return nil, &errors.ConfigurationError{Key: "context", Reason: "unknown backend state"}
	}
}

func (df *DataFrame) collectLocal(ctx context.Context, state *LocalState) ([]table.Batch, error) {
	configs := NewConfigs(state.settings)
	batchSizeStr, _ := configs.CSVBatchSize()
	batchSize, err := strconv.Atoi(batchSizeStr)
	if err != nil {
		return nil, &errors.ConfigurationError{Key: CSVBatchSizeKey, Reason: "not a valid integer: " + batchSizeStr}
	}
	eng := engine.New()
	optimized, err := eng.Optimize(df.plan)
	if err != nil {
		return nil, &errors.EngineError{Cause: err}
	}
	exec, err := eng.CreatePhysicalPlan(optimized, batchSize)
	if err != nil {
		return nil, &errors.EngineError{Cause: err}
	}
	batches, err := eng.Collect(ctx, exec)
	if err != nil {
		return nil, &errors.EngineError{Cause: err}
	}
	return batches, nil
}

// WriteCSV is not implemented for any backend
func (df *DataFrame) WriteCSV(path string) error {
	return &errors.NotImplementedError{Op: "write_csv()", State: df.state.String()}
}

// WriteParquet is not implemented for any backend
func (df *DataFrame) WriteParquet(path string) error {
	return &errors.NotImplementedError{Op: "write_parquet()", State: df.state.String()}
}
