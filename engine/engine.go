// Package engine is the local in-process execution engine: it
// optimizes logical plans, compiles them into batch-at-a-time physical
// operators and executes them eagerly on the calling goroutine.
package engine

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/go-brig/brig/logging"
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

// A PhysicalPlan is an executable operator tree. Next returns batches
// until the plan is exhausted, signalled by a nil batch.
type PhysicalPlan interface {
	// Schema returns the output schema of this operator
	Schema() schema.Schema
	// Next returns the next output batch, or nil when no rows remain
	Next(ctx context.Context) (*table.Batch, error)
	// Close releases resources held by this operator and its inputs
	Close() error
}

// Engine optimizes and executes logical plans locally
type Engine struct {
	rules  []Rule
	logger *logging.Logger
}

// New creates an Engine with the default rule set
func New() *Engine {
	return &Engine{
		rules:  []Rule{&projectionPushdown{}},
		logger: logging.CreateLogger(logging.WarnLevel),
	}
}

// Optimize applies every rewrite rule to the plan, returning a new
// plan tree. The input plan is never modified.
func (e *Engine) Optimize(plan logical.LogicalPlan) (logical.LogicalPlan, error) {
	optimized := plan
	for _, rule := range e.rules {
		next, err := rule.Apply(optimized)
		if err != nil {
			return nil, err
		}
		optimized = next
	}
	e.logger.Debugf("optimized plan:\n%s", logical.Format(optimized))
	return optimized, nil
}

// CreatePhysicalPlan compiles a logical plan into an executable
// operator tree, with scans parameterized by the given batch size
func (e *Engine) CreatePhysicalPlan(plan logical.LogicalPlan, batchSize int) (PhysicalPlan, error) {
	return createExec(plan, batchSize)
}

// Collect executes a physical plan to completion, returning its
// ordered output batches
func (e *Engine) Collect(ctx context.Context, exec PhysicalPlan) ([]table.Batch, error) {
	var batches []table.Batch
	for {
		if err := ctx.Err(); err != nil {
			return nil, multierror.Append(err, exec.Close()).ErrorOrNil()
		}
		batch, err := exec.Next(ctx)
		if err != nil {
			return nil, multierror.Append(err, exec.Close()).ErrorOrNil()
		}
		if batch == nil {
			break
		}
		batches = append(batches, *batch)
	}
	if err := exec.Close(); err != nil {
		return nil, err
	}
	return batches, nil
}
