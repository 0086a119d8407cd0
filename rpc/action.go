// Package rpc defines the wire contract between query builders and
// executor services: the single Collect action, its result, the
// compressed gob codec both sides speak, and the gRPC service
// descriptor.
package rpc

import (
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/table"
)

// Action is the single request type understood by executor services:
// evaluate the carried logical plan and return every result batch. The
// plan is fully expanded before it is packaged; executors never see
// wildcards.
type Action struct {
	JobID string
	Plan  logical.LogicalPlan
}

// CollectResult carries the ordered result batches of one Action
type CollectResult struct {
	Batches []table.Batch
}
