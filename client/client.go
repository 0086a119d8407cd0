// Package client reaches executor services over gRPC. Every call is a
// single round trip with no retry, backoff or built-in timeout;
// cancellation comes from the caller's context.
package client

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"google.golang.org/grpc"

	"github.com/go-brig/brig/errors"
	"github.com/go-brig/brig/rpc"
	"github.com/go-brig/brig/table"
)

// ExecuteAction sends one Action to the executor at host:port and
// returns its ordered result batches. When the action carries no job
// ID, a fresh one is stamped on the outgoing request; the caller's
// action is never modified.
func ExecuteAction(ctx context.Context, host string, port int, action *rpc.Action) ([]table.Batch, error) {
	req := *action
	if req.JobID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, &errors.TransportError{Host: host, Port: port, Cause: err}
		}
		req.JobID = id.String()
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.DialContext(ctx, addr,
		grpc.WithInsecure(),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	)
	if err != nil {
		return nil, &errors.TransportError{Host: host, Port: port, Cause: err}
	}
	defer conn.Close()

	result := new(rpc.CollectResult)
	if err := conn.Invoke(ctx, rpc.CollectMethod, &req, result); err != nil {
		return nil, &errors.TransportError{Host: host, Port: port, Cause: err}
	}
	return result.Batches, nil
}
