package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "brig.Executor"

// CollectMethod is the full method path of the Collect RPC
const CollectMethod = "/" + ServiceName + "/Collect"

// ExecutorServer is the server-side contract of the executor service
type ExecutorServer interface {
	// Collect evaluates the action's plan and returns its result batches
	Collect(ctx context.Context, action *Action) (*CollectResult, error)
}

func collectHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Action)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExecutorServer).Collect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CollectMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExecutorServer).Collect(ctx, req.(*Action))
	}
	return interceptor(ctx, in, info, handler)
}

// ExecutorServiceDesc registers the executor service without generated
// bindings: messages travel through the registered brig codec instead
// of protobuf
var ExecutorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExecutorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Collect", Handler: collectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "brig/rpc",
}
