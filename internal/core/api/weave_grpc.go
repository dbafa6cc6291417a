package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "weavereplace.v1.Weave"

// Full method names.
const (
	MethodResolve      = "/" + ServiceName + "/Resolve"
	MethodBatchResolve = "/" + ServiceName + "/BatchResolve"
	MethodMatch        = "/" + ServiceName + "/Match"
	MethodMatchPaths   = "/" + ServiceName + "/MatchPaths"
	MethodExtract      = "/" + ServiceName + "/Extract"
)

// WeaveServer is the server API of the Weave service. Every request and
// response is a google.protobuf.Struct.
type WeaveServer interface {
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BatchResolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Match(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MatchPaths(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type weaveMethod func(WeaveServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call weaveMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WeaveServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WeaveServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// WeaveServiceDesc describes the Weave service for grpc.Server registration.
var WeaveServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WeaveServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Resolve", Handler: unaryHandler(MethodResolve, WeaveServer.Resolve)},
		{MethodName: "BatchResolve", Handler: unaryHandler(MethodBatchResolve, WeaveServer.BatchResolve)},
		{MethodName: "Match", Handler: unaryHandler(MethodMatch, WeaveServer.Match)},
		{MethodName: "MatchPaths", Handler: unaryHandler(MethodMatchPaths, WeaveServer.MatchPaths)},
		{MethodName: "Extract", Handler: unaryHandler(MethodExtract, WeaveServer.Extract)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "weavereplace/v1/weave.proto",
}

// RegisterWeaveServer registers srv with s.
func RegisterWeaveServer(s grpc.ServiceRegistrar, srv WeaveServer) {
	s.RegisterService(&WeaveServiceDesc, srv)
}

// WeaveClient calls the Weave service.
type WeaveClient struct {
	cc grpc.ClientConnInterface
}

// NewWeaveClient wraps a client connection.
func NewWeaveClient(cc grpc.ClientConnInterface) *WeaveClient {
	return &WeaveClient{cc: cc}
}

func (c *WeaveClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve calls Weave/Resolve.
func (c *WeaveClient) Resolve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodResolve, in, opts...)
}

// BatchResolve calls Weave/BatchResolve.
func (c *WeaveClient) BatchResolve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodBatchResolve, in, opts...)
}

// Match calls Weave/Match.
func (c *WeaveClient) Match(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodMatch, in, opts...)
}

// MatchPaths calls Weave/MatchPaths.
func (c *WeaveClient) MatchPaths(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodMatchPaths, in, opts...)
}

// Extract calls Weave/Extract.
func (c *WeaveClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodExtract, in, opts...)
}
