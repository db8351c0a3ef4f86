// Package fmedav1 describes the mirador.fmeda.v1.FMEDAEngine gRPC service. Requests and
// responses travel as google.protobuf.Struct documents whose fields mirror the JSON form
// of the domain models.
package fmedav1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mirador.fmeda.v1.FMEDAEngine"

// Full method names.
const (
	CalculateFITMethod       = "/" + ServiceName + "/CalculateFIT"
	CalculateComponentMethod = "/" + ServiceName + "/CalculateComponent"
	CalculateProjectMethod   = "/" + ServiceName + "/CalculateProject"
	HealthCheckMethod        = "/" + ServiceName + "/HealthCheck"
)

// FMEDAEngineServer is the server API for the FMEDAEngine service.
type FMEDAEngineServer interface {
	CalculateFIT(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateComponent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateProject(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HealthCheck(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedFMEDAEngineServer()
}

// UnimplementedFMEDAEngineServer must be embedded by implementations.
type UnimplementedFMEDAEngineServer struct{}

func (UnimplementedFMEDAEngineServer) CalculateFIT(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CalculateFIT not implemented")
}

func (UnimplementedFMEDAEngineServer) CalculateComponent(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CalculateComponent not implemented")
}

func (UnimplementedFMEDAEngineServer) CalculateProject(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CalculateProject not implemented")
}

func (UnimplementedFMEDAEngineServer) HealthCheck(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method HealthCheck not implemented")
}

func (UnimplementedFMEDAEngineServer) mustEmbedUnimplementedFMEDAEngineServer() {}

type unaryCall func(FMEDAEngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FMEDAEngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FMEDAEngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for the FMEDAEngine service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FMEDAEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CalculateFIT", Handler: unaryHandler(CalculateFITMethod, FMEDAEngineServer.CalculateFIT)},
		{MethodName: "CalculateComponent", Handler: unaryHandler(CalculateComponentMethod, FMEDAEngineServer.CalculateComponent)},
		{MethodName: "CalculateProject", Handler: unaryHandler(CalculateProjectMethod, FMEDAEngineServer.CalculateProject)},
		{MethodName: "HealthCheck", Handler: unaryHandler(HealthCheckMethod, FMEDAEngineServer.HealthCheck)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mirador/fmeda/v1/fmeda.proto",
}

// RegisterFMEDAEngineServer registers srv on s.
func RegisterFMEDAEngineServer(s grpc.ServiceRegistrar, srv FMEDAEngineServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FMEDAEngineClient is the client API for the FMEDAEngine service.
type FMEDAEngineClient interface {
	CalculateFIT(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CalculateComponent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CalculateProject(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	HealthCheck(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type fmedaEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewFMEDAEngineClient wraps a client connection.
func NewFMEDAEngineClient(cc grpc.ClientConnInterface) FMEDAEngineClient {
	return &fmedaEngineClient{cc: cc}
}

func (c *fmedaEngineClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fmedaEngineClient) CalculateFIT(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculateFITMethod, in, opts)
}

func (c *fmedaEngineClient) CalculateComponent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculateComponentMethod, in, opts)
}

func (c *fmedaEngineClient) CalculateProject(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculateProjectMethod, in, opts)
}

func (c *fmedaEngineClient) HealthCheck(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, HealthCheckMethod, in, opts)
}
