// Package forge exposes the forge engine over gRPC.
//
// Messages travel as google.protobuf.Struct so the relay stays a thin JSON
// transport over the app service types.
package forge

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "forge.v1.ForgeService"

const (
	methodGenerateLoot    = "GenerateLoot"
	methodGenerateStock   = "GenerateStock"
	methodGetGeneration   = "GetGeneration"
	methodListGenerations = "ListGenerations"
)

// ForgeServiceServer is the server API for the forge relay.
type ForgeServiceServer interface {
	GenerateLoot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGeneration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGenerations(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the forge relay for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ForgeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodGenerateLoot, Handler: unaryHandler(methodGenerateLoot, ForgeServiceServer.GenerateLoot)},
		{MethodName: methodGenerateStock, Handler: unaryHandler(methodGenerateStock, ForgeServiceServer.GenerateStock)},
		{MethodName: methodGetGeneration, Handler: unaryHandler(methodGetGeneration, ForgeServiceServer.GetGeneration)},
		{MethodName: methodListGenerations, Handler: unaryHandler(methodListGenerations, ForgeServiceServer.ListGenerations)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "forge/v1/forge.proto",
}

// RegisterForgeServiceServer registers srv on s.
func RegisterForgeServiceServer(s grpc.ServiceRegistrar, srv ForgeServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryMethod func(ForgeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ForgeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ForgeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
