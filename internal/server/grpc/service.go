package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophauth.AuthService"

const (
	MethodRegister = "/" + ServiceName + "/Register"
	MethodLogin    = "/" + ServiceName + "/Login"
	MethodWhoAmI   = "/" + ServiceName + "/WhoAmI"
)

// AuthServiceServer is served under ServiceName. Requests and responses
// are well-known protobuf types so no generated code is needed:
// Register and Login take {"email","password"} and return the token,
// WhoAmI returns the caller's claims.
type AuthServiceServer interface {
	Register(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
	Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
	WhoAmI(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// AuthServiceDesc describes AuthServiceServer to grpc.Server.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler: unary(MethodRegister, func(s AuthServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Register(ctx, in)
			}),
		},
		{
			MethodName: "Login",
			Handler: unary(MethodLogin, func(s AuthServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Login(ctx, in)
			}),
		},
		{
			MethodName: "WhoAmI",
			Handler: unary(MethodWhoAmI, func(s AuthServiceServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.WhoAmI(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func unary[Req any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
