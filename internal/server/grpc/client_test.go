package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// testClient calls AuthService over an existing connection.
type testClient struct {
	cc grpc.ClientConnInterface
}

func newTestClient(cc grpc.ClientConnInterface) *testClient {
	return &testClient{cc: cc}
}

func (c *testClient) Register(ctx context.Context, email, password string) (string, error) {
	return c.credentials(ctx, MethodRegister, email, password)
}

func (c *testClient) Login(ctx context.Context, email, password string) (string, error) {
	return c.credentials(ctx, MethodLogin, email, password)
}

// WhoAmI returns the claims of the token sent as bearer credentials.
func (c *testClient) WhoAmI(ctx context.Context, token string) (map[string]any, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodWhoAmI, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *testClient) credentials(ctx context.Context, method, email, password string) (string, error) {
	in, err := structpb.NewStruct(map[string]any{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
