package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	s.logger.Info(ctx, "Registration request")

	email, password := credentialFields(req)
	token, err := s.accounts.Register(ctx, email, password)
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.String(token), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	email, password := credentialFields(req)
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	token, err := s.accounts.Login(ctx, email, password)
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.String(token), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	out, err := structpb.NewStruct(map[string]any{
		"userid": claims.UserID,
		"email":  claims.Email,
		"role":   claims.Role,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func credentialFields(req *structpb.Struct) (string, string) {
	fields := req.GetFields()
	return fields["email"].GetStringValue(), fields["password"].GetStringValue()
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
