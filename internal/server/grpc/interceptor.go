package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/strategy"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// protectedMethods need an admitted bearer token.
var protectedMethods = map[string]bool{
	MethodWhoAmI: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AuthorizationHeaderName)
		if len(values) > 0 {
			accessToken = stripScheme(values[0])
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	out, claims := s.gate.Authorize(ctx, accessToken)
	switch out.Kind {
	case strategy.Authenticated:
		ctx = context.WithValue(ctx, claimsKey, claims)
		return handler(ctx, req)
	case strategy.Rejected:
		if out.Reason == strategy.ReasonBanned {
			return nil, status.Error(codes.PermissionDenied, "account is banned")
		}
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	default:
		if common.IsTokenError(out.Err) {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		s.logger.Error(ctx, "authorize", "method", info.FullMethod, "error", out.Err)
		return nil, status.Error(codes.Internal, "internal error")
	}
}

func stripScheme(v string) string {
	v = strings.TrimSpace(v)
	if scheme, token, found := strings.Cut(v, " "); found && strings.EqualFold(scheme, common.BearerScheme) {
		return strings.TrimSpace(token)
	}
	return v
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}
