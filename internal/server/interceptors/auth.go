package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"budget-control-plane/internal/security"
)

const (
	bearerPrefix = "bearer "
	// OrgHeader selects the organization an RPC acts on.
	OrgHeader = "x-org-id"
)

// AuthUnary returns a unary server interceptor that validates the Bearer access token and puts
// the caller's user_id and the x-org-id organization into the context.
// publicMethods is the set of full method names that do not require a token (e.g. HealthCheck).
// A public method called with a valid token still gets the identity.
func AuthUnary(tokens *security.TokenProvider, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		public := publicMethods[info.FullMethod]
		token := extractBearer(ctx)
		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		userID, err := tokens.ValidateAccess(token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}
		return handler(WithIdentity(ctx, userID, metadataValue(ctx, OrgHeader)), req)
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	v := metadataValue(ctx, "authorization")
	if len(v) < len(bearerPrefix) || !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

// metadataValue returns the first trimmed value of key from incoming metadata, or "".
func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get(key)
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
