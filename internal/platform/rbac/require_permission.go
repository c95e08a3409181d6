package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/server/interceptors"
)

// PermissionChecker answers a single permission check. *Checker implements it.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, orgID string, p permission.Permission) (bool, error)
}

// RequireCaller returns the authenticated user and the organization selected for the call.
// Returns Unauthenticated without a user and InvalidArgument without an organization.
func RequireCaller(ctx context.Context) (orgID, userID string, err error) {
	userID, okUser := interceptors.GetUserID(ctx)
	if !okUser || userID == "" {
		return "", "", status.Error(codes.Unauthenticated, "user context required")
	}
	orgID, okOrg := interceptors.GetOrgID(ctx)
	if !okOrg || orgID == "" {
		return "", "", status.Error(codes.InvalidArgument, "organization required (x-org-id metadata)")
	}
	return orgID, userID, nil
}

// RequirePermission ensures the caller holds p in the context organization.
// Returns (orgID, userID, nil) on success; returns a gRPC error (Unauthenticated, InvalidArgument,
// PermissionDenied or Internal) on failure.
func RequirePermission(ctx context.Context, checker PermissionChecker, p permission.Permission) (orgID, userID string, err error) {
	orgID, userID, err = RequireCaller(ctx)
	if err != nil {
		return "", "", err
	}
	ok, err := checker.HasPermission(ctx, userID, orgID, p)
	if err != nil {
		return "", "", ToStatus(err)
	}
	if !ok {
		return "", "", ToStatus(&ForbiddenError{UserID: userID, OrgID: orgID, Permission: p})
	}
	return orgID, userID, nil
}
