package rbac

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts an error from the role, membership or organization services into a gRPC
// status error. Business-rule rejections keep their message; anything unrecognized is logged
// and returned as Internal with a generic message. Errors that already carry a status pass through.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrDuplicateMembership):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrPermanentRole),
		errors.Is(err, ErrRoleInUse),
		errors.Is(err, ErrLastAdmin),
		errors.Is(err, ErrCrossOrgRole):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		log.Printf("rbac: internal error: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}
