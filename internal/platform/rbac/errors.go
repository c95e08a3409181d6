package rbac

import (
	"errors"
	"fmt"

	"budget-control-plane/internal/permission"
)

// Sentinels for errors.Is. Every typed error below unwraps to one of them.
var (
	ErrValidation          = errors.New("validation failed")
	ErrPermanentRole       = errors.New("permanent role violation")
	ErrRoleInUse           = errors.New("role in use")
	ErrLastAdmin           = errors.New("last admin")
	ErrDuplicateMembership = errors.New("duplicate membership")
	ErrCrossOrgRole        = errors.New("role belongs to another organization")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
)

// ValidationError reports bad input: an unknown permission, a colliding name, a missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PermanentRoleViolation rejects deleting a seeded role or editing it so the organization
// would lose its last admin-equivalent role.
type PermanentRoleViolation struct {
	RoleID   string
	RoleName string
	Op       string
}

func (e *PermanentRoleViolation) Error() string {
	if e.Op == "delete" {
		return fmt.Sprintf("role %q is permanent and cannot be deleted", e.RoleName)
	}
	return fmt.Sprintf("role %q is permanent: %s would leave the organization without an admin", e.RoleName, e.Op)
}

func (e *PermanentRoleViolation) Unwrap() error { return ErrPermanentRole }

// RoleInUseError rejects deleting a role that memberships still reference.
type RoleInUseError struct {
	RoleID   string
	RoleName string
	Members  int64
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("role %q is assigned to %d member(s); reassign them first", e.RoleName, e.Members)
}

func (e *RoleInUseError) Unwrap() error { return ErrRoleInUse }

// LastAdminError rejects a change that would leave the organization with no member holding ALL.
type LastAdminError struct {
	OrgID        string
	MembershipID string
	RoleID       string
}

func (e *LastAdminError) Error() string {
	if e.MembershipID != "" {
		return fmt.Sprintf("membership %s is the last admin of organization %s", e.MembershipID, e.OrgID)
	}
	return fmt.Sprintf("role %s change would leave organization %s without an admin", e.RoleID, e.OrgID)
}

func (e *LastAdminError) Unwrap() error { return ErrLastAdmin }

// DuplicateMembershipError rejects a second membership for the same (user, organization).
type DuplicateMembershipError struct {
	UserID string
	OrgID  string
}

func (e *DuplicateMembershipError) Error() string {
	return fmt.Sprintf("user %s is already a member of organization %s", e.UserID, e.OrgID)
}

func (e *DuplicateMembershipError) Unwrap() error { return ErrDuplicateMembership }

// CrossOrgRoleError rejects binding a membership to a role owned by a different organization.
type CrossOrgRoleError struct {
	RoleID    string
	RoleOrgID string
	OrgID     string
}

func (e *CrossOrgRoleError) Error() string {
	return fmt.Sprintf("role %s belongs to organization %s, not %s", e.RoleID, e.RoleOrgID, e.OrgID)
}

func (e *CrossOrgRoleError) Unwrap() error { return ErrCrossOrgRole }

// ForbiddenError reports that the caller lacks a permission in the organization.
type ForbiddenError struct {
	UserID     string
	OrgID      string
	Permission permission.Permission
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("permission %s required in organization %s", e.Permission, e.OrgID)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NotFoundError reports a missing role, membership or organization.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
