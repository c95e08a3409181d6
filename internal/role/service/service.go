// Package service implements the role mutation and read API. Every mutation runs in one store
// unit of work that first re-checks the caller's MANAGE_ROLES permission.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget-control-plane/internal/db"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/role/domain"
	"budget-control-plane/internal/store"
	"budget-control-plane/internal/telemetry"
	telemetrydomain "budget-control-plane/internal/telemetry/domain"
)

const eventSource = "role_service"

// CreateInput holds the fields of a new role.
type CreateInput struct {
	Name        string
	Description string
	Permissions []permission.Permission
	IsDefault   bool
}

// Service manages the roles of an organization.
type Service struct {
	store   store.Store
	checker *rbac.Checker
	events  telemetry.EventEmitter
}

// NewService returns a role service. events may be nil.
func NewService(s store.Store, checker *rbac.Checker, events telemetry.EventEmitter) *Service {
	return &Service{store: s, checker: checker, events: events}
}

// CreateRole creates a non-permanent role in orgID. Setting IsDefault moves the default flag
// from the previous default role.
func (s *Service) CreateRole(ctx context.Context, actorID, orgID string, in CreateInput) (*domain.Role, error) {
	now := time.Now().UTC()
	role := &domain.Role{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		IsDefault:   in.IsDefault,
		Permissions: permission.NewSet(in.Permissions...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		if err := s.checker.Authorize(ctx, r, actorID, orgID, permission.ManageRoles); err != nil {
			return err
		}
		if err := validate(ctx, r, role); err != nil {
			return err
		}
		if role.IsDefault {
			if err := r.Roles.ClearDefault(ctx, orgID); err != nil {
				return err
			}
		}
		return mapUnique(r.Roles.Create(ctx, role), role)
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeRoleCreated, role.ID)
	return role, nil
}

// UpdateRole applies patch to the role. A change that would leave the organization without a
// member holding ALL is rejected.
func (s *Service) UpdateRole(ctx context.Context, actorID, orgID, roleID string, patch domain.Patch) (*domain.Role, error) {
	return s.mutate(ctx, actorID, orgID, roleID, "update", func(role *domain.Role) (*domain.Role, error) {
		return patch.Apply(role), nil
	})
}

// GrantPermission adds p to the role. Granting a held permission changes nothing.
func (s *Service) GrantPermission(ctx context.Context, actorID, orgID, roleID string, p permission.Permission) (*domain.Role, error) {
	if !p.Valid() {
		return nil, unknownPermission(p)
	}
	return s.mutate(ctx, actorID, orgID, roleID, "grant", func(role *domain.Role) (*domain.Role, error) {
		next := role.Clone()
		next.Permissions.Add(p)
		return next, nil
	})
}

// RevokePermission removes p from the role. Revoking an absent permission changes nothing.
func (s *Service) RevokePermission(ctx context.Context, actorID, orgID, roleID string, p permission.Permission) (*domain.Role, error) {
	if !p.Valid() {
		return nil, unknownPermission(p)
	}
	return s.mutate(ctx, actorID, orgID, roleID, "revoke", func(role *domain.Role) (*domain.Role, error) {
		next := role.Clone()
		next.Permissions.Remove(p)
		return next, nil
	})
}

// ToggleCategory grants or revokes every permission of category c in one write.
func (s *Service) ToggleCategory(ctx context.Context, actorID, orgID, roleID string, c permission.Category, granted bool) (*domain.Role, error) {
	if _, err := permission.ParseCategory(string(c)); err != nil {
		return nil, &rbac.ValidationError{Field: "category", Reason: err.Error()}
	}
	return s.mutate(ctx, actorID, orgID, roleID, "toggle category", func(role *domain.Role) (*domain.Role, error) {
		next := role.Clone()
		for _, p := range permission.InCategory(c) {
			if granted {
				next.Permissions.Add(p)
			} else {
				next.Permissions.Remove(p)
			}
		}
		return next, nil
	})
}

// DeleteRole deletes a role no membership references. Permanent roles are never deleted.
func (s *Service) DeleteRole(ctx context.Context, actorID, orgID, roleID string) error {
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		if err := s.checker.Authorize(ctx, r, actorID, orgID, permission.ManageRoles); err != nil {
			return err
		}
		role, err := load(ctx, r, orgID, roleID)
		if err != nil {
			return err
		}
		if role.Permanent {
			return &rbac.PermanentRoleViolation{RoleID: role.ID, RoleName: role.Name, Op: "delete"}
		}
		n, err := r.Memberships.CountByRole(ctx, role.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &rbac.RoleInUseError{RoleID: role.ID, RoleName: role.Name, Members: n}
		}
		return r.Roles.Delete(ctx, role.ID)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeRoleDeleted, roleID)
	return nil
}

// GetRole returns one role of orgID. The caller needs VIEW_MEMBERS.
func (s *Service) GetRole(ctx context.Context, actorID, orgID, roleID string) (*domain.Role, error) {
	if err := s.checker.RequirePermission(ctx, actorID, orgID, permission.ViewMembers); err != nil {
		return nil, err
	}
	var role *domain.Role
	err := s.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		var err error
		role, err = load(ctx, r, orgID, roleID)
		return err
	})
	return role, err
}

// ListRoles returns the roles of orgID by creation time. The caller needs VIEW_MEMBERS.
func (s *Service) ListRoles(ctx context.Context, actorID, orgID string) ([]*domain.Role, error) {
	if err := s.checker.RequirePermission(ctx, actorID, orgID, permission.ViewMembers); err != nil {
		return nil, err
	}
	var roles []*domain.Role
	err := s.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		var err error
		roles, err = r.Roles.ListByOrg(ctx, orgID)
		return err
	})
	return roles, err
}

// mutate loads the role under the organization lock, applies change and persists the result
// after validation and the admin coverage check. A change that alters nothing is not written.
func (s *Service) mutate(ctx context.Context, actorID, orgID, roleID, op string, change func(*domain.Role) (*domain.Role, error)) (*domain.Role, error) {
	var (
		out     *domain.Role
		changed bool
	)
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		if err := s.checker.Authorize(ctx, r, actorID, orgID, permission.ManageRoles); err != nil {
			return err
		}
		current, err := load(ctx, r, orgID, roleID)
		if err != nil {
			return err
		}
		next, err := change(current)
		if err != nil {
			return err
		}
		if sameRole(current, next) {
			out = current
			return nil
		}
		if err := validate(ctx, r, next); err != nil {
			return err
		}
		if err := checkCoverage(ctx, r, current, next, op); err != nil {
			return err
		}
		if next.IsDefault && !current.IsDefault {
			if err := r.Roles.ClearDefault(ctx, orgID); err != nil {
				return err
			}
		}
		next.UpdatedAt = time.Now().UTC()
		if err := mapUnique(r.Roles.Update(ctx, next), next); err != nil {
			return err
		}
		out, changed = next, true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeRoleUpdated, out.ID)
	}
	return out, nil
}

func (s *Service) committed(ctx context.Context, actorID, orgID, eventType, roleID string) {
	s.checker.Invalidate(ctx, orgID)
	telemetry.EmitAsync(s.events, &telemetrydomain.Event{
		OrgID:     orgID,
		UserID:    actorID,
		EventType: eventType,
		Source:    eventSource,
		Subject:   roleID,
	})
}

// load returns the role when it exists and belongs to orgID; otherwise *rbac.NotFoundError.
func load(ctx context.Context, r store.Repos, orgID, roleID string) (*domain.Role, error) {
	role, err := r.Roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil || role.OrgID != orgID {
		return nil, &rbac.NotFoundError{Entity: "role", ID: roleID}
	}
	return role, nil
}

// validate checks field rules, the catalog and case-sensitive name uniqueness within the org.
func validate(ctx context.Context, r store.Repos, role *domain.Role) error {
	if err := role.Validate(); err != nil {
		var unknown *permission.UnknownPermissionError
		if errors.As(err, &unknown) {
			return &rbac.ValidationError{Field: "permissions", Reason: err.Error()}
		}
		return &rbac.ValidationError{Field: "role", Reason: err.Error()}
	}
	other, err := r.Roles.GetByOrgAndName(ctx, role.OrgID, role.Name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != role.ID {
		return duplicateName(role.Name)
	}
	return nil
}

// checkCoverage rejects next when it takes ALL away from the last role any member reaches it through.
func checkCoverage(ctx context.Context, r store.Repos, current, next *domain.Role, op string) error {
	if !current.IsAdminEquivalent() || next.IsAdminEquivalent() {
		return nil
	}
	roles, err := r.Roles.ListByOrg(ctx, current.OrgID)
	if err != nil {
		return err
	}
	for i, role := range roles {
		if role.ID == next.ID {
			roles[i] = next
		}
	}
	memberships, err := r.Memberships.ListMembershipsByOrg(ctx, current.OrgID)
	if err != nil {
		return err
	}
	if rbac.AdminHolders(roles, memberships) > 0 {
		return nil
	}
	if current.Permanent {
		return &rbac.PermanentRoleViolation{RoleID: current.ID, RoleName: current.Name, Op: op}
	}
	return &rbac.LastAdminError{OrgID: current.OrgID, RoleID: current.ID}
}

func sameRole(a, b *domain.Role) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.IsDefault == b.IsDefault &&
		a.Permissions.Equal(b.Permissions)
}

// mapUnique turns a unique-constraint violation into the validation error the checks above return.
func mapUnique(err error, role *domain.Role) error {
	if !errors.Is(err, db.ErrUniqueViolation) {
		return err
	}
	if strings.Contains(err.Error(), "roles_one_default_per_org") {
		return &rbac.ValidationError{Field: "is_default", Reason: "organization already has a default role"}
	}
	return duplicateName(role.Name)
}

func duplicateName(name string) error {
	return &rbac.ValidationError{Field: "name", Reason: fmt.Sprintf("a role named %q already exists", name)}
}

func unknownPermission(p permission.Permission) error {
	return &rbac.ValidationError{Field: "permission", Reason: (&permission.UnknownPermissionError{Value: string(p)}).Error()}
}
