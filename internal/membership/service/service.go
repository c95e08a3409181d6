// Package service implements membership mutations and listings. Mutations re-check the caller's
// MANAGE_MEMBERS permission inside the unit of work that writes, and refuse any change that would
// leave the organization without a member holding ALL.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"budget-control-plane/internal/db"
	"budget-control-plane/internal/membership/domain"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	roledomain "budget-control-plane/internal/role/domain"
	"budget-control-plane/internal/store"
	"budget-control-plane/internal/telemetry"
	telemetrydomain "budget-control-plane/internal/telemetry/domain"
)

// Service manages memberships.
type Service struct {
	store   store.Store
	checker *rbac.Checker
	events  telemetry.EventEmitter
}

// NewService returns a membership service. events may be nil.
func NewService(s store.Store, checker *rbac.Checker, events telemetry.EventEmitter) *Service {
	return &Service{store: s, checker: checker, events: events}
}

// AddMember adds userID to orgID with roleID, or with the organization's default role when
// roleID is empty.
func (s *Service) AddMember(ctx context.Context, actorID, orgID, userID, roleID string) (*domain.Membership, error) {
	m := &domain.Membership{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		if err := s.checker.Authorize(ctx, r, actorID, orgID, permission.ManageMembers); err != nil {
			return err
		}
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Active() {
			return &rbac.ValidationError{Field: "user_id", Reason: "user does not exist or is disabled"}
		}
		existing, err := r.Memberships.GetMembershipByUserAndOrg(ctx, userID, orgID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &rbac.DuplicateMembershipError{UserID: userID, OrgID: orgID}
		}
		role, err := resolveRole(ctx, r, orgID, roleID)
		if err != nil {
			return err
		}
		m.RoleID = role.ID
		err = r.Memberships.CreateMembership(ctx, m)
		if errors.Is(err, db.ErrUniqueViolation) {
			return &rbac.DuplicateMembershipError{UserID: userID, OrgID: orgID}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeMemberAdded, m.ID)
	return m, nil
}

// ChangeMemberRole binds the membership to newRoleID. Demoting the last member holding ALL fails
// with *rbac.LastAdminError.
func (s *Service) ChangeMemberRole(ctx context.Context, actorID, orgID, membershipID, newRoleID string) (*domain.Membership, error) {
	var (
		out     *domain.Membership
		changed bool
	)
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		if err := s.checker.Authorize(ctx, r, actorID, orgID, permission.ManageMembers); err != nil {
			return err
		}
		m, err := load(ctx, r, orgID, membershipID)
		if err != nil {
			return err
		}
		role, err := resolveRole(ctx, r, orgID, newRoleID)
		if err != nil {
			return err
		}
		if m.RoleID == role.ID {
			out = m
			return nil
		}
		next := *m
		next.RoleID = role.ID
		if err := checkCoverage(ctx, r, orgID, m.ID, &next); err != nil {
			return err
		}
		if err := r.Memberships.UpdateRole(ctx, m.ID, role.ID); err != nil {
			return err
		}
		out, changed = &next, true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeMemberRoleChanged, out.ID)
	}
	return out, nil
}

// RemoveMember deletes the membership. Removing the last member holding ALL fails with
// *rbac.LastAdminError.
func (s *Service) RemoveMember(ctx context.Context, actorID, orgID, membershipID string) error {
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		if err := s.checker.Authorize(ctx, r, actorID, orgID, permission.ManageMembers); err != nil {
			return err
		}
		m, err := load(ctx, r, orgID, membershipID)
		if err != nil {
			return err
		}
		return remove(ctx, r, m)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeMemberRemoved, membershipID)
	return nil
}

// LeaveOrganization removes the caller's own membership. It needs no permission but is subject
// to the same last-admin guard as RemoveMember.
func (s *Service) LeaveOrganization(ctx context.Context, actorID, orgID string) error {
	var membershipID string
	err := s.store.Update(ctx, orgID, func(ctx context.Context, r store.Repos) error {
		m, err := r.Memberships.GetMembershipByUserAndOrg(ctx, actorID, orgID)
		if err != nil {
			return err
		}
		if m == nil {
			return &rbac.NotFoundError{Entity: "membership", ID: actorID + "@" + orgID}
		}
		membershipID = m.ID
		return remove(ctx, r, m)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, actorID, orgID, telemetrydomain.EventTypeMemberRemoved, membershipID)
	return nil
}

// ListMembers returns the memberships of orgID by join time ascending. The caller needs VIEW_MEMBERS.
func (s *Service) ListMembers(ctx context.Context, actorID, orgID string) ([]*domain.Membership, error) {
	if err := s.checker.RequirePermission(ctx, actorID, orgID, permission.ViewMembers); err != nil {
		return nil, err
	}
	var out []*domain.Membership
	err := s.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		var err error
		out, err = r.Memberships.ListMembershipsByOrg(ctx, orgID)
		return err
	})
	return out, err
}

// ListMyMemberships returns every membership of the caller across organizations.
func (s *Service) ListMyMemberships(ctx context.Context, actorID string) ([]*domain.Membership, error) {
	var out []*domain.Membership
	err := s.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		var err error
		out, err = r.Memberships.ListMembershipsByUser(ctx, actorID)
		return err
	})
	return out, err
}

func (s *Service) committed(ctx context.Context, actorID, orgID, eventType, membershipID string) {
	s.checker.Invalidate(ctx, orgID)
	telemetry.EmitAsync(s.events, &telemetrydomain.Event{
		OrgID:     orgID,
		UserID:    actorID,
		EventType: eventType,
		Source:    "membership_service",
		Subject:   membershipID,
	})
}

func remove(ctx context.Context, r store.Repos, m *domain.Membership) error {
	if err := checkCoverage(ctx, r, m.OrgID, m.ID, nil); err != nil {
		return err
	}
	return r.Memberships.Delete(ctx, m.ID)
}

// load returns the membership when it exists in orgID; otherwise *rbac.NotFoundError.
func load(ctx context.Context, r store.Repos, orgID, membershipID string) (*domain.Membership, error) {
	m, err := r.Memberships.GetMembershipByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.OrgID != orgID {
		return nil, &rbac.NotFoundError{Entity: "membership", ID: membershipID}
	}
	return m, nil
}

// resolveRole returns roleID, or the default role when roleID is empty, and checks it belongs to orgID.
func resolveRole(ctx context.Context, r store.Repos, orgID, roleID string) (*roledomain.Role, error) {
	if roleID == "" {
		role, err := r.Roles.GetDefault(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, &rbac.ValidationError{Field: "role_id", Reason: "no role given and the organization has no default role"}
		}
		return role, nil
	}
	role, err := r.Roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, &rbac.NotFoundError{Entity: "role", ID: roleID}
	}
	if role.OrgID != orgID {
		return nil, &rbac.CrossOrgRoleError{RoleID: role.ID, RoleOrgID: role.OrgID, OrgID: orgID}
	}
	return role, nil
}

// checkCoverage counts admin holders with membershipID replaced by next, or removed when next
// is nil, and fails when none would remain.
func checkCoverage(ctx context.Context, r store.Repos, orgID, membershipID string, next *domain.Membership) error {
	roles, err := r.Roles.ListByOrg(ctx, orgID)
	if err != nil {
		return err
	}
	memberships, err := r.Memberships.ListMembershipsByOrg(ctx, orgID)
	if err != nil {
		return err
	}
	before := rbac.AdminHolders(roles, memberships)
	after := make([]*domain.Membership, 0, len(memberships))
	for _, m := range memberships {
		switch {
		case m.ID != membershipID:
			after = append(after, m)
		case next != nil:
			after = append(after, next)
		}
	}
	if before > 0 && rbac.AdminHolders(roles, after) == 0 {
		return &rbac.LastAdminError{OrgID: orgID, MembershipID: membershipID}
	}
	return nil
}
