// Package service creates organizations together with their seed roles and founder membership.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	orgdomain "budget-control-plane/internal/organization/domain"
	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/store"
	"budget-control-plane/internal/telemetry"
	telemetrydomain "budget-control-plane/internal/telemetry/domain"
)

// Service is the organization API.
type Service struct {
	store        store.Store
	checker      *rbac.Checker
	bootstrapper Bootstrapper
	events       telemetry.EventEmitter
}

// NewService returns an organization service. events may be nil.
func NewService(s store.Store, checker *rbac.Checker, events telemetry.EventEmitter) *Service {
	return &Service{store: s, checker: checker, events: events}
}

// CreateOrganization creates an organization founded by founderID and bootstraps it in the same
// unit of work: the organization, its four roles and the founder membership commit together.
func (s *Service) CreateOrganization(ctx context.Context, founderID, name string) (*Result, error) {
	org := &orgdomain.Org{
		ID:        uuid.New().String(),
		Name:      name,
		FounderID: founderID,
		Status:    orgdomain.OrgStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := org.Validate(); err != nil {
		return nil, &rbac.ValidationError{Field: "organization", Reason: err.Error()}
	}
	var res *Result
	err := s.store.Update(ctx, org.ID, func(ctx context.Context, r store.Repos) error {
		if err := r.Orgs.Create(ctx, org); err != nil {
			return err
		}
		var err error
		res, err = s.bootstrapper.Bootstrap(ctx, r, org)
		return err
	})
	if err != nil {
		return nil, err
	}
	telemetry.EmitAsync(s.events, &telemetrydomain.Event{
		OrgID:     org.ID,
		UserID:    founderID,
		EventType: telemetrydomain.EventTypeOrganizationCreated,
		Source:    "organization_service",
		Subject:   org.ID,
	})
	return res, nil
}

// GetOrganization returns orgID to a member holding VIEW_DASHBOARD.
func (s *Service) GetOrganization(ctx context.Context, actorID, orgID string) (*orgdomain.Org, error) {
	if err := s.checker.RequirePermission(ctx, actorID, orgID, permission.ViewDashboard); err != nil {
		return nil, err
	}
	var org *orgdomain.Org
	err := s.store.View(ctx, func(ctx context.Context, r store.Repos) error {
		var err error
		org, err = r.Orgs.GetByID(ctx, orgID)
		if err == nil && org == nil {
			err = &rbac.NotFoundError{Entity: "organization", ID: orgID}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}
