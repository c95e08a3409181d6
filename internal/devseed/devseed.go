// Package devseed loads the local development data set: organization acme founded by alice, with
// bob as a Member and carol as a user outside every organization.
package devseed

import (
	"context"
	"fmt"
	"time"

	membershipservice "budget-control-plane/internal/membership/service"
	orgservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/store"
	userdomain "budget-control-plane/internal/user/domain"
)

// Development user ids. Tokens minted for these ids authenticate against a seeded store.
const (
	AliceID = "dev-alice"
	BobID   = "dev-bob"
	CarolID = "dev-carol"
	OrgName = "acme"
)

var users = []userdomain.User{
	{ID: AliceID, Email: "alice@example.com", Name: "Alice"},
	{ID: BobID, Email: "bob@example.com", Name: "Bob"},
	{ID: CarolID, Email: "carol@example.com", Name: "Carol"},
}

// Result reports the seeded organization. Created is false when alice already belonged to an
// organization and nothing was written.
type Result struct {
	OrgID   string
	Created bool
}

// Seed creates the development users that are missing and, unless alice already has a membership,
// bootstraps acme through orgs and adds bob as a Member. Running it twice changes nothing.
func Seed(ctx context.Context, st store.Store, orgs *orgservice.Service, members *membershipservice.Service) (*Result, error) {
	if err := ensureUsers(ctx, st); err != nil {
		return nil, err
	}

	mine, err := members.ListMyMemberships(ctx, AliceID)
	if err != nil {
		return nil, fmt.Errorf("devseed: list memberships: %w", err)
	}
	if len(mine) > 0 {
		return &Result{OrgID: mine[0].OrgID}, nil
	}

	res, err := orgs.CreateOrganization(ctx, AliceID, OrgName)
	if err != nil {
		return nil, fmt.Errorf("devseed: create organization: %w", err)
	}
	if _, err := members.AddMember(ctx, AliceID, res.Org.ID, BobID, res.Role(orgservice.RoleMember).ID); err != nil {
		return nil, fmt.Errorf("devseed: add bob: %w", err)
	}
	return &Result{OrgID: res.Org.ID, Created: true}, nil
}

func ensureUsers(ctx context.Context, st store.Store) error {
	now := time.Now().UTC()
	return st.Update(ctx, "", func(ctx context.Context, r store.Repos) error {
		for _, u := range users {
			existing, err := r.Users.GetByID(ctx, u.ID)
			if err != nil {
				return fmt.Errorf("devseed: get user %s: %w", u.ID, err)
			}
			if existing != nil {
				continue
			}
			u.Status = userdomain.UserStatusActive
			u.CreatedAt, u.UpdatedAt = now, now
			if err := r.Users.Create(ctx, &u); err != nil {
				return fmt.Errorf("devseed: create user %s: %w", u.ID, err)
			}
		}
		return nil
	})
}
