package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"budget-control-plane/internal/db"
	membershipdomain "budget-control-plane/internal/membership/domain"
	orgdomain "budget-control-plane/internal/organization/domain"
	roledomain "budget-control-plane/internal/role/domain"
	userdomain "budget-control-plane/internal/user/domain"
)

// ErrRoleReferenced mirrors the memberships.role_id ON DELETE RESTRICT constraint.
var ErrRoleReferenced = errors.New("store: role is referenced by memberships")

// Memory is an in-process Store used by tests and the dev server. It applies the same
// constraints as the Postgres schema. Writers are fully serialized and a failed Update
// restores the state it started from.
type Memory struct {
	mu sync.RWMutex
	st *state
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{st: newState()}
}

type state struct {
	orgs        map[string]orgdomain.Org
	users       map[string]userdomain.User
	roles       map[string]*roledomain.Role
	memberships map[string]membershipdomain.Membership
	// seq records insertion order; it breaks created_at ties in listings.
	seq     map[string]int64
	nextSeq int64
}

func newState() *state {
	return &state{
		orgs:        make(map[string]orgdomain.Org),
		users:       make(map[string]userdomain.User),
		roles:       make(map[string]*roledomain.Role),
		memberships: make(map[string]membershipdomain.Membership),
		seq:         make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.orgs {
		c.orgs[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = v.Clone()
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.nextSeq = s.nextSeq
	return c
}

func (s *state) stamp(id string) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

func (s *state) repos() Repos {
	return Repos{
		Roles:       memRoles{s},
		Memberships: memMemberships{s},
		Orgs:        memOrgs{s},
		Users:       memUsers{s},
	}
}

// View runs fn under a read lock.
func (m *Memory) View(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(ctx, m.st.repos())
}

// Update runs fn under the write lock and rolls the state back when fn fails.
func (m *Memory) Update(ctx context.Context, _ string, fn func(ctx context.Context, r Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := m.st.clone()
	if err := fn(ctx, m.st.repos()); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

type memRoles struct{ s *state }

func (r memRoles) GetByID(_ context.Context, id string) (*roledomain.Role, error) {
	return r.s.roles[id].Clone(), nil
}

func (r memRoles) GetByOrgAndName(_ context.Context, orgID, name string) (*roledomain.Role, error) {
	for _, role := range r.s.roles {
		if role.OrgID == orgID && role.Name == name {
			return role.Clone(), nil
		}
	}
	return nil, nil
}

func (r memRoles) GetDefault(_ context.Context, orgID string) (*roledomain.Role, error) {
	for _, role := range r.s.roles {
		if role.OrgID == orgID && role.IsDefault {
			return role.Clone(), nil
		}
	}
	return nil, nil
}

func (r memRoles) ListByOrg(_ context.Context, orgID string) ([]*roledomain.Role, error) {
	var out []*roledomain.Role
	for _, role := range r.s.roles {
		if role.OrgID == orgID {
			out = append(out, role.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.s.seq[out[i].ID] < r.s.seq[out[j].ID]
	})
	return out, nil
}

func (r memRoles) Create(_ context.Context, role *roledomain.Role) error {
	if _, ok := r.s.roles[role.ID]; ok {
		return fmt.Errorf("%w: roles_pkey", db.ErrUniqueViolation)
	}
	if err := r.checkUnique(role); err != nil {
		return err
	}
	r.s.roles[role.ID] = role.Clone()
	r.s.stamp(role.ID)
	return nil
}

func (r memRoles) Update(_ context.Context, role *roledomain.Role) error {
	if _, ok := r.s.roles[role.ID]; !ok {
		return nil
	}
	if err := r.checkUnique(role); err != nil {
		return err
	}
	r.s.roles[role.ID] = role.Clone()
	return nil
}

func (r memRoles) checkUnique(role *roledomain.Role) error {
	for id, other := range r.s.roles {
		if id == role.ID || other.OrgID != role.OrgID {
			continue
		}
		if other.Name == role.Name {
			return fmt.Errorf("%w: roles_org_id_name_key", db.ErrUniqueViolation)
		}
		if role.IsDefault && other.IsDefault {
			return fmt.Errorf("%w: roles_one_default_per_org", db.ErrUniqueViolation)
		}
	}
	return nil
}

func (r memRoles) Delete(_ context.Context, id string) error {
	for _, m := range r.s.memberships {
		if m.RoleID == id {
			return ErrRoleReferenced
		}
	}
	delete(r.s.roles, id)
	delete(r.s.seq, id)
	return nil
}

func (r memRoles) ClearDefault(_ context.Context, orgID string) error {
	for _, role := range r.s.roles {
		if role.OrgID == orgID {
			role.IsDefault = false
		}
	}
	return nil
}

type memMemberships struct{ s *state }

func (r memMemberships) GetMembershipByID(_ context.Context, id string) (*membershipdomain.Membership, error) {
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r memMemberships) GetMembershipByUserAndOrg(_ context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	for _, m := range r.s.memberships {
		if m.UserID == userID && m.OrgID == orgID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r memMemberships) ListMembershipsByOrg(_ context.Context, orgID string) ([]*membershipdomain.Membership, error) {
	return r.filter(func(m membershipdomain.Membership) bool { return m.OrgID == orgID }), nil
}

func (r memMemberships) ListMembershipsByUser(_ context.Context, userID string) ([]*membershipdomain.Membership, error) {
	return r.filter(func(m membershipdomain.Membership) bool { return m.UserID == userID }), nil
}

func (r memMemberships) filter(keep func(membershipdomain.Membership) bool) []*membershipdomain.Membership {
	var out []*membershipdomain.Membership
	for _, m := range r.s.memberships {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.s.seq[out[i].ID] < r.s.seq[out[j].ID]
	})
	return out
}

func (r memMemberships) CreateMembership(_ context.Context, m *membershipdomain.Membership) error {
	if _, ok := r.s.memberships[m.ID]; ok {
		return fmt.Errorf("%w: memberships_pkey", db.ErrUniqueViolation)
	}
	for _, other := range r.s.memberships {
		if other.UserID == m.UserID && other.OrgID == m.OrgID {
			return fmt.Errorf("%w: memberships_user_id_org_id_key", db.ErrUniqueViolation)
		}
	}
	if _, ok := r.s.roles[m.RoleID]; !ok {
		return fmt.Errorf("store: membership references unknown role %q", m.RoleID)
	}
	r.s.memberships[m.ID] = *m
	r.s.stamp(m.ID)
	return nil
}

func (r memMemberships) UpdateRole(_ context.Context, id, roleID string) error {
	m, ok := r.s.memberships[id]
	if !ok {
		return nil
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return fmt.Errorf("store: membership references unknown role %q", roleID)
	}
	m.RoleID = roleID
	r.s.memberships[id] = m
	return nil
}

func (r memMemberships) Delete(_ context.Context, id string) error {
	delete(r.s.memberships, id)
	delete(r.s.seq, id)
	return nil
}

func (r memMemberships) CountByRole(_ context.Context, roleID string) (int64, error) {
	var n int64
	for _, m := range r.s.memberships {
		if m.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

type memOrgs struct{ s *state }

func (r memOrgs) GetByID(_ context.Context, id string) (*orgdomain.Org, error) {
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r memOrgs) Create(_ context.Context, o *orgdomain.Org) error {
	if _, ok := r.s.orgs[o.ID]; ok {
		return fmt.Errorf("%w: organizations_pkey", db.ErrUniqueViolation)
	}
	r.s.orgs[o.ID] = *o
	return nil
}

// Lock is a no-op; Memory.Update already holds the write lock.
func (r memOrgs) Lock(context.Context, string) error { return nil }

type memUsers struct{ s *state }

func (r memUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) Create(_ context.Context, u *userdomain.User) error {
	if _, ok := r.s.users[u.ID]; ok {
		return fmt.Errorf("%w: users_pkey", db.ErrUniqueViolation)
	}
	for _, other := range r.s.users {
		if other.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", db.ErrUniqueViolation)
		}
	}
	r.s.users[u.ID] = *u
	return nil
}
