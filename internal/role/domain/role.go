package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"budget-control-plane/internal/permission"
)

const (
	maxNameLength        = 64
	maxDescriptionLength = 255
)

// Role is an organization-scoped named set of granted permissions.
type Role struct {
	ID          string
	OrgID       string
	Name        string
	Description string
	// IsDefault marks the role assigned to members added without an explicit role. At most one per org.
	IsDefault bool
	// Permanent roles are seeded at bootstrap; they cannot be deleted.
	Permanent   bool
	Permissions permission.Set
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdminEquivalent reports whether the role grants ALL.
func (r *Role) IsAdminEquivalent() bool {
	return r != nil && r.Permissions.Has(permission.All)
}

// Validate validates the role for persistence. Returns an error describing the first validation failure.
func (r *Role) Validate() error {
	if r.OrgID == "" {
		return errors.New("org_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLength {
		return errors.New("name must be at most 64 characters")
	}
	if utf8.RuneCountInString(r.Description) > maxDescriptionLength {
		return errors.New("description must be at most 255 characters")
	}
	if r.Permissions == nil {
		r.Permissions = permission.NewSet()
	}
	return r.Permissions.Validate()
}

// Clone returns a deep copy so callers can apply a patch without touching the stored value.
func (r *Role) Clone() *Role {
	if r == nil {
		return nil
	}
	c := *r
	c.Permissions = r.Permissions.Clone()
	return &c
}

// Patch is a partial role update. Nil fields are left unchanged; Permissions replaces the whole set.
type Patch struct {
	Name        *string
	Description *string
	Permissions *[]permission.Permission
	IsDefault   *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Permissions == nil && p.IsDefault == nil
}

// Apply returns a copy of r with the patch applied. r is not modified.
func (p Patch) Apply(r *Role) *Role {
	out := r.Clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		out.Description = strings.TrimSpace(*p.Description)
	}
	if p.Permissions != nil {
		out.Permissions = permission.NewSet(*p.Permissions...)
	}
	if p.IsDefault != nil {
		out.IsDefault = *p.IsDefault
	}
	return out
}
