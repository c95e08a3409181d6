package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Org is a tenant. It exclusively owns its roles and memberships.
type Org struct {
	ID        string
	Name      string
	FounderID string
	Status    OrgStatus
	CreatedAt time.Time
}

type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusSuspended OrgStatus = "suspended"
)

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(o.Name) > 128 {
		return errors.New("name must be at most 128 characters")
	}
	if o.FounderID == "" {
		return errors.New("founder is required")
	}
	if o.Status == "" {
		o.Status = OrgStatusActive
	}
	return nil
}
