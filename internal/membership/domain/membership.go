package domain

import (
	"time"
)

// Membership links a user to an organization through exactly one role of that organization.
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	RoleID    string
	CreatedAt time.Time
}
