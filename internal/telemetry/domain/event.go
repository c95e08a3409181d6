package domain

import (
	"encoding/json"
	"time"
)

// Event types for authorization changes. RPC telemetry uses EventTypeGRPCRequest.
const (
	EventTypeGRPCRequest         = "grpc_request"
	EventTypeOrganizationCreated = "organization_created"
	EventTypeRoleCreated         = "role_created"
	EventTypeRoleUpdated         = "role_updated"
	EventTypeRoleDeleted         = "role_deleted"
	EventTypeMemberAdded         = "member_added"
	EventTypeMemberRoleChanged   = "member_role_changed"
	EventTypeMemberRemoved       = "member_removed"
)

// Event is one telemetry or authorization-change record. Subject is the id of the role,
// membership or organization the event is about.
type Event struct {
	OrgID     string          `json:"org_id"`
	UserID    string          `json:"user_id,omitempty"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Subject   string          `json:"subject,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
