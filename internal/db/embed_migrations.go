package db

import "embed"

// MigrationFS holds the schema for organizations, users, roles, role_permissions,
// memberships and audit_logs. Applied by internal/db/migrate (cmd/migrate).
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
