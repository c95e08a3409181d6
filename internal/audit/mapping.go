package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// Authorization-changing methods get past-tense actions so the log reads as a change history.
var methodOverrides = map[string]ActionResource{
	"/budget.organization.v1.OrganizationService/CreateOrganization": {"organization_created", "organization"},
	"/budget.role.v1.RoleService/CreateRole":                         {"role_created", "role"},
	"/budget.role.v1.RoleService/UpdateRole":                         {"role_updated", "role"},
	"/budget.role.v1.RoleService/DeleteRole":                         {"role_deleted", "role"},
	"/budget.role.v1.RoleService/GrantPermission":                    {"permission_granted", "role"},
	"/budget.role.v1.RoleService/RevokePermission":                   {"permission_revoked", "role"},
	"/budget.role.v1.RoleService/ToggleCategory":                     {"category_toggled", "role"},
	"/budget.membership.v1.MembershipService/AddMember":              {"member_added", "membership"},
	"/budget.membership.v1.MembershipService/ChangeMemberRole":       {"member_role_changed", "membership"},
	"/budget.membership.v1.MembershipService/RemoveMember":           {"member_removed", "membership"},
	"/budget.membership.v1.MembershipService/LeaveOrganization":      {"member_left", "membership"},
}

// ParseFullMethod returns action and resource for a gRPC full method
// (e.g. /budget.role.v1.RoleService/ListRoles -> list, role).
func ParseFullMethod(fullMethod string) ActionResource {
	if ar, ok := methodOverrides[fullMethod]; ok {
		return ar
	}
	// fullMethod format: /budget.package.v1.ServiceName/MethodName
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	beforeSlash := fullMethod[:slash]
	dot := strings.LastIndex(beforeSlash, ".")
	if dot < 0 {
		return ActionResource{Action: strings.ToLower(method), Resource: "unknown"}
	}
	return ActionResource{Action: methodToAction(method), Resource: serviceToResource(beforeSlash[dot+1:])}
}

func serviceToResource(serviceName string) string {
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[0:1]) + s[1:]
}

func methodToAction(method string) string {
	for _, verb := range []string{"Get", "List", "Check", "Create", "Update", "Delete"} {
		if strings.HasPrefix(method, verb) && method != verb {
			return strings.ToLower(verb)
		}
	}
	return strings.ToLower(method)
}
