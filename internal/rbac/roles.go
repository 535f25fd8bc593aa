package rbac

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleCandidate  Role = "candidate"
	RoleRecruiter  Role = "recruiter"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Permission names a single capability.
type Permission string

const (
	PermJobsWrite          Permission = "jobs:write"
	PermJobsImport         Permission = "jobs:import"
	PermAdminsManage       Permission = "admins:manage"
	PermPaymentsView       Permission = "payments:view"
	PermUsersView          Permission = "users:view"
	PermApplicationsReview Permission = "applications:review"
)

// PermissionSet is a capability collection supporting membership tests.
type PermissionSet map[Permission]struct{}

// Has reports whether the set contains the permission.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func newSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

var capabilities = map[Role]PermissionSet{
	RoleCandidate: newSet(),
	RoleRecruiter: newSet(PermJobsWrite, PermApplicationsReview),
	RoleAdmin: newSet(
		PermJobsWrite,
		PermJobsImport,
		PermApplicationsReview,
		PermUsersView,
		PermPaymentsView,
	),
	RoleSuperAdmin: newSet(
		PermJobsWrite,
		PermJobsImport,
		PermApplicationsReview,
		PermUsersView,
		PermPaymentsView,
		PermAdminsManage,
	),
}

// ParseRole maps a raw string to a Role, defaulting to candidate.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleRecruiter:
		return RoleRecruiter
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleCandidate
	}
}

// ValidRole reports whether raw names a known role exactly.
func ValidRole(raw string) bool {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCandidate, RoleRecruiter, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// Capabilities returns the permission set granted to a role.
func Capabilities(role Role) PermissionSet {
	if set, ok := capabilities[role]; ok {
		return set
	}
	return capabilities[RoleCandidate]
}

// Allowed reports whether the role grants the permission.
func Allowed(role Role, p Permission) bool {
	return Capabilities(role).Has(p)
}
