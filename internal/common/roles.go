// File: internal/common/roles.go
package common

// Role is the closed set of marketplace roles. Anything the backend returns
// outside this set (including the "user" sentinel handed out before a profile
// exists) parses to RoleUnknown, which renders no dashboard menu.
type Role string

const (
	RoleWorker  Role = "worker"
	RoleBuyer   Role = "buyer"
	RoleAdmin   Role = "admin"
	RoleUnknown Role = "unknown"

	// RoleSentinelUser is what the resolver reports when the backend holds no
	// profile record yet. It is not a member of the closed set.
	RoleSentinelUser = "user"
)

// ParseRole maps a backend role string onto the closed variant.
func ParseRole(s string) Role {
	switch s {
	case string(RoleWorker):
		return RoleWorker
	case string(RoleBuyer):
		return RoleBuyer
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	return string(r)
}

// Known reports whether the role is one of the three dashboard roles.
func (r Role) Known() bool {
	return r == RoleWorker || r == RoleBuyer || r == RoleAdmin
}
