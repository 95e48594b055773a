// File: internal/profile/model.go
package profile

import (
	"time"

	"microtask_gateway/internal/common"
)

// Profile is the backend-owned user record the resolver caches. Role is kept
// as the raw backend string because the backend may answer with the "user"
// sentinel before any profile exists; view dispatch goes through
// DashboardRole for the closed variant.
type Profile struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Role        string    `json:"role"`
	CoinBalance int       `json:"coin_balance"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	// Stale marks a locally mutated coin balance that has not been confirmed
	// by the backend yet. Refetch clears it.
	Stale bool `json:"stale"`
}

// DashboardRole maps the raw role onto the closed variant used for view
// dispatch. The "user" sentinel and anything unrecognized become RoleUnknown.
func (p *Profile) DashboardRole() common.Role {
	return common.ParseRole(p.Role)
}

// DefaultCoins is the signup coin grant per role: workers start with 10,
// buyers with 50. Other roles start empty.
func DefaultCoins(role common.Role) int {
	switch role {
	case common.RoleWorker:
		return 10
	case common.RoleBuyer:
		return 50
	default:
		return 0
	}
}
