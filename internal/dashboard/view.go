// File: internal/dashboard/view.go
package dashboard

import (
	"microtask_gateway/internal/common"
)

// MenuItem is one navigation entry in a dashboard menu.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// View describes which dashboard the browser should render for a role.
type View struct {
	Name string     `json:"name"`
	Role string     `json:"role"`
	Menu []MenuItem `json:"menu"`
}

// ViewRoleNotFound is the explicit fallback for any role outside the closed
// set, including the "user" sentinel. Callers gate rendering on profile
// resolution first so this never flashes for a resolvable role.
var ViewRoleNotFound = View{Name: "role_not_found", Role: common.RoleUnknown.String()}

// ViewFor is the pure role -> view mapping. Exhaustive over the closed
// variant; everything else falls back to ViewRoleNotFound.
func ViewFor(role common.Role) View {
	switch role {
	case common.RoleWorker:
		return View{
			Name: "worker_home",
			Role: role.String(),
			Menu: []MenuItem{
				{Label: "Home", Path: "/dashboard/home"},
				{Label: "Task List", Path: "/dashboard/tasks"},
				{Label: "My Submissions", Path: "/dashboard/submissions"},
				{Label: "Withdrawals", Path: "/dashboard/withdrawals"},
			},
		}
	case common.RoleBuyer:
		return View{
			Name: "buyer_home",
			Role: role.String(),
			Menu: []MenuItem{
				{Label: "Home", Path: "/dashboard/home"},
				{Label: "Add New Task", Path: "/dashboard/tasks/new"},
				{Label: "My Tasks", Path: "/dashboard/my-tasks"},
				{Label: "Purchase Coins", Path: "/dashboard/purchase"},
				{Label: "Payment History", Path: "/dashboard/payments"},
			},
		}
	case common.RoleAdmin:
		return View{
			Name: "admin_home",
			Role: role.String(),
			Menu: []MenuItem{
				{Label: "Home", Path: "/dashboard/home"},
				{Label: "Manage Users", Path: "/dashboard/admin/users"},
				{Label: "Manage Tasks", Path: "/dashboard/admin/tasks"},
				{Label: "Withdrawal Requests", Path: "/dashboard/admin/withdrawals"},
			},
		}
	default:
		return ViewRoleNotFound
	}
}
