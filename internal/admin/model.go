// File: internal/admin/model.go
package admin

// Stats is the admin home summary.
type Stats struct {
	TotalWorkers        int     `json:"total_workers"`
	TotalBuyers         int     `json:"total_buyers"`
	TotalCoins          int     `json:"total_coins"`
	TotalPaymentsAmount float64 `json:"total_payments_amount"`
}

// ManagedUser is a row in the admin user table.
type ManagedUser struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Role        string `json:"role"`
	CoinBalance int    `json:"coin_balance"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=worker buyer admin"`
}
