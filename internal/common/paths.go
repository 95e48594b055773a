// File: internal/common/paths.go
package common

// Browser-side view paths the guard redirects to.
const (
	LoginPath     = "/login"
	ForbiddenPath = "/forbidden"
)
