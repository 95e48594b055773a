// File: internal/session/provider.go
package session

import (
	"go.uber.org/zap"

	"microtask_gateway/internal/config"
)

// NewStore builds the gateway's session store from configuration.
func NewStore(cfg *config.Config, logger *zap.Logger) Store {
	return NewMemoryStore(cfg.SessionTTL, logger)
}
