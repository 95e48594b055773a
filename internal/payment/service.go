// File: internal/payment/service.go
package payment

import (
	"context"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
)

// Service implements the coin purchase workflow. The catalogue is fixed;
// prices never come from the browser.
type Service struct {
	client   *Client
	resolver *profile.Resolver
	logger   *zap.Logger
}

// NewService creates a payment service.
func NewService(client *Client, resolver *profile.Resolver, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		logger:   logger.Named("PaymentService"),
	}
}

// Catalogue returns the purchasable coin packages.
func (s *Service) Catalogue() []CoinPackage {
	return Packages
}

// History returns the buyer's settled purchases.
func (s *Service) History(ctx context.Context, sess *session.Session, email string) ([]Payment, error) {
	return s.client.History(ctx, sess, email)
}

// CreateIntent starts a purchase for a catalogue package. Coin counts
// outside the catalogue are rejected so the price cannot be forged.
func (s *Service) CreateIntent(ctx context.Context, sess *session.Session, req *IntentRequest) (*Intent, error) {
	pkg, ok := PackageForCoins(req.Coins)
	if !ok {
		return nil, common.ErrBadRequest.WithDetails("Unknown coin package.")
	}
	return s.client.CreateIntent(ctx, sess, pkg.Price)
}

// Confirm records a completed purchase and credits the resolver's local coin
// view so the buyer sees the new balance right away.
func (s *Service) Confirm(ctx context.Context, sess *session.Session, buyer *profile.Profile, req *ConfirmRequest) (*Payment, error) {
	pkg, ok := PackageForCoins(req.Coins)
	if !ok {
		return nil, common.ErrBadRequest.WithDetails("Unknown coin package.")
	}

	settled, err := s.client.Confirm(ctx, sess, &Payment{
		BuyerEmail:    buyer.Email,
		Coins:         pkg.Coins,
		Price:         pkg.Price,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return nil, err
	}

	balance, _ := s.resolver.AdjustCoins(buyer.Email, pkg.Coins)
	s.logger.Info("Coin purchase settled",
		zap.String("buyer_email", buyer.Email),
		zap.Int("coins", pkg.Coins),
		zap.Int("price", pkg.Price),
		zap.Int("local_balance", balance),
	)
	return settled, nil
}
