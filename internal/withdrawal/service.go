// File: internal/withdrawal/service.go
package withdrawal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
)

// Service implements the cash-out workflow.
type Service struct {
	client   *Client
	resolver *profile.Resolver
	logger   *zap.Logger
}

// NewService creates a withdrawal service.
func NewService(client *Client, resolver *profile.Resolver, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		logger:   logger.Named("WithdrawalService"),
	}
}

// Create records a worker's cash-out request. The coin count must clear the
// minimum and fit within the worker's balance; the dollar amount is derived
// here from the coin count.
func (s *Service) Create(ctx context.Context, sess *session.Session, worker *profile.Profile, req *CreateWithdrawalRequest) (*Withdrawal, error) {
	if worker.CoinBalance < MinWithdrawalCoins {
		return nil, common.ErrInsufficientCoins.WithDetails(
			fmt.Sprintf("You need at least %d coins to withdraw.", MinWithdrawalCoins))
	}
	if req.WithdrawalCoins > worker.CoinBalance {
		return nil, common.ErrInsufficientCoins.WithDetails(
			"You cannot withdraw more coins than you have.")
	}

	w := &Withdrawal{
		WorkerEmail:      worker.Email,
		WorkerName:       worker.DisplayName,
		WithdrawalCoins:  req.WithdrawalCoins,
		WithdrawalAmount: AmountForCoins(req.WithdrawalCoins),
		PaymentSystem:    req.PaymentSystem,
		AccountNumber:    req.AccountNumber,
		Status:           StatusPending,
	}

	created, err := s.client.Create(ctx, sess, w)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Withdrawal requested",
		zap.String("withdrawal_id", created.ID),
		zap.String("worker_email", worker.Email),
		zap.Int("coins", req.WithdrawalCoins),
		zap.Float64("amount", created.WithdrawalAmount),
	)
	return created, nil
}

// ListMine returns the worker's withdrawal history.
func (s *Service) ListMine(ctx context.Context, sess *session.Session, email string) ([]Withdrawal, error) {
	return s.client.ListByWorker(ctx, sess, email)
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context, sess *session.Session) ([]Withdrawal, error) {
	return s.client.ListPending(ctx, sess)
}

// Approve settles a withdrawal. The backend deducts the worker's coins; the
// resolver's local view follows so a signed-in worker sees the new balance
// without a refetch.
func (s *Service) Approve(ctx context.Context, sess *session.Session, id string) (*Withdrawal, error) {
	updated, err := s.client.Approve(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	s.resolver.AdjustCoins(updated.WorkerEmail, -updated.WithdrawalCoins)
	s.logger.Info("Withdrawal approved",
		zap.String("withdrawal_id", id),
		zap.String("worker_email", updated.WorkerEmail),
		zap.Int("coins", updated.WithdrawalCoins),
	)
	return updated, nil
}
