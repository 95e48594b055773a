// File: internal/task/service.go
package task

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
)

// Service implements task lifecycle operations on top of the marketplace
// API, keeping the resolver's coin view in step with what the backend will
// charge or refund.
type Service struct {
	client   *Client
	resolver *profile.Resolver
	logger   *zap.Logger
}

// NewService creates a task service.
func NewService(client *Client, resolver *profile.Resolver, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		logger:   logger.Named("TaskService"),
	}
}

// Create posts a new task for the buyer. The total cost is payable amount
// times required workers; a balance short of that is rejected before the
// request leaves the gateway, pointing the buyer at coin purchase.
func (s *Service) Create(ctx context.Context, sess *session.Session, buyer *profile.Profile, req *CreateTaskRequest) (*Task, error) {
	t := &Task{
		TaskTitle:       req.TaskTitle,
		TaskDetail:      req.TaskDetail,
		RequiredWorkers: req.RequiredWorkers,
		PayableAmount:   req.PayableAmount,
		CompletionDate:  req.CompletionDate,
		SubmissionInfo:  req.SubmissionInfo,
		TaskImageURL:    req.TaskImageURL,
		BuyerEmail:      buyer.Email,
		BuyerName:       buyer.DisplayName,
	}

	cost := t.TotalCost()
	if buyer.CoinBalance < cost {
		return nil, common.ErrInsufficientCoins.WithDetails(
			"Purchase more coins to cover this task.").WithRedirect("/dashboard/purchase")
	}

	created, err := s.client.Create(ctx, sess, t)
	if err != nil {
		return nil, err
	}

	balance, _ := s.resolver.AdjustCoins(buyer.Email, -cost)
	s.logger.Info("Task created",
		zap.String("task_id", created.ID),
		zap.String("buyer_email", buyer.Email),
		zap.Int("cost", cost),
		zap.Int("local_balance", balance),
	)
	return created, nil
}

// ListAvailable returns tasks that still need workers, optionally ordered by
// payable amount. The backend list is unfiltered, so both happen here.
func (s *Service) ListAvailable(ctx context.Context, sess *session.Session, order SortOrder) ([]Task, error) {
	tasks, err := s.client.ListAvailable(ctx, sess)
	if err != nil {
		return nil, err
	}

	available := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.RequiredWorkers > 0 {
			available = append(available, t)
		}
	}

	switch order {
	case SortCoinsAsc:
		sort.SliceStable(available, func(i, j int) bool {
			return available[i].PayableAmount < available[j].PayableAmount
		})
	case SortCoinsDesc:
		sort.SliceStable(available, func(i, j int) bool {
			return available[i].PayableAmount > available[j].PayableAmount
		})
	}
	return available, nil
}

// ListMine returns the buyer's own tasks, newest first.
func (s *Service) ListMine(ctx context.Context, sess *session.Session, email string) ([]Task, error) {
	tasks, err := s.client.ListByBuyer(ctx, sess, email)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Get returns a single task.
func (s *Service) Get(ctx context.Context, sess *session.Session, id string) (*Task, error) {
	return s.client.Get(ctx, sess, id)
}

// Update edits the title, detail and submission instructions of a buyer's
// task. Ownership is enforced here because the backend trusts the gateway.
func (s *Service) Update(ctx context.Context, sess *session.Session, buyerEmail, id string, req *UpdateTaskRequest) (*Task, error) {
	existing, err := s.client.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if existing.BuyerEmail != buyerEmail {
		return nil, common.ErrForbidden.WithDetails("You can only edit your own tasks.")
	}
	return s.client.Update(ctx, sess, id, req)
}

// Delete removes a buyer's task and credits back the coins still escrowed
// for its unfilled slots.
func (s *Service) Delete(ctx context.Context, sess *session.Session, buyerEmail, id string) (int, error) {
	existing, err := s.client.Get(ctx, sess, id)
	if err != nil {
		return 0, err
	}
	if existing.BuyerEmail != buyerEmail {
		return 0, common.ErrForbidden.WithDetails("You can only delete your own tasks.")
	}

	if err := s.client.Delete(ctx, sess, id); err != nil {
		return 0, err
	}

	refund := existing.PayableAmount * existing.RequiredWorkers
	if refund > 0 {
		s.resolver.AdjustCoins(buyerEmail, refund)
	}
	s.logger.Info("Task deleted",
		zap.String("task_id", id),
		zap.String("buyer_email", buyerEmail),
		zap.Int("refund", refund),
	)
	return refund, nil
}
