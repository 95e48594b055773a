// File: internal/submission/service.go
package submission

import (
	"context"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
	"microtask_gateway/internal/task"
)

// Service implements the submission workflow: workers submit proof of work,
// buyers approve or reject it.
type Service struct {
	client   *Client
	tasks    *task.Client
	resolver *profile.Resolver
	logger   *zap.Logger
}

// NewService creates a submission service.
func NewService(client *Client, tasks *task.Client, resolver *profile.Resolver, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		tasks:    tasks,
		resolver: resolver,
		logger:   logger.Named("SubmissionService"),
	}
}

// Create records a worker's submission for a task. Task and buyer details
// are denormalized into the record, and tasks with no open slots are
// rejected before the write.
func (s *Service) Create(ctx context.Context, sess *session.Session, worker *profile.Profile, req *CreateSubmissionRequest) (*Submission, error) {
	t, err := s.tasks.Get(ctx, sess, req.TaskID)
	if err != nil {
		return nil, err
	}
	if t.RequiredWorkers <= 0 {
		return nil, common.ErrConflict.WithDetails("This task has no open worker slots left.")
	}

	sub := &Submission{
		TaskID:            t.ID,
		TaskTitle:         t.TaskTitle,
		PayableAmount:     t.PayableAmount,
		WorkerEmail:       worker.Email,
		WorkerName:        worker.DisplayName,
		BuyerEmail:        t.BuyerEmail,
		BuyerName:         t.BuyerName,
		SubmissionDetails: req.SubmissionDetails,
		Status:            StatusPending,
	}

	created, err := s.client.Create(ctx, sess, sub)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Submission created",
		zap.String("submission_id", created.ID),
		zap.String("task_id", t.ID),
		zap.String("worker_email", worker.Email),
	)
	return created, nil
}

// ListMine returns a page of the worker's own submissions.
func (s *Service) ListMine(ctx context.Context, sess *session.Session, email string, page, pageSize int) ([]Submission, *common.Pagination, error) {
	submissions, total, err := s.client.ListByWorker(ctx, sess, email, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return submissions, common.NewPagination(total, page, pageSize), nil
}

// ListPending returns the submissions awaiting the buyer's review.
func (s *Service) ListPending(ctx context.Context, sess *session.Session, buyerEmail string) ([]Submission, error) {
	return s.client.ListPendingForBuyer(ctx, sess, buyerEmail)
}

// Approve marks a submission approved. The backend credits the worker and
// closes the task slot; the resolver's local view of the worker's balance is
// nudged so a worker on this gateway sees the payout without waiting for a
// refetch.
func (s *Service) Approve(ctx context.Context, sess *session.Session, buyerEmail, submissionID string) (*Submission, error) {
	updated, err := s.review(ctx, sess, buyerEmail, submissionID, StatusApproved)
	if err != nil {
		return nil, err
	}
	s.resolver.AdjustCoins(updated.WorkerEmail, updated.PayableAmount)
	return updated, nil
}

// Reject marks a submission rejected. The backend reopens the task slot.
func (s *Service) Reject(ctx context.Context, sess *session.Session, buyerEmail, submissionID string) (*Submission, error) {
	return s.review(ctx, sess, buyerEmail, submissionID, StatusRejected)
}

func (s *Service) review(ctx context.Context, sess *session.Session, buyerEmail, submissionID string, status Status) (*Submission, error) {
	updated, err := s.client.SetStatus(ctx, sess, submissionID, status)
	if err != nil {
		return nil, err
	}
	if updated.BuyerEmail != buyerEmail {
		// The backend enforces ownership too, so reaching here means the
		// gateway and backend disagree on who owns the task.
		s.logger.Error("Review outcome for a submission the buyer does not own",
			zap.String("submission_id", submissionID),
			zap.String("buyer_email", buyerEmail),
		)
	}
	s.logger.Info("Submission reviewed",
		zap.String("submission_id", submissionID),
		zap.String("status", string(status)),
		zap.String("buyer_email", buyerEmail),
	)
	return updated, nil
}
