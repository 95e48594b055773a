// File: internal/admin/service.go
package admin

import (
	"context"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
	"microtask_gateway/internal/task"
)

// Service implements platform moderation. Role changes and deletions
// invalidate the resolver's cache so the affected user's next request sees
// the new state.
type Service struct {
	client   *Client
	resolver *profile.Resolver
	logger   *zap.Logger
}

// NewService creates an admin service.
func NewService(client *Client, resolver *profile.Resolver, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		resolver: resolver,
		logger:   logger.Named("AdminService"),
	}
}

// Stats returns the platform summary.
func (s *Service) Stats(ctx context.Context, sess *session.Session) (*Stats, error) {
	return s.client.Stats(ctx, sess)
}

// ListUsers returns every registered user.
func (s *Service) ListUsers(ctx context.Context, sess *session.Session) ([]ManagedUser, error) {
	return s.client.ListUsers(ctx, sess)
}

// UpdateUserRole changes a user's role. Admins cannot demote themselves;
// losing admin mid-session would strand the dashboard.
func (s *Service) UpdateUserRole(ctx context.Context, sess *session.Session, email, role string) (*ManagedUser, error) {
	if email == sess.Identity.Email {
		return nil, common.ErrConflict.WithDetails("You cannot change your own role.")
	}

	updated, err := s.client.UpdateUserRole(ctx, sess, email, role)
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(email)
	s.logger.Info("User role updated",
		zap.String("email", email),
		zap.String("role", role),
		zap.String("admin_email", sess.Identity.Email),
	)
	return updated, nil
}

// DeleteUser removes a user account.
func (s *Service) DeleteUser(ctx context.Context, sess *session.Session, email string) error {
	if email == sess.Identity.Email {
		return common.ErrConflict.WithDetails("You cannot delete your own account here.")
	}

	if err := s.client.DeleteUser(ctx, sess, email); err != nil {
		return err
	}
	s.resolver.Invalidate(email)
	s.logger.Info("User deleted",
		zap.String("email", email),
		zap.String("admin_email", sess.Identity.Email),
	)
	return nil
}

// ListTasks returns every task on the platform.
func (s *Service) ListTasks(ctx context.Context, sess *session.Session) ([]task.Task, error) {
	return s.client.ListTasks(ctx, sess)
}

// DeleteTask removes any task. No refund bookkeeping happens here; the
// backend settles escrowed coins for moderator deletions.
func (s *Service) DeleteTask(ctx context.Context, sess *session.Session, id string) error {
	if err := s.client.DeleteTask(ctx, sess, id); err != nil {
		return err
	}
	s.logger.Info("Task removed by admin",
		zap.String("task_id", id),
		zap.String("admin_email", sess.Identity.Email),
	)
	return nil
}
