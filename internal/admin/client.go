// File: internal/admin/client.go
package admin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"microtask_gateway/internal/session"
	"microtask_gateway/internal/task"
	"microtask_gateway/internal/upstream"
)

// Client issues moderation requests against the marketplace API.
type Client struct {
	api *upstream.Client
}

// NewClient creates an admin client.
func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// Stats fetches the platform summary figures.
func (c *Client) Stats(ctx context.Context, sess *session.Session) (*Stats, error) {
	var stats Stats
	if err := c.api.JSON(ctx, sess, http.MethodGet, "/admin/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers fetches every registered user.
func (c *Client) ListUsers(ctx context.Context, sess *session.Session) ([]ManagedUser, error) {
	var users []ManagedUser
	if err := c.api.JSON(ctx, sess, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes a user's role.
func (c *Client) UpdateUserRole(ctx context.Context, sess *session.Session, email, role string) (*ManagedUser, error) {
	path := fmt.Sprintf("/admin/users/%s/role", url.PathEscape(email))
	body := map[string]string{"role": role}
	var updated ManagedUser
	if err := c.api.JSON(ctx, sess, http.MethodPatch, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, sess *session.Session, email string) error {
	path := fmt.Sprintf("/admin/users/%s", url.PathEscape(email))
	return c.api.JSON(ctx, sess, http.MethodDelete, path, nil, nil)
}

// ListTasks fetches every task on the platform.
func (c *Client) ListTasks(ctx context.Context, sess *session.Session) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.api.JSON(ctx, sess, http.MethodGet, "/admin/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteTask removes any task regardless of owner.
func (c *Client) DeleteTask(ctx context.Context, sess *session.Session, id string) error {
	path := fmt.Sprintf("/admin/tasks/%s", url.PathEscape(id))
	return c.api.JSON(ctx, sess, http.MethodDelete, path, nil, nil)
}
