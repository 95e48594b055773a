// File: internal/task/client.go
package task

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Client issues task CRUD requests against the marketplace API.
type Client struct {
	api *upstream.Client
}

// NewClient creates a task client.
func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// Create posts a new task and returns the stored record.
func (c *Client) Create(ctx context.Context, sess *session.Session, t *Task) (*Task, error) {
	var created Task
	if err := c.api.JSON(ctx, sess, http.MethodPost, "/tasks", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListAvailable fetches every task. Filtering and ordering are the caller's
// concern.
func (c *Client) ListAvailable(ctx context.Context, sess *session.Session) ([]Task, error) {
	var tasks []Task
	if err := c.api.JSON(ctx, sess, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByBuyer fetches a buyer's own tasks.
func (c *Client) ListByBuyer(ctx context.Context, sess *session.Session, email string) ([]Task, error) {
	var tasks []Task
	path := fmt.Sprintf("/tasks/buyer/%s", url.PathEscape(email))
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get fetches a single task by id.
func (c *Client) Get(ctx context.Context, sess *session.Session, id string) (*Task, error) {
	var t Task
	path := fmt.Sprintf("/tasks/%s", url.PathEscape(id))
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update patches the editable fields of a task.
func (c *Client) Update(ctx context.Context, sess *session.Session, id string, req *UpdateTaskRequest) (*Task, error) {
	var updated Task
	path := fmt.Sprintf("/tasks/%s", url.PathEscape(id))
	if err := c.api.JSON(ctx, sess, http.MethodPatch, path, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, sess *session.Session, id string) error {
	path := fmt.Sprintf("/tasks/%s", url.PathEscape(id))
	return c.api.JSON(ctx, sess, http.MethodDelete, path, nil, nil)
}
