// File: internal/withdrawal/client.go
package withdrawal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Client issues withdrawal requests against the marketplace API.
type Client struct {
	api *upstream.Client
}

// NewClient creates a withdrawal client.
func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// Create posts a new withdrawal request.
func (c *Client) Create(ctx context.Context, sess *session.Session, w *Withdrawal) (*Withdrawal, error) {
	var created Withdrawal
	if err := c.api.JSON(ctx, sess, http.MethodPost, "/withdrawals", w, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListByWorker fetches the worker's own withdrawal history.
func (c *Client) ListByWorker(ctx context.Context, sess *session.Session, email string) ([]Withdrawal, error) {
	path := fmt.Sprintf("/withdrawals/worker/%s", url.PathEscape(email))
	var withdrawals []Withdrawal
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// ListPending fetches the admin review queue.
func (c *Client) ListPending(ctx context.Context, sess *session.Session) ([]Withdrawal, error) {
	var withdrawals []Withdrawal
	if err := c.api.JSON(ctx, sess, http.MethodGet, "/admin/withdrawals?status=pending", nil, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// Approve marks a withdrawal approved. The backend deducts the coins from
// the worker at this point.
func (c *Client) Approve(ctx context.Context, sess *session.Session, id string) (*Withdrawal, error) {
	path := fmt.Sprintf("/admin/withdrawals/%s/approve", url.PathEscape(id))
	var updated Withdrawal
	if err := c.api.JSON(ctx, sess, http.MethodPatch, path, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
