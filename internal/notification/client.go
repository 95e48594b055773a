// File: internal/notification/client.go
package notification

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Client issues notification requests against the marketplace API.
type Client struct {
	api *upstream.Client
}

// NewClient creates a notification client.
func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// ListForUser fetches the user's unread notifications, newest first.
func (c *Client) ListForUser(ctx context.Context, sess *session.Session, email string) ([]Notification, error) {
	path := fmt.Sprintf("/notifications/%s", url.PathEscape(email))
	var notifications []Notification
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// Delete removes a notification once the user has read it.
func (c *Client) Delete(ctx context.Context, sess *session.Session, id string) error {
	path := fmt.Sprintf("/notifications/%s", url.PathEscape(id))
	return c.api.JSON(ctx, sess, http.MethodDelete, path, nil, nil)
}
