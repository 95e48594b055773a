// File: internal/payment/client.go
package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Client issues payment requests against the marketplace API.
type Client struct {
	api *upstream.Client
}

// NewClient creates a payment client.
func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// History fetches the buyer's settled purchases.
func (c *Client) History(ctx context.Context, sess *session.Session, email string) ([]Payment, error) {
	path := fmt.Sprintf("/payments/%s", url.PathEscape(email))
	var payments []Payment
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// CreateIntent asks the backend for a processor intent covering the given
// price.
func (c *Client) CreateIntent(ctx context.Context, sess *session.Session, price int) (*Intent, error) {
	body := map[string]int{"price": price}
	var intent Intent
	if err := c.api.JSON(ctx, sess, http.MethodPost, "/create-payment-intent", body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// Confirm records a completed purchase; the backend credits the coins.
func (c *Client) Confirm(ctx context.Context, sess *session.Session, p *Payment) (*Payment, error) {
	var settled Payment
	if err := c.api.JSON(ctx, sess, http.MethodPost, "/payment-success", p, &settled); err != nil {
		return nil, err
	}
	return &settled, nil
}
