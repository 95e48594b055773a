// File: internal/submission/client.go
package submission

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Client issues submission requests against the marketplace API.
type Client struct {
	api *upstream.Client
}

// NewClient creates a submission client.
func NewClient(api *upstream.Client) *Client {
	return &Client{api: api}
}

// workerPage mirrors the paginated worker-submission payload.
type workerPage struct {
	Submissions []Submission `json:"submissions"`
	TotalCount  int64        `json:"total_count"`
}

// Create posts a new submission.
func (c *Client) Create(ctx context.Context, sess *session.Session, s *Submission) (*Submission, error) {
	var created Submission
	if err := c.api.JSON(ctx, sess, http.MethodPost, "/submissions", s, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListByWorker fetches a page of the worker's own submissions.
func (c *Client) ListByWorker(ctx context.Context, sess *session.Session, email string, page, pageSize int) ([]Submission, int64, error) {
	path := fmt.Sprintf("/submissions/worker/%s?page=%d&page_size=%d", url.PathEscape(email), page, pageSize)
	var result workerPage
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &result); err != nil {
		return nil, 0, err
	}
	return result.Submissions, result.TotalCount, nil
}

// ListPendingForBuyer fetches the submissions awaiting the buyer's review.
func (c *Client) ListPendingForBuyer(ctx context.Context, sess *session.Session, email string) ([]Submission, error) {
	path := fmt.Sprintf("/submissions/buyer/%s?status=pending", url.PathEscape(email))
	var submissions []Submission
	if err := c.api.JSON(ctx, sess, http.MethodGet, path, nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// SetStatus patches a submission to the given review outcome.
func (c *Client) SetStatus(ctx context.Context, sess *session.Session, id string, status Status) (*Submission, error) {
	path := fmt.Sprintf("/submissions/%s", url.PathEscape(id))
	body := map[string]string{"status": string(status)}
	var updated Submission
	if err := c.api.JSON(ctx, sess, http.MethodPatch, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
