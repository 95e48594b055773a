// File: internal/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/session"
)

// StatusError is a non-2xx answer from the marketplace API. It carries the
// raw body so the initiating feature can decide what to show; only 401 and
// 403 are handled globally, everything else is the caller's problem.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// TokenMinter supplies a freshly minted identity token for a session.
// Implemented by the identity service; tokens are short-lived and must be
// re-minted per request, never cached.
type TokenMinter interface {
	FreshToken(ctx context.Context, sess *session.Session) (string, error)
}

// AuthEvents receives the two authorization failures the client handles
// globally. Implemented by the route guard's notifier, which makes each
// transition idempotent per session.
type AuthEvents interface {
	Forbidden(ctx context.Context, sess *session.Session)
	Unauthorized(ctx context.Context, sess *session.Session)
}

// Response is a successful upstream answer.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client is the authenticated request client for the marketplace API. The
// base URL comes from configuration and nowhere else.
type Client struct {
	baseURL    string
	httpClient *http.Client
	minter     TokenMinter
	events     AuthEvents
	logger     *zap.Logger
}

// NewClient creates the upstream client.
func NewClient(cfg *config.Config, minter TokenMinter, events AuthEvents, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.UpstreamBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.UpstreamRequestTimeout},
		minter:     minter,
		events:     events,
		logger:     logger.Named("UpstreamClient"),
	}
}

// Do issues a request to the marketplace API. When a session exists, a fresh
// identity token is minted and attached as a bearer credential. A 403 signals
// the guard's forbidden transition and a 401 triggers a forced sign-out; in
// both cases the error still propagates to the caller. No retries.
func (c *Client) Do(ctx context.Context, sess *session.Session, method, path string, body interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body for %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if sess != nil {
		token, err := c.minter.FreshToken(ctx, sess)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Upstream request failed to send",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, common.ErrUpstreamDown.WithDetails(err.Error())
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response for %s %s: %w", method, path, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn("Upstream rejected credentials, forcing sign-out", zap.String("path", path))
		c.events.Unauthorized(ctx, sess)
	case httpResp.StatusCode == http.StatusForbidden:
		c.logger.Warn("Upstream denied access, signalling forbidden", zap.String("path", path))
		c.events.Forbidden(ctx, sess)
	case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
		return &Response{StatusCode: httpResp.StatusCode, Body: raw}, nil
	}

	return nil, &StatusError{
		StatusCode: httpResp.StatusCode,
		Method:     method,
		Path:       path,
		Body:       raw,
	}
}

// JSON issues a request and decodes the response body into out (when out is
// non-nil).
func (c *Client) JSON(ctx context.Context, sess *session.Session, method, path string, body, out interface{}) error {
	resp, err := c.Do(ctx, sess, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode upstream response for %s %s: %w", method, path, err)
	}
	return nil
}

// AsAPIError converts upstream failures into the gateway error taxonomy for
// handlers that just pass the status through to the browser.
func AsAPIError(err error) error {
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr
	}
	if statusErr, ok := err.(*StatusError); ok {
		message := strings.TrimSpace(string(statusErr.Body))
		if message == "" {
			message = http.StatusText(statusErr.StatusCode)
		}
		apiErr := common.NewAPIError(statusErr.StatusCode, "UPSTREAM_ERROR", message)
		// The guard already transitioned; tell the browser where to go.
		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			return apiErr.WithRedirect(common.LoginPath)
		case http.StatusForbidden:
			return apiErr.WithRedirect(common.ForbiddenPath)
		}
		return apiErr
	}
	return err
}

// IsStatus reports whether err is an upstream StatusError with the given code.
func IsStatus(err error, code int) bool {
	statusErr, ok := err.(*StatusError)
	return ok && statusErr.StatusCode == code
}
