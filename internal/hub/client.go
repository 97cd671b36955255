package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/onoffautomations/doorcore/internal/infrastructure/logging"
)

// Client constants.
const (
	// DefaultTimeout bounds each hub command request.
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response body is read for diagnostics.
	maxBodyBytes = 64 * 1024

	// excerptLen is the maximum length of a body excerpt in an error detail.
	excerptLen = 200
)

// Outcome classifies the result of one dispatched action.
type Outcome string

// The outcome taxonomy. Every dispatch resolves into exactly one of these;
// no failure path escapes as an error or panic.
const (
	OutcomeSuccess        Outcome = "success"
	OutcomeHTTPError      Outcome = "http_error"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeUnexpected     Outcome = "unexpected"
)

// ActionResult is the classified outcome of one action dispatch.
//
// The dispatcher keeps only the last result per (entry, action) target;
// each new attempt overwrites the previous one.
type ActionResult struct {
	Outcome Outcome `json:"outcome"`

	// Detail is the short operator-facing status string. For Success it
	// carries the response body; for failures a human-readable description.
	Detail string `json:"detail"`

	// StatusCode is the raw HTTP status, 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`

	// At is when the dispatch completed.
	At time.Time `json:"at"`
}

// Client issues door commands against a hub's HTTP admin endpoint.
//
// Thread Safety: safe for concurrent use; the underlying http.Client
// multiplexes connections.
type Client struct {
	http    *http.Client
	timeout time.Duration
	logger  *logging.Logger
}

// NewClient creates a hub client with the given per-request timeout.
//
// A zero timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		// The outer context deadline bounds the request; the http.Client
		// itself carries no timeout so the deadline is the single source
		// of truth.
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// Dispatch issues a single GET to the hub for the given door action and
// classifies the outcome.
//
// The request is bounded by the client timeout. All failures resolve into
// an ActionResult; Dispatch never returns an error and never panics.
//
// Parameters:
//   - ctx: Parent context (cancellation propagates to the request)
//   - ep: Hub endpoint
//   - doorID: Opaque door key on the hub
//   - action: One of the four door actions
//
// Returns:
//   - ActionResult: Classified outcome with diagnostic detail
func (c *Client) Dispatch(ctx context.Context, ep Endpoint, doorID string, action Action) ActionResult {
	commandURL := CommandURL(ep, doorID, action)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, commandURL, nil)
	if err != nil {
		// Only reachable with a malformed host; still must resolve.
		c.logger.Error("hub request build failed",
			"action", action,
			"url", commandURL,
			"error", err,
		)
		return c.result(OutcomeUnexpected, fmt.Sprintf("Unexpected error: %v", err), 0)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyRequestError(err, action, commandURL)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		c.logger.Error("hub response read failed",
			"action", action,
			"url", commandURL,
			"error", readErr,
		)
		return c.result(OutcomeUnexpected, fmt.Sprintf("Unexpected error: %v", readErr), resp.StatusCode)
	}

	if resp.StatusCode == http.StatusOK {
		c.logger.Debug("hub action ok",
			"action", action,
			"door_id", doorID,
			"response", string(body),
		)
		return c.result(OutcomeSuccess, fmt.Sprintf("OK (%d)", resp.StatusCode), resp.StatusCode)
	}

	c.logger.Warn("hub action failed",
		"action", action,
		"door_id", doorID,
		"status", resp.StatusCode,
		"response", excerpt(string(body)),
	)
	return c.result(OutcomeHTTPError,
		fmt.Sprintf("HTTP %d: %s", resp.StatusCode, excerpt(string(body))),
		resp.StatusCode,
	)
}

// classifyRequestError maps a transport-level failure into an ActionResult.
//
// Timeouts (context deadline or net-level) become OutcomeTimeout; other
// url.Error/net failures become OutcomeTransportError; anything else is
// OutcomeUnexpected but still observable in the logs.
func (c *Client) classifyRequestError(err error, action Action, commandURL string) ActionResult {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		c.logger.Error("hub action timeout",
			"action", action,
			"url", commandURL,
			"timeout", c.timeout,
		)
		return c.result(OutcomeTimeout,
			fmt.Sprintf("Error: Request timed out after %d seconds", int(c.timeout.Seconds())), 0)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		c.logger.Error("hub action transport error",
			"action", action,
			"url", commandURL,
			"error", urlErr.Err,
		)
		return c.result(OutcomeTransportError, fmt.Sprintf("Error: %v", urlErr.Err), 0)
	}

	c.logger.Error("hub action unexpected error",
		"action", action,
		"url", commandURL,
		"error", err,
	)
	return c.result(OutcomeUnexpected, fmt.Sprintf("Unexpected error: %v", err), 0)
}

// result builds an ActionResult stamped with the current time.
func (c *Client) result(outcome Outcome, detail string, status int) ActionResult {
	return ActionResult{
		Outcome:    outcome,
		Detail:     detail,
		StatusCode: status,
		At:         time.Now().UTC(),
	}
}

// isTimeout reports whether err is a net-level timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// excerpt truncates a response body for error details.
func excerpt(body string) string {
	if len(body) > excerptLen {
		return body[:excerptLen]
	}
	return body
}
