// Package gateway implements the outbound Midtrans Snap and Core API client.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/warungpay/backend/internal/domain"
)

const (
	snapBaseSandbox    = "https://app.sandbox.midtrans.com"
	snapBaseProduction = "https://app.midtrans.com"
	coreBaseSandbox    = "https://api.sandbox.midtrans.com"
	coreBaseProduction = "https://api.midtrans.com"
)

// Client talks to the Midtrans Snap and Core APIs. All calls are independent
// synchronous request/response operations; the client holds no cross-call
// state beyond the HTTP connection pool.
type Client struct {
	snap *resty.Client
	core *resty.Client
}

// Option overrides client defaults, used by tests to point at a stub server.
type Option func(*Client)

// WithBaseURLs replaces both API base URLs.
func WithBaseURLs(snapBase, coreBase string) Option {
	return func(c *Client) {
		c.snap.SetBaseURL(snapBase)
		c.core.SetBaseURL(coreBase)
	}
}

// NewClient builds a Midtrans client authenticated with the merchant's server
// key. Production selects the live endpoints; otherwise the sandbox.
func NewClient(serverKey string, production bool, opts ...Option) *Client {
	snapBase, coreBase := snapBaseSandbox, coreBaseSandbox
	if production {
		snapBase, coreBase = snapBaseProduction, coreBaseProduction
	}

	newResty := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(base).
			SetTimeout(15 * time.Second).
			SetBasicAuth(serverKey, "").
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json")
	}

	c := &Client{
		snap: newResty(snapBase),
		core: newResty(coreBase),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSnapTransaction creates a checkout session and returns its token and
// redirect URL.
func (c *Client) CreateSnapTransaction(ctx context.Context, req SnapRequest) (*SnapResponse, error) {
	var out SnapResponse
	resp, err := c.snap.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/snap/v1/transactions")
	if err != nil {
		return nil, domain.ErrGateway("failed to reach payment gateway", err)
	}
	if resp.IsError() {
		return nil, domain.ErrGateway("gateway rejected transaction", apiError(resp, out.ErrorMessages))
	}
	return &out, nil
}

// GetTransactionStatus fetches the Core API status object for an order. The
// raw JSON is returned alongside the typed view so handlers can pass the
// gateway's object through untouched.
func (c *Client) GetTransactionStatus(ctx context.Context, orderID string) (*TransactionStatus, json.RawMessage, error) {
	var out TransactionStatus
	resp, err := c.core.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/v2/%s/status", orderID))
	if err != nil {
		return nil, nil, domain.ErrGateway("failed to reach payment gateway", err)
	}
	if resp.IsError() {
		return nil, nil, domain.ErrGateway("gateway status check failed", apiError(resp, nil))
	}
	return &out, json.RawMessage(resp.Body()), nil
}

// CancelTransaction cancels an order at the gateway.
func (c *Client) CancelTransaction(ctx context.Context, orderID string) (json.RawMessage, error) {
	resp, err := c.core.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/v2/%s/cancel", orderID))
	if err != nil {
		return nil, domain.ErrGateway("failed to reach payment gateway", err)
	}
	if resp.IsError() {
		return nil, domain.ErrGateway("gateway cancel failed", apiError(resp, nil))
	}
	return json.RawMessage(resp.Body()), nil
}

// RefundTransaction requests a (partial) refund for an order.
func (c *Client) RefundTransaction(ctx context.Context, orderID string, req RefundRequest) (json.RawMessage, error) {
	resp, err := c.core.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/v2/%s/refund", orderID))
	if err != nil {
		return nil, domain.ErrGateway("failed to reach payment gateway", err)
	}
	if resp.IsError() {
		return nil, domain.ErrGateway("gateway refund failed", apiError(resp, nil))
	}
	return json.RawMessage(resp.Body()), nil
}

func apiError(resp *resty.Response, messages []string) error {
	if len(messages) > 0 {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), messages[0])
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
}
