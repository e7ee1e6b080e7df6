// Package callback delivers proofing results to the caller's endpoint.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"idproof/internal/platform/metrics"
	"idproof/internal/proofing"
	"idproof/internal/proofing/retry"
)

// AuthHeader carries the shared-secret token.
const AuthHeader = "X-API-AUTH-TOKEN"

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 15 * time.Second

// Client posts result bodies. Transient transport errors are retried under
// the policy; a non-2xx answer is final.
type Client struct {
	http    *http.Client
	policy  retry.Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithPolicy replaces retry.Default.
func WithPolicy(p retry.Policy) Option {
	return func(cl *Client) {
		cl.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		policy: retry.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver serializes body and POSTs it to target with the auth token. The
// target URL may carry credentials, so only its host is ever logged.
func (c *Client) Deliver(ctx context.Context, target, token string, body proofing.Body) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal callback body: %w", err)
	}
	host := hostOf(target)

	policy := c.policy
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error) {
		c.metrics.IncrementRetry("callback")
		c.logger.WarnContext(ctx, "retrying callback delivery", "host", host, "attempt", attempt, "error", err)
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	_, err = retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.post(ctx, target, host, token, payload)
	})
	switch {
	case err == nil:
		c.metrics.IncrementDelivery("delivered")
		c.logger.InfoContext(ctx, "callback delivered", "host", host)
		return nil
	case proofing.GetCategory(err) == proofing.CategoryDeliveryRejected:
		c.metrics.IncrementDelivery("rejected")
	default:
		c.metrics.IncrementDelivery("failed")
	}
	c.logger.ErrorContext(ctx, "callback delivery failed", "host", host, "error", err)
	return fmt.Errorf("deliver callback: %w", err)
}

func (c *Client) post(ctx context.Context, target, host, token string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return proofing.NewError(proofing.CategoryInvalidRequest, "callback", "invalid callback url", proofing.RedactURL(err))
	}
	req.Header.Set(AuthHeader, token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return proofing.ClassifyTransport("callback", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &proofing.DeliveryError{StatusCode: resp.StatusCode, Host: host}
	}
	return nil
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
