package proofing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
)

// Category is the normalized failure taxonomy. It decides whether an error is
// retried and how it is reported at the invocation boundary.
type Category string

const (
	// CategoryTimeout indicates the remote side took too long to respond.
	CategoryTimeout Category = "timeout"

	// CategoryConnection indicates the connection could not be established or
	// was dropped mid-flight.
	CategoryConnection Category = "connection_failed"

	// CategoryMisconfigured indicates a required secret or setting is missing.
	CategoryMisconfigured Category = "misconfigured"

	// CategoryInvalidRequest indicates a malformed inbound event.
	CategoryInvalidRequest Category = "invalid_request"

	// CategoryDeliveryRejected indicates the callback endpoint answered with a
	// non-2xx status.
	CategoryDeliveryRejected Category = "delivery_rejected"

	// CategoryVendorProtocol indicates a vendor (or image host) answered with
	// something we could not interpret.
	CategoryVendorProtocol Category = "vendor_protocol"

	// CategoryInternal indicates an unexpected error.
	CategoryInternal Category = "internal"
)

// Error wraps failures with a normalized category.
type Error struct {
	Category   Category
	Op         string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized error. Only transient transport categories
// are retryable.
func NewError(category Category, op, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Op:         op,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == CategoryTimeout || category == CategoryConnection,
	}
}

// TokenSetting is the environment name of the callback authorization token.
const TokenSetting = "IDP_API_AUTH_TOKEN"

// MisconfiguredError reports a required setting that could not be resolved.
type MisconfiguredError struct {
	Setting    string
	Underlying error
}

func (e *MisconfiguredError) Error() string {
	return e.Setting + " is not configured"
}

func (e *MisconfiguredError) Unwrap() error {
	return e.Underlying
}

// DeliveryError reports a callback endpoint that answered with a non-2xx
// status. It is fatal: the endpoint was reached and said no.
type DeliveryError struct {
	StatusCode int
	Host       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("callback to %s rejected with status %d", e.Host, e.StatusCode)
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error chain.
func GetCategory(err error) Category {
	var misconfigured *MisconfiguredError
	if errors.As(err, &misconfigured) {
		return CategoryMisconfigured
	}
	var delivery *DeliveryError
	if errors.As(err, &delivery) {
		return CategoryDeliveryRejected
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryInternal
}

// ClassifyTransport maps an error from an outbound HTTP call onto the
// taxonomy. Timeouts and connection failures become retryable; cancellation
// is passed through untouched so it is never retried.
func ClassifyTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	err = RedactURL(err)

	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(CategoryTimeout, op, "request timed out", err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return NewError(CategoryConnection, op, "connection failed", err)
	}

	return NewError(CategoryInternal, op, "request failed", err)
}

// RedactURL trims the URL carried by a *url.Error in err down to scheme and
// host. Callback and presigned image URLs carry credentials in their path or
// query and must not reach logs or summaries.
func RedactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = redact(uerr.URL)
	}
	return err
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[redacted]"
	}
	return u.Scheme + "://" + u.Host
}
