// Package vendorhttp is the HTTP plumbing shared by the vendor adapters:
// an instrumented client and a request helper that maps transport failures
// onto the proofing error taxonomy.
package vendorhttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"idproof/internal/proofing"
)

// MaxResponseBytes caps how much of a vendor response is read.
const MaxResponseBytes = 10 << 20

// NewClient returns an http.Client with otel instrumentation.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Request describes one vendor call.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Username    string
	Password    string
	Header      http.Header
}

// Response is a fully read vendor response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs the request. Transport failures come back classified (timeouts
// and connection failures are retryable); any HTTP response, whatever its
// status, is returned without error.
func Do(ctx context.Context, client *http.Client, op string, r Request) (Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return Response{}, proofing.NewError(proofing.CategoryMisconfigured, op, "invalid vendor url", proofing.RedactURL(err))
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	req.Header.Set("Accept", "application/json")
	if r.Username != "" || r.Password != "" {
		req.SetBasicAuth(r.Username, r.Password)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Response{}, proofing.ClassifyTransport(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return Response{}, proofing.ClassifyTransport(op, fmt.Errorf("read response: %w", err))
	}
	return Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// StatusException is the exception text recorded for a non-2xx vendor answer.
func StatusException(vendor string, status int) string {
	return fmt.Sprintf("%s responded with status %d", vendor, status)
}
