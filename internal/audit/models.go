// Package audit emits the per-invocation summary record: which stages ran,
// whether each succeeded and how long each took. The record never carries
// PII.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StageStatus is the success flag of one executed stage.
type StageStatus struct {
	Stage   string `json:"stage"`
	Vendor  string `json:"vendor"`
	Success bool   `json:"success"`
}

// Timing is the duration of one stage in milliseconds.
type Timing struct {
	Stage  string  `json:"stage"`
	Millis float64 `json:"ms"`
}

// Summary is the one record emitted for every invocation, successful or not.
type Summary struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	TraceID   string        `json:"trace_id"`
	Flow      string        `json:"flow"`
	Stages    []StageStatus `json:"stages"`
	Timing    []Timing      `json:"timing"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Publisher forwards summaries to an external sink.
type Publisher interface {
	Publish(ctx context.Context, s Summary) error
}

// Store keeps summaries for later inspection.
type Store interface {
	Append(ctx context.Context, s Summary) error
	ListByTrace(ctx context.Context, traceID string) ([]Summary, error)
}
