package audit

import (
	"context"
	"errors"
	"log/slog"
)

// ErrQueueFull is returned when the async queue cannot take another summary.
var ErrQueueFull = errors.New("summary queue full")

// AsyncPublisher decouples invocations from a slow publisher. Publish only
// enqueues; Run drains the queue into the wrapped publisher.
type AsyncPublisher struct {
	next   Publisher
	inbox  chan Summary
	logger *slog.Logger
}

func NewAsyncPublisher(next Publisher, buffer int, logger *slog.Logger) *AsyncPublisher {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncPublisher{next: next, inbox: make(chan Summary, buffer), logger: logger}
}

// Publish enqueues s without blocking.
func (p *AsyncPublisher) Publish(_ context.Context, s Summary) error {
	select {
	case p.inbox <- s:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run forwards queued summaries until ctx is done, then drains what is left
// with a non-cancelled context.
func (p *AsyncPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case s := <-p.inbox:
			p.forward(ctx, s)
		}
	}
}

func (p *AsyncPublisher) drain(ctx context.Context) {
	for {
		select {
		case s := <-p.inbox:
			p.forward(ctx, s)
		default:
			return
		}
	}
}

func (p *AsyncPublisher) forward(ctx context.Context, s Summary) {
	if err := p.next.Publish(ctx, s); err != nil {
		p.logger.WarnContext(ctx, "async summary publish failed", "trace_id", s.TraceID, "error", err)
	}
}
