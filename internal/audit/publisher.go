package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Emitter writes the summary log record and fans the summary out to an
// optional store and publishers. Emission is best effort: failures are logged
// and never surface to the invocation.
type Emitter struct {
	logger     *slog.Logger
	store      Store
	publishers []Publisher
	clock      func() time.Time
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger the summary record is written to.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithStore keeps every summary in store.
func WithStore(store Store) Option {
	return func(e *Emitter) {
		e.store = store
	}
}

// WithPublisher adds a downstream publisher.
func WithPublisher(p Publisher) Option {
	return func(e *Emitter) {
		if p != nil {
			e.publishers = append(e.publishers, p)
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(e *Emitter) {
		e.clock = clock
	}
}

func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit records s. A nil Emitter is a no-op.
func (e *Emitter) Emit(ctx context.Context, s Summary) {
	if e == nil {
		return
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = e.clock()
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "proofing summary", s.attrs()...)

	if e.store != nil {
		if err := e.store.Append(ctx, s); err != nil {
			e.logger.WarnContext(ctx, "failed to store summary", "trace_id", s.TraceID, "error", err)
		}
	}
	for _, p := range e.publishers {
		if err := p.Publish(ctx, s); err != nil {
			e.logger.WarnContext(ctx, "failed to publish summary", "trace_id", s.TraceID, "error", err)
		}
	}
}

// attrs flattens the summary into {name, trace_id, <stage>_success..., timing}.
func (s Summary) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(s.Stages)+5)
	attrs = append(attrs,
		slog.String("name", s.Name),
		slog.String("trace_id", s.TraceID),
	)
	for _, st := range s.Stages {
		attrs = append(attrs, slog.Bool(st.Stage+"_success", st.Success))
	}

	timing := make([]any, 0, len(s.Timing))
	for _, t := range s.Timing {
		timing = append(timing, slog.Float64(t.Stage, t.Millis))
	}
	attrs = append(attrs,
		slog.Group("timing", timing...),
		slog.Bool("success", s.Success),
	)
	if s.Error != "" {
		attrs = append(attrs, slog.String("error", s.Error))
	}
	return attrs
}
