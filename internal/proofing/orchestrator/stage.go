package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idproof/internal/audit"
	"idproof/internal/proofing"
	"idproof/internal/proofing/retry"
	"idproof/internal/proofing/timing"
)

// runStage executes call under the retry policy, timed as stage. Retries are
// counted and logged; the final error, if any, is returned unchanged.
func runStage[T any](ctx context.Context, r *run, stage proofing.Stage, vendor string, call func(context.Context) (T, error)) (T, error) {
	s := r.svc
	flow := string(r.req.Flow)
	ctx, span := s.tracer.Start(ctx, "stage "+string(stage), trace.WithAttributes(
		attribute.String("idproof.stage", string(stage)),
		attribute.String("idproof.vendor", vendor),
	))
	defer span.End()

	policy := s.policy
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error) {
		s.metrics.IncrementRetry(string(stage))
		s.logger.WarnContext(ctx, "retrying stage",
			"trace_id", r.req.TraceID,
			"stage", stage,
			"vendor", vendor,
			"attempt", attempt,
			"error", err,
		)
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	r.running = &audit.StageStatus{Stage: string(stage), Vendor: vendor}
	v, err := timing.Time(r.timer, stage, func() (T, error) {
		return retry.Do(ctx, policy, call)
	})
	r.running = nil
	if d, ok := r.timer.Duration(stage); ok {
		s.metrics.ObserveStage(flow, string(stage), vendor, d)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(proofing.GetCategory(err)))
		s.metrics.IncrementStageOutcome(flow, string(stage), "error")
		r.statuses = append(r.statuses, audit.StageStatus{Stage: string(stage), Vendor: vendor, Success: false})
	}
	return v, err
}

// record merges a vendor outcome into the result and reports whether the
// stage succeeded.
func (r *run) record(stage proofing.Stage, vendor string, o proofing.Outcome) bool {
	o = o.Normalize()
	r.result.Merge(o)
	r.statuses = append(r.statuses, audit.StageStatus{Stage: string(stage), Vendor: vendor, Success: o.Success})
	r.svc.metrics.IncrementStageOutcome(string(r.req.Flow), string(stage), outcomeLabel(o))
	r.svc.logger.Debug("stage finished",
		"trace_id", r.req.TraceID,
		"stage", stage,
		"vendor", vendor,
		"success", o.Success,
	)
	return o.Success
}

func outcomeLabel(o proofing.Outcome) string {
	switch {
	case o.TimedOut:
		return "timed_out"
	case o.Exception != "":
		return "exception"
	case o.Success:
		return "success"
	default:
		return "failure"
	}
}
