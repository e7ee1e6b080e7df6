// Package orchestrator runs one proofing invocation: it resolves vendor
// settings, drives the flow's stages through the retry executor and stage
// timer, merges outcomes into a single result and hands the result to either
// a direct sink or the callback endpoint. Exactly one summary record is
// emitted per invocation, whatever happens.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idproof/internal/audit"
	"idproof/internal/config"
	"idproof/internal/platform/metrics"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/proofing/retry"
	"idproof/internal/proofing/timing"
)

const tracerName = "idproof/orchestrator"

// Parameter-store names of the per-flow callback token. The environment
// override is always proofing.TokenSetting.
const (
	ResolutionTokenParam = "resolution_proof_result_lambda_token"
	AddressTokenParam    = "address_proof_result_lambda_token"
	DocumentTokenParam   = "document_proof_result_token"
)

var tokenParams = map[proofing.Flow]string{
	proofing.FlowResolution: ResolutionTokenParam,
	proofing.FlowAddress:    AddressTokenParam,
	proofing.FlowDocument:   DocumentTokenParam,
}

// TokenKey is the configuration key of the callback token for flow.
func TokenKey(flow proofing.Flow) config.Key {
	return config.Key{Name: proofing.TokenSetting, Param: tokenParams[flow]}
}

// SettingsResolver resolves vendor settings and secrets.
type SettingsResolver interface {
	Resolve(ctx context.Context, keys ...config.Key) (config.Settings, error)
	Get(ctx context.Context, key config.Key) (string, error)
}

// Service orchestrates proofing invocations. It holds no per-invocation
// state and is safe for concurrent use.
type Service struct {
	catalog   ports.Catalog
	resolver  SettingsResolver
	deliverer ports.Deliverer
	images    ports.ImageLoader
	emitter   *audit.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	policy    retry.Policy
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithImageLoader sets the loader used by the document flow.
func WithImageLoader(l ports.ImageLoader) Option {
	return func(s *Service) {
		s.images = l
	}
}

// WithEmitter sets the summary emitter.
func WithEmitter(e *audit.Emitter) Option {
	return func(s *Service) {
		s.emitter = e
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPolicy replaces retry.Default for vendor calls.
func WithPolicy(p retry.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(catalog ports.Catalog, resolver SettingsResolver, deliverer ports.Deliverer, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		resolver:  resolver,
		deliverer: deliverer,
		logger:    slog.Default(),
		policy:    retry.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.emitter == nil {
		s.emitter = audit.NewEmitter(audit.WithLogger(s.logger))
	}
	return s
}

// run is the state of one invocation.
type run struct {
	svc      *Service
	req      proofing.Request
	timer    *timing.Timer
	result   *proofing.Result
	statuses []audit.StageStatus
	// running is the stage currently in flight, if any.
	running *audit.StageStatus
}

// Run executes req. With a nil sink the body is posted to req.CallbackURL;
// otherwise it is handed to sink and no HTTP delivery happens. Errors abort
// the invocation without delivering anything; a vendor saying no is not an
// error. A panic in a vendor adapter is returned as an internal error.
func (s *Service) Run(ctx context.Context, req proofing.Request, sink ports.Sink) (result *proofing.Result, err error) {
	ctx, span := s.tracer.Start(ctx, "proof "+string(req.Flow), trace.WithAttributes(
		attribute.String("idproof.flow", string(req.Flow)),
		attribute.String("idproof.trace_id", req.TraceID),
	))
	r := &run{
		svc:    s,
		req:    req,
		timer:  timing.New(),
		result: proofing.NewResult(),
	}
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = proofing.NewError(proofing.CategoryInternal, "run", fmt.Sprintf("panic: %v", p), nil)
			if r.running != nil {
				r.statuses = append(r.statuses, *r.running)
			}
			s.logger.ErrorContext(ctx, "proofing invocation panicked",
				"trace_id", req.TraceID,
				"panic", p,
				"stack", string(debug.Stack()),
			)
		}
		s.finish(ctx, r, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(proofing.GetCategory(err)))
		}
		span.End()
	}()

	callback := sink == nil
	if callback && req.CallbackURL == "" {
		return nil, proofing.NewError(proofing.CategoryInvalidRequest, "run", "callback_url is required", nil)
	}

	var token string
	switch req.Flow {
	case proofing.FlowResolution:
		token, err = r.proofResolution(ctx, callback)
	case proofing.FlowAddress:
		token, err = r.proofAddress(ctx, callback)
	case proofing.FlowDocument:
		token, err = r.proofDocument(ctx, callback)
	default:
		err = proofing.NewError(proofing.CategoryInvalidRequest, "run", fmt.Sprintf("unknown flow %q", req.Flow), nil)
	}
	if err != nil {
		return nil, err
	}

	body := proofing.NewBody(req.Flow, r.result)
	if !callback {
		if serr := sink(ctx, body); serr != nil {
			return nil, fmt.Errorf("hand result to sink: %w", serr)
		}
		return r.result, nil
	}
	if derr := s.deliverer.Deliver(ctx, req.CallbackURL, token, body); derr != nil {
		return nil, derr
	}
	return r.result, nil
}

// prepare resolves the vendor settings and, in callback mode, the callback
// token. Both happen before any vendor is contacted.
func (r *run) prepare(ctx context.Context, callback bool, keys ...config.Key) (config.Settings, string, error) {
	settings, err := r.svc.resolver.Resolve(ctx, keys...)
	if err != nil {
		return config.Settings{}, "", err
	}
	if !callback {
		return settings, "", nil
	}
	token, err := r.svc.resolver.Get(ctx, TokenKey(r.req.Flow))
	if err != nil {
		var mis *proofing.MisconfiguredError
		if errors.As(err, &mis) {
			return config.Settings{}, "", mis
		}
		return config.Settings{}, "", fmt.Errorf("resolve callback token: %w", err)
	}
	return settings, token, nil
}

func (s *Service) finish(ctx context.Context, r *run, err error) {
	timings := make([]audit.Timing, 0, len(r.statuses))
	for _, e := range r.timer.Results() {
		timings = append(timings, audit.Timing{Stage: string(e.Stage), Millis: e.Millis()})
	}
	summary := audit.Summary{
		Name:    r.req.Flow.InvocationName(),
		TraceID: r.req.TraceID,
		Flow:    string(r.req.Flow),
		Stages:  r.statuses,
		Timing:  timings,
		Success: err == nil && r.result.Success,
	}

	label := "success"
	switch {
	case err != nil:
		summary.Error = err.Error()
		label = "error_" + string(proofing.GetCategory(err))
		s.logger.ErrorContext(ctx, "proofing invocation failed",
			"trace_id", r.req.TraceID,
			"flow", r.req.Flow,
			"category", proofing.GetCategory(err),
			"error", err,
		)
	case !r.result.Success:
		label = "failure"
	}
	s.metrics.IncrementInvocation(string(r.req.Flow), label)
	s.emitter.Emit(ctx, summary)
}
