// Package proofing holds the domain vocabulary shared by the orchestrator,
// the vendor adapters and the delivery path: requests, stage outcomes, the
// aggregate result and the error taxonomy.
//
// The package is pure: no I/O, no clocks, no logging. Everything that talks to
// the network lives behind the interfaces in proofing/ports.
package proofing

import (
	"fmt"
	"maps"
	"slices"
)

// Flow identifies which proofing pipeline a request runs through.
type Flow string

const (
	FlowResolution Flow = "resolution"
	FlowAddress    Flow = "address"
	FlowDocument   Flow = "document"
)

// ParseFlow validates a flow name coming from the outside world.
func ParseFlow(s string) (Flow, error) {
	switch f := Flow(s); f {
	case FlowResolution, FlowAddress, FlowDocument:
		return f, nil
	default:
		return "", NewError(CategoryInvalidRequest, "parse flow", fmt.Sprintf("unknown flow %q", s), nil)
	}
}

// ResultKey is the top-level key of the callback body for this flow.
func (f Flow) ResultKey() string {
	return string(f) + "_result"
}

// InvocationName is the name reported in the summary record.
func (f Flow) InvocationName() string {
	return "proof_" + string(f)
}

// Stage identifies one discrete vendor call within a proofing run.
type Stage string

const (
	StageResolution  Stage = "resolution"
	StageStateID     Stage = "state_id"
	StageAddress     Stage = "address"
	StageImages      Stage = "images"
	StageDocument    Stage = "document"
	StageFacialMatch Stage = "facial_match"
	StageLiveness    Stage = "liveness"
)

// PII is the applicant's identity attributes. Values are never logged; only
// the set of present field names may appear in diagnostics.
type PII map[string]string

// Get returns the attribute or the empty string.
func (p PII) Get(field string) string {
	return p[field]
}

// Fields returns the sorted names of non-empty attributes.
func (p PII) Fields() []string {
	fields := make([]string, 0, len(p))
	for k, v := range p {
		if v != "" {
			fields = append(fields, k)
		}
	}
	slices.Sort(fields)
	return fields
}

// DocumentRequest carries the document-flow specific part of a request: where
// the encrypted images live and how to decrypt them.
type DocumentRequest struct {
	EncryptionKey           string
	Front                   EncryptedImage
	Back                    EncryptedImage
	Selfie                  EncryptedImage
	LivenessCheckingEnabled bool
}

// EncryptedImage locates one encrypted image.
type EncryptedImage struct {
	URL string
	IV  string
}

// Request is the input to one orchestration run. It is built once from the
// inbound event and not modified afterwards.
type Request struct {
	Flow               Flow
	ApplicantPII       PII
	CallbackURL        string
	TraceID            string
	ShouldProofStateID bool
	Document           *DocumentRequest
}

// Outcome is the result of one vendor adapter call.
type Outcome struct {
	Success   bool
	Errors    map[string]string
	Messages  []string
	Exception string
	TimedOut  bool
	// Attributes holds vendor-specific fields (scores, statuses). Adapters only
	// set them when they actually talked to the vendor.
	Attributes map[string]any
}

// Normalize enforces the outcome invariants: an outcome carrying an exception
// or a timeout is never successful, and collections are never nil.
func (o Outcome) Normalize() Outcome {
	if o.Exception != "" || o.TimedOut {
		o.Success = false
	}
	if o.Errors == nil {
		o.Errors = map[string]string{}
	}
	if o.Messages == nil {
		o.Messages = []string{}
	}
	return o
}

// StageEntry is one element of context.stages: the stage that ran and the
// vendor that served it.
type StageEntry struct {
	Stage  Stage
	Vendor string
}

// ResultContext describes how a result was produced.
type ResultContext struct {
	Stages []StageEntry `json:"stages"`
}

// Result is the aggregate outcome of one invocation.
type Result struct {
	Success    bool
	Errors     map[string]string
	Messages   []string
	Context    ResultContext
	TimedOut   bool
	Exception  string
	Attributes map[string]any
}

// NewResult returns an empty result ready for stages to be merged in.
func NewResult() *Result {
	return &Result{
		Errors:   map[string]string{},
		Messages: []string{},
		Context:  ResultContext{Stages: []StageEntry{}},
	}
}

// AddStage appends a stage to context.stages. Entries are never reordered.
func (r *Result) AddStage(stage Stage, vendor string) {
	r.Context.Stages = append(r.Context.Stages, StageEntry{Stage: stage, Vendor: vendor})
}

// StageNames returns the stages in execution order.
func (r *Result) StageNames() []Stage {
	names := make([]Stage, 0, len(r.Context.Stages))
	for _, s := range r.Context.Stages {
		names = append(names, s.Stage)
	}
	return names
}

// Merge folds a stage outcome into the result. Messages are concatenated in
// stage order, errors are combined with later keys winning, and every scalar
// (success, timed_out, exception, vendor attributes) is taken from the most
// recent stage.
func (r *Result) Merge(o Outcome) {
	o = o.Normalize()

	r.Messages = append(r.Messages, o.Messages...)
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	maps.Copy(r.Errors, o.Errors)

	if len(o.Attributes) > 0 {
		if r.Attributes == nil {
			r.Attributes = make(map[string]any, len(o.Attributes))
		}
		maps.Copy(r.Attributes, o.Attributes)
	}

	r.Success = o.Success
	r.TimedOut = o.TimedOut
	r.Exception = o.Exception
}

// Body is the callback payload: a single key naming the flow's result.
type Body map[string]*Result

// NewBody wraps a result under the flow's result key.
func NewBody(flow Flow, result *Result) Body {
	return Body{flow.ResultKey(): result}
}
