package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/pkg/platform/httputil"
)

// MaxEventBytes bounds an inbound event. Document events carry URLs, not
// images, so this is generous.
const MaxEventBytes = 1 << 20

// ModeSync runs the invocation inline and returns the result body.
const ModeSync = "sync"

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Runner

// Runner executes one proofing invocation.
type Runner interface {
	Run(ctx context.Context, req proofing.Request, sink ports.Sink) (*proofing.Result, error)
}

// Handler accepts proofing invocations over HTTP.
type Handler struct {
	runner Runner
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewHandler constructs a handler around runner.
func NewHandler(runner Runner, logger *slog.Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger,
	}
}

// Register mounts the proofing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proof/{flow}", h.HandleProof)
}

// HandleProof handles POST /proof/{flow}. By default the invocation runs in
// the background and the caller receives the result on its callback URL;
// with ?mode=sync the body is returned in the response instead.
func (h *Handler) HandleProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	flow, err := proofing.ParseFlow(chi.URLParam(r, "flow"))
	if err != nil {
		httputil.WriteError(w, statusError(err))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxEventBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, &httputil.StatusError{
				Status:      http.StatusRequestEntityTooLarge,
				Code:        "request_too_large",
				Description: "event body exceeds limit",
				Err:         err,
			})
			return
		}
		httputil.WriteError(w, statusError(proofing.NewError(proofing.CategoryInvalidRequest, "read event", "unreadable body", err)))
		return
	}

	event, err := proofing.ParseEvent(flow, data)
	if err != nil {
		h.logger.InfoContext(ctx, "rejected proofing event",
			"request_id", requestID,
			"flow", flow,
			"error", err,
		)
		httputil.WriteError(w, statusError(err))
		return
	}
	req := event.Request(flow)

	if r.URL.Query().Get("mode") == ModeSync {
		h.runSync(w, r, req)
		return
	}

	if req.CallbackURL == "" {
		httputil.WriteError(w, &httputil.StatusError{
			Status:      http.StatusBadRequest,
			Code:        string(proofing.CategoryInvalidRequest),
			Description: "callback_url is required",
		})
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		// Run already logs and summarizes its own failures.
		_, _ = h.runner.Run(context.WithoutCancel(ctx), req, nil)
	}()

	h.logger.InfoContext(ctx, "proofing invocation accepted",
		"request_id", requestID,
		"flow", flow,
		"trace_id", req.TraceID,
	)
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"trace_id": req.TraceID})
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, req proofing.Request) {
	var body proofing.Body
	sink := func(_ context.Context, b proofing.Body) error {
		body = b
		return nil
	}
	if _, err := h.runner.Run(r.Context(), req, sink); err != nil {
		httputil.WriteError(w, statusError(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}

// Wait blocks until every background invocation has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// statusError maps the proofing error taxonomy onto HTTP statuses. Upstream
// failures are reported as bad gateway; configuration and internal faults
// never expose their description.
func statusError(err error) error {
	category := proofing.GetCategory(err)
	status := http.StatusInternalServerError
	switch category {
	case proofing.CategoryInvalidRequest:
		status = http.StatusBadRequest
	case proofing.CategoryTimeout, proofing.CategoryConnection,
		proofing.CategoryVendorProtocol, proofing.CategoryDeliveryRejected:
		status = http.StatusBadGateway
	}
	return &httputil.StatusError{
		Status:      status,
		Code:        string(category),
		Description: describe(err),
		Err:         err,
	}
}

func describe(err error) string {
	var pe *proofing.Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return proofing.RedactURL(err).Error()
}
