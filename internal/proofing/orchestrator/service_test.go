package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idproof/internal/audit"
	auditmemory "idproof/internal/audit/store/memory"
	"idproof/internal/config"
	"idproof/internal/config/paramstore/memory"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/proofing/ports/mocks"
)

const (
	callbackURL = "https://idp.example.com/api/callbacks/proof-resolution/:token"
	traceID     = "trace-123"
	token       = "s3cret"
)

type OrchestratorSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	resolution *mocks.MockProofer
	stateID    *mocks.MockProofer
	address    *mocks.MockProofer
	document   *mocks.MockDocumentProofer
	images     *mocks.MockImageLoader
	deliverer  *mocks.MockDeliverer
	summaries  *auditmemory.InMemoryStore
	params     map[string]string
	env        map[string]string
	service    *Service
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolution = mocks.NewMockProofer(s.ctrl)
	s.stateID = mocks.NewMockProofer(s.ctrl)
	s.address = mocks.NewMockProofer(s.ctrl)
	s.document = mocks.NewMockDocumentProofer(s.ctrl)
	s.images = mocks.NewMockImageLoader(s.ctrl)
	s.deliverer = mocks.NewMockDeliverer(s.ctrl)
	s.summaries = auditmemory.NewInMemoryStore()
	s.env = map[string]string{proofing.TokenSetting: token}
	s.params = map[string]string{
		"primary_key":   "p",
		"dependent_key": "d",
		"address_key":   "a",
		"document_key":  "doc",
	}
	s.service = nil
}

func (s *OrchestratorSuite) svc() *Service {
	if s.service != nil {
		return s.service
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := config.NewResolver(memory.New(s.params),
		config.WithLogger(logger),
		config.WithLookup(func(name string) (string, bool) {
			v, ok := s.env[name]
			return v, ok
		}),
	)
	catalog := ports.Catalog{
		Resolution: vendorFor("lexisnexis", "primary_key", s.resolution),
		StateID:    vendorFor("aamva:state_id", "dependent_key", s.stateID),
		Address:    vendorFor("lexisnexis:phone_finder", "address_key", s.address),
		Document: ports.DocumentVendor{
			Name: "acuant",
			Keys: []config.Key{config.Setting("document_key")},
			New: func(config.Settings) (ports.DocumentProofer, error) {
				return s.document, nil
			},
		},
	}
	s.service = New(catalog, resolver, s.deliverer,
		WithLogger(logger),
		WithImageLoader(s.images),
		WithEmitter(audit.NewEmitter(audit.WithLogger(logger), audit.WithStore(s.summaries))),
	)
	return s.service
}

func vendorFor(name, key string, p ports.Proofer) ports.Vendor {
	return ports.Vendor{
		Name: name,
		Keys: []config.Key{config.Setting(key)},
		New: func(settings config.Settings) (ports.Proofer, error) {
			if err := settings.Require(key); err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

func resolutionRequest(withStateID bool) proofing.Request {
	return proofing.Request{
		Flow:               proofing.FlowResolution,
		ApplicantPII:       proofing.PII{"first_name": "Johnny", "ssn": "123456789"},
		CallbackURL:        callbackURL,
		TraceID:            traceID,
		ShouldProofStateID: withStateID,
	}
}

// captureBody records the delivered body as generic JSON.
func (s *OrchestratorSuite) captureBody(into *map[string]any) func(context.Context, string, string, proofing.Body) error {
	return func(_ context.Context, _ string, _ string, body proofing.Body) error {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		s.Require().NoError(json.Unmarshal(raw, into))
		return nil
	}
}

func (s *OrchestratorSuite) summary() audit.Summary {
	got, err := s.summaries.ListByTrace(context.Background(), traceID)
	s.Require().NoError(err)
	s.Require().Len(got, 1, "exactly one summary per invocation")
	return got[0]
}

func (s *OrchestratorSuite) TestPrimaryOnly() {
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.stateID.EXPECT().Proof(gomock.Any(), gomock.Any()).Times(0)

	var body map[string]any
	s.deliverer.EXPECT().Deliver(gomock.Any(), callbackURL, token, gomock.Any()).DoAndReturn(s.captureBody(&body))

	_, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)
	s.Require().NoError(err)

	s.Equal(map[string]any{
		"resolution_result": map[string]any{
			"success":   true,
			"errors":    map[string]any{},
			"messages":  []any{},
			"context":   map[string]any{"stages": []any{map[string]any{"resolution": "lexisnexis"}}},
			"timed_out": false,
			"exception": nil,
		},
	}, body)

	sum := s.summary()
	s.Equal("proof_resolution", sum.Name)
	s.True(sum.Success)
	s.Len(sum.Timing, 1)
}

func (s *OrchestratorSuite) TestPrimaryAndDependentInOrder() {
	gomock.InOrder(
		s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).
			Return(proofing.Outcome{Success: true, Messages: []string{"resolution ok"}, Errors: map[string]string{"a": "1"}}, nil),
		s.stateID.EXPECT().Proof(gomock.Any(), gomock.Any()).
			Return(proofing.Outcome{Success: true, Messages: []string{"state id ok"}, Errors: map[string]string{"a": "2"}}, nil),
	)

	var delivered proofing.Body
	s.deliverer.EXPECT().Deliver(gomock.Any(), callbackURL, token, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, body proofing.Body) error {
			delivered = body
			return nil
		})

	result, err := s.svc().Run(context.Background(), resolutionRequest(true), nil)
	s.Require().NoError(err)

	s.Same(result, delivered["resolution_result"])
	s.Equal([]proofing.Stage{proofing.StageResolution, proofing.StageStateID}, result.StageNames())
	s.Equal("aamva:state_id", result.Context.Stages[1].Vendor)
	s.Equal([]string{"resolution ok", "state id ok"}, result.Messages)
	s.Equal(map[string]string{"a": "2"}, result.Errors)
	s.True(result.Success)

	sum := s.summary()
	s.Len(sum.Stages, 2)
	s.Equal([]string{"resolution", "state_id"}, []string{sum.Timing[0].Stage, sum.Timing[1].Stage})
}

func (s *OrchestratorSuite) TestFailedPrimaryShortCircuits() {
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).
		Return(proofing.Outcome{Errors: map[string]string{"ssn": "Unverified SSN."}}, nil)
	s.stateID.EXPECT().Proof(gomock.Any(), gomock.Any()).Times(0)

	var delivered proofing.Body
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, body proofing.Body) error {
			delivered = body
			return nil
		})

	result, err := s.svc().Run(context.Background(), resolutionRequest(true), nil)
	s.Require().NoError(err)

	s.False(result.Success)
	s.Equal([]proofing.Stage{proofing.StageResolution}, delivered["resolution_result"].StageNames())
	s.False(s.summary().Success)
}

func (s *OrchestratorSuite) TestExceptionOnDependentFailsResult() {
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.stateID.EXPECT().Proof(gomock.Any(), gomock.Any()).
		Return(proofing.Outcome{Success: true, Exception: "aamva responded with status 500"}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.svc().Run(context.Background(), resolutionRequest(true), nil)
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal("aamva responded with status 500", result.Exception)
}

func (s *OrchestratorSuite) TestMissingTokenFailsBeforeAnyVendorCall() {
	delete(s.env, proofing.TokenSetting)
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Times(0)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)

	var mis *proofing.MisconfiguredError
	s.Require().ErrorAs(err, &mis)
	s.Equal("IDP_API_AUTH_TOKEN is not configured", err.Error())

	sum := s.summary()
	s.False(sum.Success)
	s.Equal("IDP_API_AUTH_TOKEN is not configured", sum.Error)
}

func (s *OrchestratorSuite) TestTokenFromParameterStore() {
	delete(s.env, proofing.TokenSetting)
	s.params[ResolutionTokenParam] = "from-store"
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), callbackURL, "from-store", gomock.Any()).Return(nil)

	_, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)
	s.NoError(err)
}

func (s *OrchestratorSuite) TestSinkSkipsTokenAndCallback() {
	delete(s.env, proofing.TokenSetting)
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	req := resolutionRequest(false)
	req.CallbackURL = ""
	var got proofing.Body
	_, err := s.svc().Run(context.Background(), req, func(_ context.Context, body proofing.Body) error {
		got = body
		return nil
	})
	s.Require().NoError(err)
	s.Contains(got, "resolution_result")
}

func (s *OrchestratorSuite) TestMissingCallbackURLWithoutSink() {
	req := resolutionRequest(false)
	req.CallbackURL = ""
	_, err := s.svc().Run(context.Background(), req, nil)
	s.Equal(proofing.CategoryInvalidRequest, proofing.GetCategory(err))
	s.summary()
}

func (s *OrchestratorSuite) TestMissingVendorSettingFailsBeforeVendorCall() {
	delete(s.params, "dependent_key")
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.svc().Run(context.Background(), resolutionRequest(true), nil)
	var mis *proofing.MisconfiguredError
	s.Require().ErrorAs(err, &mis)
	s.Equal("dependent_key", mis.Setting)
}

func (s *OrchestratorSuite) TestDependentSettingsOnlyWhenRequested() {
	delete(s.params, "dependent_key")
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)
	s.NoError(err)
}

func (s *OrchestratorSuite) TestRetryableErrorsAreRetriedThenPropagated() {
	transient := proofing.NewError(proofing.CategoryConnection, "lexisnexis", "connection failed", errors.New("refused"))
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{}, transient).Times(3)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.svc().Run(context.Background(), resolutionRequest(true), nil)
	s.ErrorIs(err, transient)

	sum := s.summary()
	s.Equal([]audit.StageStatus{{Stage: "resolution", Vendor: "lexisnexis", Success: false}}, sum.Stages)
	s.Len(sum.Timing, 1)
}

func (s *OrchestratorSuite) TestTransientThenSuccess() {
	transient := proofing.NewError(proofing.CategoryTimeout, "lexisnexis", "request timed out", nil)
	gomock.InOrder(
		s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{}, transient),
		s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil),
	)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)
	s.Require().NoError(err)
	s.True(result.Success)
}

func (s *OrchestratorSuite) TestFatalAdapterErrorAbortsImmediately() {
	fatal := errors.New("unexpected")
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{}, fatal).Times(1)

	_, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)
	s.ErrorIs(err, fatal)
}

func (s *OrchestratorSuite) TestDeliveryFailurePropagates() {
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	rejected := &proofing.DeliveryError{StatusCode: 500, Host: "idp.example.com"}
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(rejected)

	_, err := s.svc().Run(context.Background(), resolutionRequest(false), nil)
	s.Equal(proofing.CategoryDeliveryRejected, proofing.GetCategory(err))
	s.False(s.summary().Success)
}

func (s *OrchestratorSuite) TestAddressFlow() {
	s.address.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)

	var body map[string]any
	s.deliverer.EXPECT().Deliver(gomock.Any(), callbackURL, token, gomock.Any()).DoAndReturn(s.captureBody(&body))

	req := resolutionRequest(false)
	req.Flow = proofing.FlowAddress
	_, err := s.svc().Run(context.Background(), req, nil)
	s.Require().NoError(err)

	s.Equal(map[string]any{
		"address_result": map[string]any{
			"success":   true,
			"errors":    map[string]any{},
			"messages":  []any{},
			"context":   map[string]any{"stages": []any{map[string]any{"address": "lexisnexis:phone_finder"}}},
			"timed_out": false,
			"exception": nil,
		},
	}, body)
	s.Equal("proof_address", s.summary().Name)
}

func documentRequest(liveness bool) proofing.Request {
	return proofing.Request{
		Flow:        proofing.FlowDocument,
		CallbackURL: callbackURL,
		TraceID:     traceID,
		Document: &proofing.DocumentRequest{
			EncryptionKey:           "key",
			LivenessCheckingEnabled: liveness,
		},
	}
}

var testImages = ports.Images{Front: []byte("front"), Back: []byte("back"), Selfie: []byte("selfie")}

func (s *OrchestratorSuite) TestDocumentFlowWithLiveness() {
	s.images.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testImages, nil)
	gomock.InOrder(
		s.document.EXPECT().PostImages(gomock.Any(), testImages.Front, testImages.Back).
			Return(ports.DocumentOutcome{
				Outcome: proofing.Outcome{Success: true, Attributes: map[string]any{
					"result":       "Passed",
					"billed":       true,
					"raw_alerts":   []map[string]any{},
					"acuant_error": map[string]any{"code": nil, "message": nil},
				}},
				InstanceID: "instance-1",
			}, nil),
		s.document.EXPECT().MatchFace(gomock.Any(), "instance-1", testImages.Selfie).
			Return(proofing.Outcome{Success: true, Attributes: map[string]any{"match_score": nil}}, nil),
		s.document.EXPECT().CheckLiveness(gomock.Any(), testImages.Selfie).
			Return(proofing.Outcome{Success: true, Attributes: map[string]any{"liveness_assessment": "Live", "liveness_score": nil}}, nil),
	)

	var body map[string]any
	s.deliverer.EXPECT().Deliver(gomock.Any(), callbackURL, token, gomock.Any()).DoAndReturn(s.captureBody(&body))

	_, err := s.svc().Run(context.Background(), documentRequest(true), nil)
	s.Require().NoError(err)

	got := body["document_result"].(map[string]any)
	s.Equal(true, got["success"])
	s.Equal("Passed", got["result"])
	s.Equal(true, got["billed"])
	s.Equal("Live", got["liveness_assessment"])
	s.Nil(got["match_score"])
	s.Nil(got["exception"])
	s.Equal([]any{}, got["raw_alerts"])
	s.Equal(map[string]any{"code": nil, "message": nil}, got["acuant_error"])
	s.Equal([]any{
		map[string]any{"document": "acuant"},
		map[string]any{"facial_match": "acuant"},
		map[string]any{"liveness": "acuant"},
	}, got["context"].(map[string]any)["stages"])

	sum := s.summary()
	stages := make([]string, 0, len(sum.Timing))
	for _, t := range sum.Timing {
		stages = append(stages, t.Stage)
	}
	s.Equal([]string{"images", "document", "facial_match", "liveness"}, stages)
}

func (s *OrchestratorSuite) TestDocumentFlowAttemptsEveryStage() {
	s.images.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testImages, nil)
	s.document.EXPECT().PostImages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.DocumentOutcome{
			Outcome:    proofing.Outcome{Errors: map[string]string{"results": "Failed"}},
			InstanceID: "instance-1",
		}, nil)
	s.document.EXPECT().MatchFace(gomock.Any(), "instance-1", gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.document.EXPECT().CheckLiveness(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.svc().Run(context.Background(), documentRequest(true), nil)
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal(map[string]string{"results": "Failed"}, result.Errors)
}

func (s *OrchestratorSuite) TestFaceMatchSkippedWithoutInstance() {
	s.images.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testImages, nil)
	s.document.EXPECT().PostImages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.DocumentOutcome{Outcome: proofing.Outcome{Exception: "acuant responded with status 500"}}, nil)
	s.document.EXPECT().MatchFace(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.document.EXPECT().CheckLiveness(gomock.Any(), testImages.Selfie).Return(proofing.Outcome{Success: true}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.svc().Run(context.Background(), documentRequest(true), nil)
	s.Require().NoError(err)

	s.False(result.Success)
	s.Equal([]proofing.Stage{proofing.StageDocument, proofing.StageFacialMatch, proofing.StageLiveness}, result.StageNames())
	s.Contains(result.Errors, "selfie")

	sum := s.summary()
	s.Equal([]audit.StageStatus{
		{Stage: "images", Success: true},
		{Stage: "document", Vendor: "acuant", Success: false},
		{Stage: "facial_match", Vendor: "acuant", Success: false},
		{Stage: "liveness", Vendor: "acuant", Success: true},
	}, sum.Stages)
	for _, t := range sum.Timing {
		s.NotEqual("facial_match", t.Stage, "a skipped call is not timed")
	}
}

func (s *OrchestratorSuite) TestDocumentScalarsComeFromLastStage() {
	s.images.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testImages, nil)
	s.document.EXPECT().PostImages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.DocumentOutcome{
			Outcome: proofing.Outcome{
				Exception:  "acuant responded with status 500",
				Attributes: map[string]any{"acuant_error": map[string]any{"code": 500, "message": "boom"}},
			},
			InstanceID: "instance-1",
		}, nil)
	s.document.EXPECT().MatchFace(gomock.Any(), "instance-1", gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.document.EXPECT().CheckLiveness(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.svc().Run(context.Background(), documentRequest(true), nil)
	s.Require().NoError(err)

	s.False(result.Success, "a failed stage fails the aggregate")
	s.Empty(result.Exception, "exception is taken from the last stage")
	s.Equal(map[string]any{"code": 500, "message": "boom"}, result.Attributes["acuant_error"])
}

func (s *OrchestratorSuite) TestAdapterPanicIsSummarizedAsFailure() {
	s.resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)
	s.stateID.EXPECT().Proof(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, proofing.PII) (proofing.Outcome, error) {
			panic("nil map in adapter")
		})
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	var (
		result *proofing.Result
		err    error
	)
	s.NotPanics(func() {
		result, err = s.svc().Run(context.Background(), resolutionRequest(true), nil)
	})
	s.Nil(result)
	s.Equal(proofing.CategoryInternal, proofing.GetCategory(err))
	s.ErrorContains(err, "nil map in adapter")

	sum := s.summary()
	s.False(sum.Success)
	s.Contains(sum.Error, "nil map in adapter")
	s.Equal([]audit.StageStatus{
		{Stage: "resolution", Vendor: "lexisnexis", Success: true},
		{Stage: "state_id", Vendor: "aamva:state_id", Success: false},
	}, sum.Stages)
	s.Len(sum.Timing, 2)
}

func (s *OrchestratorSuite) TestDocumentFlowWithoutLiveness() {
	s.images.EXPECT().Load(gomock.Any(), gomock.Any()).Return(testImages, nil)
	s.document.EXPECT().PostImages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.DocumentOutcome{Outcome: proofing.Outcome{Success: true}}, nil)
	s.document.EXPECT().MatchFace(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.document.EXPECT().CheckLiveness(gomock.Any(), gomock.Any()).Times(0)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.svc().Run(context.Background(), documentRequest(false), nil)
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal([]proofing.Stage{proofing.StageDocument}, result.StageNames())
}

func (s *OrchestratorSuite) TestImageFailureAbortsWithoutCallback() {
	s.images.EXPECT().Load(gomock.Any(), gomock.Any()).
		Return(ports.Images{}, proofing.NewError(proofing.CategoryVendorProtocol, "load front image", "status 403", nil))
	s.document.EXPECT().PostImages(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.svc().Run(context.Background(), documentRequest(true), nil)
	s.Equal(proofing.CategoryVendorProtocol, proofing.GetCategory(err))
}

func (s *OrchestratorSuite) TestUnknownFlow() {
	req := resolutionRequest(false)
	req.Flow = "selfie"
	_, err := s.svc().Run(context.Background(), req, nil)
	s.Equal(proofing.CategoryInvalidRequest, proofing.GetCategory(err))
	s.Equal("proof_selfie", s.summary().Name)
}

func TestSummaryEmittedWithoutEmitterOption(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctrl := gomock.NewController(t)
	resolution := mocks.NewMockProofer(ctrl)
	resolution.EXPECT().Proof(gomock.Any(), gomock.Any()).Return(proofing.Outcome{Success: true}, nil)

	resolver := config.NewResolver(memory.New(map[string]string{"primary_key": "p"}), config.WithLogger(logger))
	svc := New(ports.Catalog{Resolution: vendorFor("lexisnexis", "primary_key", resolution)}, resolver, nil, WithLogger(logger))

	_, err := svc.Run(context.Background(), resolutionRequest(false), func(context.Context, proofing.Body) error { return nil })
	require.NoError(t, err)

	var summaries []map[string]any
	for line := range strings.Lines(buf.String()) {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		if record["msg"] == "proofing summary" {
			summaries = append(summaries, record)
		}
	}
	require.Len(t, summaries, 1)
	assert.Equal(t, "proof_resolution", summaries[0]["name"])
	assert.Equal(t, traceID, summaries[0]["trace_id"])
	assert.Equal(t, true, summaries[0]["resolution_success"])
	assert.Equal(t, true, summaries[0]["success"])
}

func TestTokenKey(t *testing.T) {
	key := TokenKey(proofing.FlowDocument)
	if key.Name != proofing.TokenSetting || key.Param != DocumentTokenParam {
		t.Fatalf("unexpected token key %+v", key)
	}
}
