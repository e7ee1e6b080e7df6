package proofing

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Event is the inbound invocation payload. Document fields are flattened at
// the top level and only validated for the document flow.
type Event struct {
	ApplicantPII       PII    `json:"applicant_pii"`
	CallbackURL        string `json:"callback_url" validate:"omitempty,url"`
	TraceID            string `json:"trace_id" validate:"omitempty,max=128"`
	ShouldProofStateID bool   `json:"should_proof_state_id"`

	DocumentFields `validate:"-"`
}

// DocumentFields are the document-flow members of an Event.
type DocumentFields struct {
	EncryptionKey           string `json:"encryption_key" validate:"required"`
	FrontImageIV            string `json:"front_image_iv" validate:"required"`
	BackImageIV             string `json:"back_image_iv" validate:"required"`
	SelfieImageIV           string `json:"selfie_image_iv" validate:"required"`
	FrontImageURL           string `json:"front_image_url" validate:"required,url"`
	BackImageURL            string `json:"back_image_url" validate:"required,url"`
	SelfieImageURL          string `json:"selfie_image_url" validate:"required,url"`
	LivenessCheckingEnabled bool   `json:"liveness_checking_enabled"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		validateInst = v
	})
	return validateInst
}

// ParseEvent decodes and validates an inbound event for the given flow. Every
// failure is an invalid_request error; nothing downstream runs on a bad event.
func ParseEvent(flow Flow, data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, NewError(CategoryInvalidRequest, "parse event", "malformed JSON", err)
	}
	if err := ev.Validate(flow); err != nil {
		return nil, err
	}
	if ev.TraceID == "" {
		ev.TraceID = uuid.NewString()
	}
	return &ev, nil
}

// Validate checks the event against the rules of the given flow.
func (e *Event) Validate(flow Flow) error {
	v := validatorInstance()
	if err := v.Struct(e); err != nil {
		return convertValidationError(err)
	}

	switch flow {
	case FlowResolution, FlowAddress:
		if len(e.ApplicantPII.Fields()) == 0 {
			return NewError(CategoryInvalidRequest, "validate event", "applicant_pii is required", nil)
		}
	case FlowDocument:
		if err := v.Struct(e.DocumentFields); err != nil {
			return convertValidationError(err)
		}
	default:
		return NewError(CategoryInvalidRequest, "validate event", fmt.Sprintf("unknown flow %q", flow), nil)
	}
	return nil
}

// Request converts the event into an immutable orchestration request.
func (e *Event) Request(flow Flow) Request {
	req := Request{
		Flow:               flow,
		ApplicantPII:       e.ApplicantPII,
		CallbackURL:        e.CallbackURL,
		TraceID:            e.TraceID,
		ShouldProofStateID: e.ShouldProofStateID,
	}
	if flow == FlowDocument {
		req.Document = &DocumentRequest{
			EncryptionKey:           e.EncryptionKey,
			Front:                   EncryptedImage{URL: e.FrontImageURL, IV: e.FrontImageIV},
			Back:                    EncryptedImage{URL: e.BackImageURL, IV: e.BackImageIV},
			Selfie:                  EncryptedImage{URL: e.SelfieImageURL, IV: e.SelfieImageIV},
			LivenessCheckingEnabled: e.LivenessCheckingEnabled,
		}
	}
	return req
}

func convertValidationError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		msg := fmt.Sprintf("%s failed validation for tag '%s'", fe.Field(), fe.Tag())
		return NewError(CategoryInvalidRequest, "validate event", msg, err)
	}
	return NewError(CategoryInvalidRequest, "validate event", err.Error(), err)
}
