package proofing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentEvent = `{
	"callback_url": "https://idp.example.com/api/callback",
	"trace_id": "trace-1",
	"encryption_key": "a2V5",
	"front_image_iv": "aXYx",
	"back_image_iv": "aXYy",
	"selfie_image_iv": "aXYz",
	"front_image_url": "https://s3.example.com/front",
	"back_image_url": "https://s3.example.com/back",
	"selfie_image_url": "https://s3.example.com/selfie",
	"liveness_checking_enabled": true
}`

func TestParseEvent(t *testing.T) {
	t.Run("resolution event becomes a request", func(t *testing.T) {
		ev, err := ParseEvent(FlowResolution, []byte(`{
			"applicant_pii": {"first_name": "Johnny", "ssn": "123456789"},
			"callback_url": "https://idp.example.com/api/callback",
			"trace_id": "abc",
			"should_proof_state_id": true
		}`))
		require.NoError(t, err)

		req := ev.Request(FlowResolution)
		assert.Equal(t, FlowResolution, req.Flow)
		assert.Equal(t, "abc", req.TraceID)
		assert.True(t, req.ShouldProofStateID)
		assert.Equal(t, "Johnny", req.ApplicantPII.Get("first_name"))
		assert.Nil(t, req.Document)
	})

	t.Run("missing trace id is generated", func(t *testing.T) {
		ev, err := ParseEvent(FlowAddress, []byte(`{"applicant_pii": {"phone": "5555550000"}}`))
		require.NoError(t, err)
		assert.NotEmpty(t, ev.TraceID)
	})

	t.Run("document event carries image locations", func(t *testing.T) {
		ev, err := ParseEvent(FlowDocument, []byte(documentEvent))
		require.NoError(t, err)

		req := ev.Request(FlowDocument)
		require.NotNil(t, req.Document)
		assert.Equal(t, "https://s3.example.com/selfie", req.Document.Selfie.URL)
		assert.Equal(t, "aXYx", req.Document.Front.IV)
		assert.True(t, req.Document.LivenessCheckingEnabled)
	})

	tests := []struct {
		name string
		flow Flow
		body string
	}{
		{"malformed json", FlowResolution, `{"applicant_pii":`},
		{"missing pii", FlowResolution, `{"callback_url": "https://idp.example.com"}`},
		{"only empty pii values", FlowAddress, `{"applicant_pii": {"phone": ""}}`},
		{"bad callback url", FlowResolution, `{"applicant_pii": {"ssn": "1"}, "callback_url": "not a url"}`},
		{"document without images", FlowDocument, `{"encryption_key": "a2V5"}`},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := ParseEvent(tt.flow, []byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, CategoryInvalidRequest, GetCategory(err))
			assert.False(t, IsRetryable(err))
		})
	}
}
