package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{
			name:   "plain errors are internal",
			err:    errors.New("db failed"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
		{
			name: "wrapped client error keeps its description",
			err: fmt.Errorf("handle: %w", &StatusError{
				Status:      http.StatusBadRequest,
				Code:        "invalid_request",
				Description: "applicant_pii is required",
			}),
			status:      http.StatusBadRequest,
			code:        "invalid_request",
			description: "applicant_pii is required",
		},
		{
			name:   "upstream failure hides its description",
			err:    &StatusError{Status: http.StatusBadGateway, Code: "timeout", Description: "vendor host"},
			status: http.StatusBadGateway,
			code:   "timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["error"] != tt.code {
				t.Fatalf("error = %q, want %q", body["error"], tt.code)
			}
			desc, ok := body["error_description"]
			if tt.description == "" && ok {
				t.Fatalf("unexpected error_description %q", desc)
			}
			if desc != tt.description {
				t.Fatalf("error_description = %q, want %q", desc, tt.description)
			}
		})
	}
}

func TestStatusErrorUnwraps(t *testing.T) {
	cause := errors.New("cause")
	err := &StatusError{Status: http.StatusBadRequest, Code: "invalid_request", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected StatusError to unwrap to its cause")
	}
	if err.Error() != "invalid_request: cause" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusAccepted, map[string]string{"trace_id": "t-1"})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	if got := w.Body.String(); got != "{\"trace_id\":\"t-1\"}\n" {
		t.Fatalf("body = %q", got)
	}
}
