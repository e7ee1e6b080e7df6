// Package httputil holds the JSON response helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
)

// StatusError is an error with an HTTP status and a machine-readable code.
type StatusError struct {
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Description
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the JSON error envelope. Anything that is not a
// StatusError is an internal error, and internal errors never carry a
// description.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := map[string]string{"error": "internal_error"}

	var se *StatusError
	if errors.As(err, &se) {
		status = se.Status
		body["error"] = se.Code
		if status < http.StatusInternalServerError && se.Description != "" {
			body["error_description"] = se.Description
		}
	}
	WriteJSON(w, status, body)
}
