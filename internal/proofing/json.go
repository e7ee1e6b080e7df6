package proofing

import (
	"encoding/json"
	"fmt"
)

// coreResultFields are owned by Result and cannot be shadowed by vendor
// attributes when flattened.
var coreResultFields = map[string]struct{}{
	"success":   {},
	"errors":    {},
	"messages":  {},
	"context":   {},
	"timed_out": {},
	"exception": {},
}

// MarshalJSON renders the entry as a single-key object, {"resolution": "vendor"}.
func (e StageEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{string(e.Stage): e.Vendor})
}

// UnmarshalJSON reads the single-key form written by MarshalJSON.
func (e *StageEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("stage entry must have exactly one key, got %d", len(raw))
	}
	for stage, vendor := range raw {
		e.Stage = Stage(stage)
		e.Vendor = vendor
	}
	return nil
}

// MarshalJSON flattens vendor attributes next to the core fields. Keys are
// emitted in sorted order so the payload is canonical.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(coreResultFields)+len(r.Attributes))
	for k, v := range r.Attributes {
		if _, reserved := coreResultFields[k]; reserved {
			continue
		}
		out[k] = v
	}

	errs := r.Errors
	if errs == nil {
		errs = map[string]string{}
	}
	msgs := r.Messages
	if msgs == nil {
		msgs = []string{}
	}
	stages := r.Context.Stages
	if stages == nil {
		stages = []StageEntry{}
	}

	out["success"] = r.Success
	out["errors"] = errs
	out["messages"] = msgs
	out["context"] = ResultContext{Stages: stages}
	out["timed_out"] = r.TimedOut
	if r.Exception != "" {
		out["exception"] = r.Exception
	} else {
		out["exception"] = nil
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON; unknown keys land in Attributes.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = *NewResult()
	for key, value := range raw {
		var err error
		switch key {
		case "success":
			err = json.Unmarshal(value, &r.Success)
		case "errors":
			err = json.Unmarshal(value, &r.Errors)
		case "messages":
			err = json.Unmarshal(value, &r.Messages)
		case "context":
			err = json.Unmarshal(value, &r.Context)
		case "timed_out":
			err = json.Unmarshal(value, &r.TimedOut)
		case "exception":
			var exc *string
			err = json.Unmarshal(value, &exc)
			if exc != nil {
				r.Exception = *exc
			}
		default:
			var attr any
			err = json.Unmarshal(value, &attr)
			if r.Attributes == nil {
				r.Attributes = map[string]any{}
			}
			r.Attributes[key] = attr
		}
		if err != nil {
			return fmt.Errorf("decode result field %q: %w", key, err)
		}
	}
	return nil
}
