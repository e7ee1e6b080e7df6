// Package mock provides deterministic stand-ins for every vendor, selected
// with vendors.mode=mock. Specific inputs trigger failures so that callers
// can exercise each outcome without a vendor account.
package mock

import (
	"bytes"
	"context"
	"strings"
	"time"

	"idproof/internal/config"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
)

const (
	ResolutionVendor = "ResolutionMock"
	StateIDVendor    = "StateIdMock"
	AddressVendor    = "AddressMock"
	DocumentVendor   = "DocumentMock"
)

// Trigger values.
const (
	UnverifiableFirstName = "Bad"
	TimeoutFirstName      = "Time"
	FailingFirstName      = "Fail"
	UnverifiableSSN       = "000000000"
	UnverifiableStateID   = "00000000"
	UnverifiablePhone     = "7035555555"
	FailingImage          = "fail"
	NotLiveSelfie         = "not-live"
	MockInstanceID        = "mock-instance-id"
)

// Catalog returns a catalog made entirely of mocks.
func Catalog(latency time.Duration) ports.Catalog {
	return ports.Catalog{
		Resolution: vendor(ResolutionVendor, func() ports.Proofer { return &ResolutionProofer{Latency: latency} }),
		StateID:    vendor(StateIDVendor, func() ports.Proofer { return &StateIDProofer{Latency: latency} }),
		Address:    vendor(AddressVendor, func() ports.Proofer { return &AddressProofer{Latency: latency} }),
		Document: ports.DocumentVendor{
			Name: DocumentVendor,
			New: func(config.Settings) (ports.DocumentProofer, error) {
				return &DocumentProofer{Latency: latency}, nil
			},
		},
	}
}

func vendor(name string, build func() ports.Proofer) ports.Vendor {
	return ports.Vendor{
		Name: name,
		New: func(config.Settings) (ports.Proofer, error) {
			return build(), nil
		},
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// common applies the triggers shared by the PII proofers. ok is false when a
// trigger fired and the returned outcome is final.
func common(pii proofing.PII) (proofing.Outcome, bool) {
	switch pii.Get("first_name") {
	case TimeoutFirstName:
		return proofing.Outcome{TimedOut: true}.Normalize(), false
	case FailingFirstName:
		return proofing.Outcome{Exception: "failed to contact proofing vendor"}.Normalize(), false
	}
	return proofing.Outcome{}, true
}

// ResolutionProofer mimics the resolution vendor.
type ResolutionProofer struct {
	Latency time.Duration
}

func (p *ResolutionProofer) Proof(ctx context.Context, pii proofing.PII) (proofing.Outcome, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return proofing.Outcome{}, err
	}
	if o, ok := common(pii); !ok {
		return o, nil
	}
	errs := map[string]string{}
	if strings.EqualFold(pii.Get("first_name"), UnverifiableFirstName) {
		errs["first_name"] = "Unverified first name."
	}
	if strings.ReplaceAll(pii.Get("ssn"), "-", "") == UnverifiableSSN {
		errs["ssn"] = "Unverified SSN."
	}
	return result(errs), nil
}

// StateIDProofer mimics the state ID vendor.
type StateIDProofer struct {
	Latency time.Duration
}

func (p *StateIDProofer) Proof(ctx context.Context, pii proofing.PII) (proofing.Outcome, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return proofing.Outcome{}, err
	}
	if o, ok := common(pii); !ok {
		return o, nil
	}
	errs := map[string]string{}
	if pii.Get("state_id_number") == UnverifiableStateID {
		errs["state_id_number"] = "The state ID number could not be verified"
	}
	return result(errs), nil
}

// AddressProofer mimics the phone/address vendor.
type AddressProofer struct {
	Latency time.Duration
}

func (p *AddressProofer) Proof(ctx context.Context, pii proofing.PII) (proofing.Outcome, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return proofing.Outcome{}, err
	}
	if o, ok := common(pii); !ok {
		return o, nil
	}
	errs := map[string]string{}
	phone := strings.TrimPrefix(strings.NewReplacer("-", "", " ", "", "(", "", ")", "", "+", "").Replace(pii.Get("phone")), "1")
	if phone == UnverifiablePhone {
		errs["phone"] = "The phone number could not be verified."
	}
	return result(errs), nil
}

func result(errs map[string]string) proofing.Outcome {
	return proofing.Outcome{Success: len(errs) == 0, Errors: errs}.Normalize()
}

// DocumentProofer mimics the document/biometric vendor.
type DocumentProofer struct {
	Latency time.Duration
}

func (p *DocumentProofer) PostImages(ctx context.Context, front, back []byte) (ports.DocumentOutcome, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return ports.DocumentOutcome{}, err
	}
	resultName := "Passed"
	errs := map[string]string{}
	if bytes.Equal(front, []byte(FailingImage)) || bytes.Equal(back, []byte(FailingImage)) {
		resultName = "Failed"
		errs["results"] = "Failed"
	}
	o := proofing.Outcome{
		Success: len(errs) == 0,
		Errors:  errs,
		Attributes: map[string]any{
			"result":       resultName,
			"billed":       true,
			"raw_alerts":   []map[string]any{},
			"acuant_error": map[string]any{"code": nil, "message": nil},
		},
	}
	return ports.DocumentOutcome{Outcome: o.Normalize(), InstanceID: MockInstanceID}, nil
}

func (p *DocumentProofer) MatchFace(ctx context.Context, _ string, selfie []byte) (proofing.Outcome, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return proofing.Outcome{}, err
	}
	match := len(selfie) > 0
	o := proofing.Outcome{Success: match, Attributes: map[string]any{"match_score": nil}}
	if !match {
		o.Errors = map[string]string{"selfie": "face does not match document"}
	}
	return o.Normalize(), nil
}

func (p *DocumentProofer) CheckLiveness(ctx context.Context, selfie []byte) (proofing.Outcome, error) {
	if err := wait(ctx, p.Latency); err != nil {
		return proofing.Outcome{}, err
	}
	assessment := "Live"
	if bytes.Equal(selfie, []byte(NotLiveSelfie)) {
		assessment = "NotLive"
	}
	o := proofing.Outcome{
		Success: assessment == "Live",
		Attributes: map[string]any{
			"liveness_assessment": assessment,
			"liveness_score":      nil,
		},
	}
	if !o.Success {
		o.Errors = map[string]string{"selfie": "liveness check failed"}
	}
	return o.Normalize(), nil
}
