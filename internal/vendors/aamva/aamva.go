// Package aamva verifies state-issued identification through an AAMVA DLDV
// gateway that speaks JSON. Credentials are the issued public/private key pair
// sent as basic auth.
package aamva

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"idproof/internal/config"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/vendors/vendorhttp"
)

const (
	SettingPublicKey       = "aamva_public_key"
	SettingPrivateKey      = "aamva_private_key"
	SettingVerificationURL = "aamva_verification_url"
)

// VendorName is reported in context.stages.
const VendorName = "aamva:state_id"

const verifyPath = "/dldv/verify"

// Keys lists the settings the proofer needs.
func Keys() []config.Key {
	return []config.Key{
		config.Setting(SettingPublicKey),
		config.Setting(SettingPrivateKey),
		config.Setting(SettingVerificationURL),
	}
}

// Vendor returns the catalog entry.
func Vendor(client *http.Client) ports.Vendor {
	return ports.Vendor{
		Name: VendorName,
		Keys: Keys(),
		New: func(s config.Settings) (ports.Proofer, error) {
			return New(s, client)
		},
	}
}

// Proofer is a ports.Proofer for state ID verification.
type Proofer struct {
	client     *http.Client
	endpoint   string
	publicKey  string
	privateKey string
}

// New builds a proofer from resolved settings.
func New(s config.Settings, client *http.Client) (*Proofer, error) {
	if err := s.Require(SettingPublicKey, SettingPrivateKey, SettingVerificationURL); err != nil {
		return nil, err
	}
	if client == nil {
		client = vendorhttp.NewClient(30 * time.Second)
	}
	return &Proofer{
		client:     client,
		endpoint:   strings.TrimRight(s.Get(SettingVerificationURL), "/") + verifyPath,
		publicKey:  s.Get(SettingPublicKey),
		privateKey: s.Get(SettingPrivateKey),
	}, nil
}

type verificationRequest struct {
	StateIDNumber       string `json:"state_id_number"`
	StateIDJurisdiction string `json:"state_id_jurisdiction"`
	StateIDType         string `json:"state_id_type,omitempty"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	DOB                 string `json:"dob"`
}

type verificationResponse struct {
	Verified *bool           `json:"verified"`
	Fields   map[string]bool `json:"fields"`
}

var requiredFields = []string{"state_id_number", "state_id_jurisdiction"}

// Proof verifies the applicant's state ID. Missing ID fields fail the stage
// without contacting the gateway.
func (p *Proofer) Proof(ctx context.Context, pii proofing.PII) (proofing.Outcome, error) {
	missing := map[string]string{}
	for _, field := range requiredFields {
		if pii.Get(field) == "" {
			missing[field] = "is required"
		}
	}
	if len(missing) > 0 {
		return proofing.Outcome{Errors: missing}.Normalize(), nil
	}

	payload, err := json.Marshal(verificationRequest{
		StateIDNumber:       pii.Get("state_id_number"),
		StateIDJurisdiction: strings.ToUpper(pii.Get("state_id_jurisdiction")),
		StateIDType:         pii.Get("state_id_type"),
		FirstName:           pii.Get("first_name"),
		LastName:            pii.Get("last_name"),
		DOB:                 pii.Get("dob"),
	})
	if err != nil {
		return proofing.Outcome{}, fmt.Errorf("marshal aamva request: %w", err)
	}

	resp, err := vendorhttp.Do(ctx, p.client, VendorName, vendorhttp.Request{
		Method:      http.MethodPost,
		URL:         p.endpoint,
		Body:        payload,
		ContentType: "application/json",
		Username:    p.publicKey,
		Password:    p.privateKey,
	})
	if err != nil {
		return proofing.Outcome{}, err
	}
	return parseResponse(resp), nil
}

func parseResponse(resp vendorhttp.Response) proofing.Outcome {
	if !resp.OK() {
		return proofing.Outcome{Exception: vendorhttp.StatusException(VendorName, resp.StatusCode)}.Normalize()
	}
	var body verificationResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return proofing.Outcome{Exception: fmt.Sprintf("%s returned malformed response: %v", VendorName, err)}.Normalize()
	}
	if body.Verified == nil {
		return proofing.Outcome{Exception: VendorName + " response has no verification status"}.Normalize()
	}

	errs := map[string]string{}
	for field, ok := range body.Fields {
		if !ok {
			errs[field] = "UNVERIFIED"
		}
	}
	if !*body.Verified && len(errs) == 0 {
		errs["state_id"] = "UNVERIFIED"
	}
	return proofing.Outcome{
		Success: *body.Verified && len(errs) == 0,
		Errors:  errs,
	}.Normalize()
}
