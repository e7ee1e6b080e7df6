// Package lexisnexis talks to the LexisNexis identity conversation API. The
// same transport serves the InstantVerify (resolution) and PhoneFinder
// (address) workflows; they differ only in the workflow setting and the
// vendor name reported in context.stages.
package lexisnexis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"idproof/internal/config"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/vendors/vendorhttp"
)

const (
	SettingAccountID             = "lexisnexis_account_id"
	SettingRequestMode           = "lexisnexis_request_mode"
	SettingUsername              = "lexisnexis_username"
	SettingPassword              = "lexisnexis_password"
	SettingBaseURL               = "lexisnexis_base_url"
	SettingInstantVerifyWorkflow = "lexisnexis_instant_verify_workflow"
	SettingPhoneFinderWorkflow   = "lexisnexis_phone_finder_workflow"
)

// Vendor names as they appear in context.stages.
const (
	InstantVerifyVendor = "lexisnexis"
	PhoneFinderVendor   = "lexisnexis:phone_finder"
)

// Product selects a workflow.
type Product struct {
	vendor          string
	workflowSetting string
}

var (
	InstantVerify = Product{vendor: InstantVerifyVendor, workflowSetting: SettingInstantVerifyWorkflow}
	PhoneFinder   = Product{vendor: PhoneFinderVendor, workflowSetting: SettingPhoneFinderWorkflow}
)

// Keys lists the settings the product needs.
func (p Product) Keys() []config.Key {
	return []config.Key{
		config.Setting(SettingAccountID),
		config.Setting(SettingRequestMode),
		config.Setting(SettingUsername),
		config.Setting(SettingPassword),
		config.Setting(SettingBaseURL),
		config.Setting(p.workflowSetting),
	}
}

// Vendor returns the catalog entry for the product.
func (p Product) Vendor(client *http.Client) ports.Vendor {
	return ports.Vendor{
		Name: p.vendor,
		Keys: p.Keys(),
		New: func(s config.Settings) (ports.Proofer, error) {
			return New(p, s, client)
		},
	}
}

// Proofer is a ports.Proofer for one LexisNexis workflow.
type Proofer struct {
	product  Product
	client   *http.Client
	endpoint string
	mode     string
	account  string
	username string
	password string
	workflow string
}

// New builds a proofer from resolved settings. A nil client gets the default
// instrumented client.
func New(product Product, s config.Settings, client *http.Client) (*Proofer, error) {
	keys := make([]string, 0, 6)
	for _, k := range product.Keys() {
		keys = append(keys, k.Name)
	}
	if err := s.Require(keys...); err != nil {
		return nil, err
	}
	if client == nil {
		client = vendorhttp.NewClient(30 * time.Second)
	}

	account := s.Get(SettingAccountID)
	workflow := s.Get(product.workflowSetting)
	endpoint := fmt.Sprintf("%s/restws/identity/v2/%s/%s/conversation",
		strings.TrimRight(s.Get(SettingBaseURL), "/"),
		url.PathEscape(account),
		url.PathEscape(workflow),
	)

	return &Proofer{
		product:  product,
		client:   client,
		endpoint: endpoint,
		mode:     s.Get(SettingRequestMode),
		account:  account,
		username: s.Get(SettingUsername),
		password: s.Get(SettingPassword),
		workflow: workflow,
	}, nil
}

// Endpoint is the conversation URL requests are posted to.
func (p *Proofer) Endpoint() string {
	return p.endpoint
}

// Proof submits the applicant. Transport failures are returned as errors;
// anything the vendor says, including a non-2xx answer, is an Outcome.
func (p *Proofer) Proof(ctx context.Context, pii proofing.PII) (proofing.Outcome, error) {
	payload, err := json.Marshal(p.buildRequest(pii))
	if err != nil {
		return proofing.Outcome{}, fmt.Errorf("marshal lexisnexis request: %w", err)
	}

	resp, err := vendorhttp.Do(ctx, p.client, p.product.vendor, vendorhttp.Request{
		Method:      http.MethodPost,
		URL:         p.endpoint,
		Body:        payload,
		ContentType: "application/json",
		Username:    p.username,
		Password:    p.password,
	})
	if err != nil {
		return proofing.Outcome{}, err
	}
	return parseResponse(p.product.vendor, resp), nil
}
