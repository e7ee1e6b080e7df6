// Package acuant is the document and biometric proofer. Document
// authentication goes through AssureID; the selfie is matched against the
// document portrait by the facial match service and checked by PassLive.
package acuant

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"idproof/internal/config"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/vendors/vendorhttp"
)

const (
	SettingAssureIDURL            = "acuant_assure_id_url"
	SettingAssureIDUsername       = "acuant_assure_id_username"
	SettingAssureIDPassword       = "acuant_assure_id_password"
	SettingAssureIDSubscriptionID = "acuant_assure_id_subscription_id"
	SettingFacialMatchURL         = "acuant_facial_match_url"
	SettingPassLiveURL            = "acuant_passlive_url"
	SettingTimeout                = "acuant_timeout"
)

// VendorName is reported in context.stages for every document sub-stage.
const VendorName = "acuant"

// Keys lists the settings the proofer needs.
func Keys() []config.Key {
	return []config.Key{
		config.Setting(SettingAssureIDURL),
		config.Setting(SettingAssureIDUsername),
		config.Setting(SettingAssureIDPassword),
		config.Setting(SettingAssureIDSubscriptionID),
		config.Setting(SettingFacialMatchURL),
		config.Setting(SettingPassLiveURL),
		config.Setting(SettingTimeout),
	}
}

// Vendor returns the catalog entry.
func Vendor(client *http.Client) ports.DocumentVendor {
	return ports.DocumentVendor{
		Name: VendorName,
		Keys: Keys(),
		New: func(s config.Settings) (ports.DocumentProofer, error) {
			return New(s, client)
		},
	}
}

// Proofer implements ports.DocumentProofer.
type Proofer struct {
	client         *http.Client
	assureIDURL    string
	facialMatchURL string
	passLiveURL    string
	username       string
	password       string
	subscriptionID string
	timeout        time.Duration
}

// New builds a proofer from resolved settings. acuant_timeout is in seconds
// and bounds each vendor request.
func New(s config.Settings, client *http.Client) (*Proofer, error) {
	names := make([]string, 0, 7)
	for _, k := range Keys() {
		names = append(names, k.Name)
	}
	if err := s.Require(names...); err != nil {
		return nil, err
	}
	seconds, err := strconv.ParseFloat(s.Get(SettingTimeout), 64)
	if err != nil || seconds <= 0 {
		return nil, &proofing.MisconfiguredError{Setting: SettingTimeout, Underlying: err}
	}
	if client == nil {
		client = vendorhttp.NewClient(0)
	}
	return &Proofer{
		client:         client,
		assureIDURL:    strings.TrimRight(s.Get(SettingAssureIDURL), "/"),
		facialMatchURL: strings.TrimRight(s.Get(SettingFacialMatchURL), "/"),
		passLiveURL:    strings.TrimRight(s.Get(SettingPassLiveURL), "/"),
		username:       s.Get(SettingAssureIDUsername),
		password:       s.Get(SettingAssureIDPassword),
		subscriptionID: s.Get(SettingAssureIDSubscriptionID),
		timeout:        time.Duration(seconds * float64(time.Second)),
	}, nil
}

func (p *Proofer) do(ctx context.Context, op string, r vendorhttp.Request) (vendorhttp.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	r.Username = p.username
	r.Password = p.password
	return vendorhttp.Do(ctx, p.client, op, r)
}

// failure builds the outcome for a vendor call that answered but could not be
// used. acuant_error carries the HTTP status when there was one.
func failure(status int, message string) proofing.Outcome {
	var code any
	if status != 0 {
		code = status
	}
	return proofing.Outcome{
		Exception: message,
		Attributes: map[string]any{
			"acuant_error": map[string]any{"code": code, "message": message},
		},
	}.Normalize()
}
