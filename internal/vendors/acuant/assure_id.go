package acuant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
	"idproof/internal/vendors/vendorhttp"
)

// ResultCode is the AssureID document authentication result.
type ResultCode int

const (
	ResultUnknown ResultCode = iota
	ResultPassed
	ResultFailed
	ResultSkipped
	ResultCaution
	ResultAttention
)

var resultNames = map[ResultCode]string{
	ResultUnknown:   "Unknown",
	ResultPassed:    "Passed",
	ResultFailed:    "Failed",
	ResultSkipped:   "Skipped",
	ResultCaution:   "Caution",
	ResultAttention: "Attention",
}

func (c ResultCode) String() string {
	if name, ok := resultNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Billed reports whether AssureID charges for a result.
func (c ResultCode) Billed() bool {
	switch c {
	case ResultPassed, ResultFailed, ResultCaution, ResultAttention:
		return true
	default:
		return false
	}
}

// Image sides as AssureID numbers them.
const (
	sideFront = 0
	sideBack  = 1
)

type instanceRequest struct {
	AuthenticationSensitivity int            `json:"AuthenticationSensitivity"`
	ClassificationMode        int            `json:"ClassificationMode"`
	Device                    instanceDevice `json:"Device"`
	ImageCroppingExpectedSize string         `json:"ImageCroppingExpectedSize"`
	ImageCroppingMode         string         `json:"ImageCroppingMode"`
	ManualDocumentType        any            `json:"ManualDocumentType"`
	ProcessMode               int            `json:"ProcessMode"`
	SubscriptionID            string         `json:"SubscriptionId"`
}

type instanceDevice struct {
	HasContactlessChipReader bool   `json:"HasContactlessChipReader"`
	HasMagneticStripeReader  bool   `json:"HasMagneticStripeReader"`
	SerialNumber             string `json:"SerialNumber"`
	Type                     struct {
		Manufacturer string `json:"Manufacturer"`
		Model        string `json:"Model"`
		SensorType   int    `json:"SensorType"`
	} `json:"Type"`
}

type alert struct {
	Key         string `json:"Key"`
	Name        string `json:"Name"`
	Result      int    `json:"Result"`
	Disposition string `json:"Disposition"`
}

type resultsResponse struct {
	Result *int    `json:"Result"`
	Alerts []alert `json:"Alerts"`
}

// PostImages creates a document instance, uploads both sides and retrieves
// the authentication result.
func (p *Proofer) PostImages(ctx context.Context, front, back []byte) (ports.DocumentOutcome, error) {
	instanceID, failed, err := p.createInstance(ctx)
	if err != nil || failed != nil {
		return documentOutcome(failed, ""), err
	}
	for _, side := range []struct {
		n    int
		data []byte
	}{{sideFront, front}, {sideBack, back}} {
		failed, err := p.uploadImage(ctx, instanceID, side.n, side.data)
		if err != nil || failed != nil {
			return documentOutcome(failed, instanceID), err
		}
	}
	out, err := p.results(ctx, instanceID)
	return ports.DocumentOutcome{Outcome: out, InstanceID: instanceID}, err
}

func documentOutcome(o *proofing.Outcome, instanceID string) ports.DocumentOutcome {
	if o == nil {
		return ports.DocumentOutcome{InstanceID: instanceID}
	}
	return ports.DocumentOutcome{Outcome: *o, InstanceID: instanceID}
}

func (p *Proofer) documentURL(instanceID string) string {
	return p.assureIDURL + "/AssureIDService/Document/" + url.PathEscape(instanceID)
}

func (p *Proofer) createInstance(ctx context.Context) (string, *proofing.Outcome, error) {
	req := instanceRequest{
		AuthenticationSensitivity: 0,
		ClassificationMode:        0,
		ImageCroppingExpectedSize: "1",
		ImageCroppingMode:         "1",
		ProcessMode:               0,
		SubscriptionID:            p.subscriptionID,
	}
	req.Device.Type.Manufacturer = "idproof"
	req.Device.Type.Model = "web"
	req.Device.Type.SensorType = 3
	payload, err := json.Marshal(req)
	if err != nil {
		return "", nil, fmt.Errorf("marshal acuant instance request: %w", err)
	}

	resp, err := p.do(ctx, "acuant create instance", vendorhttp.Request{
		Method:      http.MethodPost,
		URL:         p.assureIDURL + "/AssureIDService/Document/Instance",
		Body:        payload,
		ContentType: "application/json",
	})
	if err != nil {
		return "", nil, err
	}
	if !resp.OK() {
		o := failure(resp.StatusCode, vendorhttp.StatusException("acuant create instance", resp.StatusCode))
		return "", &o, nil
	}
	var id string
	if err := json.Unmarshal(resp.Body, &id); err != nil || id == "" {
		o := failure(0, "acuant create instance returned no instance id")
		return "", &o, nil
	}
	return id, nil, nil
}

func (p *Proofer) uploadImage(ctx context.Context, instanceID string, side int, image []byte) (*proofing.Outcome, error) {
	resp, err := p.do(ctx, "acuant upload image", vendorhttp.Request{
		Method:      http.MethodPost,
		URL:         p.documentURL(instanceID) + "/Image?light=0&side=" + strconv.Itoa(side),
		Body:        image,
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		o := failure(resp.StatusCode, vendorhttp.StatusException("acuant upload image", resp.StatusCode))
		return &o, nil
	}
	return nil, nil
}

func (p *Proofer) results(ctx context.Context, instanceID string) (proofing.Outcome, error) {
	resp, err := p.do(ctx, "acuant get results", vendorhttp.Request{
		Method: http.MethodGet,
		URL:    p.documentURL(instanceID),
	})
	if err != nil {
		return proofing.Outcome{}, err
	}
	return parseResults(resp), nil
}

func parseResults(resp vendorhttp.Response) proofing.Outcome {
	if !resp.OK() {
		return failure(resp.StatusCode, vendorhttp.StatusException("acuant get results", resp.StatusCode))
	}
	var body resultsResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Result == nil {
		return failure(0, "acuant get results returned malformed response")
	}
	code := ResultCode(*body.Result)

	rawAlerts := make([]map[string]any, 0, len(body.Alerts))
	errs := map[string]string{}
	for _, a := range body.Alerts {
		if ResultCode(a.Result) == ResultPassed {
			continue
		}
		rawAlerts = append(rawAlerts, map[string]any{
			"key":         a.Key,
			"name":        a.Name,
			"result":      ResultCode(a.Result).String(),
			"disposition": a.Disposition,
		})
		key := a.Key
		if key == "" {
			key = a.Name
		}
		errs[key] = a.Disposition
	}
	if code != ResultPassed && len(errs) == 0 {
		errs["results"] = code.String()
	}

	return proofing.Outcome{
		Success: code == ResultPassed,
		Errors:  errs,
		Attributes: map[string]any{
			"result":       code.String(),
			"billed":       code.Billed(),
			"raw_alerts":   rawAlerts,
			"acuant_error": map[string]any{"code": nil, "message": nil},
		},
	}.Normalize()
}
