package acuant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"idproof/internal/proofing"
	"idproof/internal/vendors/vendorhttp"
)

const livenessLive = "Live"

type faceMatchRequest struct {
	Data struct {
		ImageOne string `json:"ImageOne"`
		ImageTwo string `json:"ImageTwo"`
	} `json:"Data"`
	Settings struct {
		SubscriptionID string `json:"SubscriptionId"`
	} `json:"Settings"`
}

type faceMatchResponse struct {
	IsMatch *bool    `json:"IsMatch"`
	Score   *float64 `json:"Score"`
}

type livenessRequest struct {
	Settings struct {
		SubscriptionID     string            `json:"SubscriptionId"`
		AdditionalSettings map[string]string `json:"AdditionalSettings"`
	} `json:"Settings"`
	Image string `json:"Image"`
}

type livenessResponse struct {
	LivenessResult *struct {
		LivenessAssessment string   `json:"LivenessAssessment"`
		Score              *float64 `json:"Score"`
	} `json:"LivenessResult"`
	Error     string `json:"Error"`
	ErrorCode string `json:"ErrorCode"`
}

// MatchFace compares the selfie with the portrait on the document.
func (p *Proofer) MatchFace(ctx context.Context, instanceID string, selfie []byte) (proofing.Outcome, error) {
	resp, err := p.do(ctx, "acuant document portrait", vendorhttp.Request{
		Method: http.MethodGet,
		URL:    p.documentURL(instanceID) + "/Field/Image?key=Photo",
	})
	if err != nil {
		return proofing.Outcome{}, err
	}
	if !resp.OK() {
		return failure(resp.StatusCode, vendorhttp.StatusException("acuant document portrait", resp.StatusCode)), nil
	}

	var req faceMatchRequest
	req.Data.ImageOne = base64.StdEncoding.EncodeToString(resp.Body)
	req.Data.ImageTwo = base64.StdEncoding.EncodeToString(selfie)
	req.Settings.SubscriptionID = p.subscriptionID
	payload, err := json.Marshal(req)
	if err != nil {
		return proofing.Outcome{}, fmt.Errorf("marshal facematch request: %w", err)
	}

	resp, err = p.do(ctx, "acuant facematch", vendorhttp.Request{
		Method:      http.MethodPost,
		URL:         p.facialMatchURL + "/api/v1/facematch",
		Body:        payload,
		ContentType: "application/json",
	})
	if err != nil {
		return proofing.Outcome{}, err
	}
	return parseFaceMatch(resp), nil
}

func parseFaceMatch(resp vendorhttp.Response) proofing.Outcome {
	if !resp.OK() {
		return failure(resp.StatusCode, vendorhttp.StatusException("acuant facematch", resp.StatusCode))
	}
	var body faceMatchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.IsMatch == nil {
		return failure(0, "acuant facematch returned malformed response")
	}
	o := proofing.Outcome{
		Success: *body.IsMatch,
		Attributes: map[string]any{
			"match_score": body.Score,
		},
	}
	if !*body.IsMatch {
		o.Errors = map[string]string{"selfie": "face does not match document"}
	}
	return o.Normalize()
}

// CheckLiveness asks PassLive whether the selfie is of a live person.
func (p *Proofer) CheckLiveness(ctx context.Context, selfie []byte) (proofing.Outcome, error) {
	var req livenessRequest
	req.Settings.SubscriptionID = p.subscriptionID
	req.Settings.AdditionalSettings = map[string]string{"OS": "UNKNOWN"}
	req.Image = base64.StdEncoding.EncodeToString(selfie)
	payload, err := json.Marshal(req)
	if err != nil {
		return proofing.Outcome{}, fmt.Errorf("marshal liveness request: %w", err)
	}

	resp, err := p.do(ctx, "acuant liveness", vendorhttp.Request{
		Method:      http.MethodPost,
		URL:         p.passLiveURL + "/api/v1/liveness",
		Body:        payload,
		ContentType: "application/json",
	})
	if err != nil {
		return proofing.Outcome{}, err
	}
	return parseLiveness(resp), nil
}

func parseLiveness(resp vendorhttp.Response) proofing.Outcome {
	if !resp.OK() {
		return failure(resp.StatusCode, vendorhttp.StatusException("acuant liveness", resp.StatusCode))
	}
	var body livenessResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return failure(0, "acuant liveness returned malformed response")
	}
	if body.LivenessResult == nil {
		msg := body.Error
		if msg == "" {
			msg = "acuant liveness returned no result"
		}
		return failure(0, msg)
	}
	assessment := body.LivenessResult.LivenessAssessment
	o := proofing.Outcome{
		Success: assessment == livenessLive,
		Attributes: map[string]any{
			"liveness_assessment": assessment,
			"liveness_score":      body.LivenessResult.Score,
		},
	}
	if !o.Success {
		o.Errors = map[string]string{"selfie": "liveness check failed"}
	}
	return o.Normalize()
}
