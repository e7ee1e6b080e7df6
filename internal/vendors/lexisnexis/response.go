package lexisnexis

import (
	"encoding/json"
	"fmt"
	"strings"

	"idproof/internal/proofing"
	"idproof/internal/vendors/vendorhttp"
)

const transactionPassed = "passed"

type reason struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

type transactionStatus struct {
	ConversationID        string  `json:"ConversationId"`
	TransactionStatus     string  `json:"TransactionStatus"`
	TransactionReasonCode *reason `json:"TransactionReasonCode"`
}

type productResult struct {
	ProductType      string  `json:"ProductType"`
	ExecutedStepName string  `json:"ExecutedStepName"`
	ProductStatus    string  `json:"ProductStatus"`
	ProductReason    *reason `json:"ProductReason"`
}

type conversationResponse struct {
	Status   transactionStatus `json:"Status"`
	Products []productResult   `json:"Products"`
}

func parseResponse(vendor string, resp vendorhttp.Response) proofing.Outcome {
	if !resp.OK() {
		return proofing.Outcome{Exception: vendorhttp.StatusException(vendor, resp.StatusCode)}.Normalize()
	}

	var body conversationResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return proofing.Outcome{Exception: fmt.Sprintf("%s returned malformed response: %v", vendor, err)}.Normalize()
	}

	status := strings.ToLower(body.Status.TransactionStatus)
	if status == "" {
		return proofing.Outcome{Exception: vendor + " response has no transaction status"}.Normalize()
	}
	if status == transactionPassed {
		return proofing.Outcome{Success: true}.Normalize()
	}

	errs := map[string]string{}
	for _, product := range body.Products {
		if strings.EqualFold(product.ProductStatus, "pass") {
			continue
		}
		key := product.ProductType
		if product.ExecutedStepName != "" {
			key = product.ExecutedStepName
		}
		if key == "" {
			continue
		}
		msg := product.ProductStatus
		if product.ProductReason != nil && product.ProductReason.Description != "" {
			msg = product.ProductReason.Description
		}
		errs[key] = msg
	}
	if rc := body.Status.TransactionReasonCode; rc != nil && rc.Code != "" {
		errs["base"] = rc.Code
	}
	if len(errs) == 0 {
		errs["base"] = status
	}
	return proofing.Outcome{Errors: errs}.Normalize()
}
