// Package ports declares the capabilities the orchestrator depends on. Vendor
// adapters, the callback client and the image loader implement them.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Proofer,DocumentProofer,ImageLoader,Deliverer

import (
	"context"

	"idproof/internal/proofing"
)

// Proofer checks applicant PII against one vendor.
type Proofer interface {
	Proof(ctx context.Context, pii proofing.PII) (proofing.Outcome, error)
}

// DocumentOutcome is the result of submitting document images. InstanceID
// identifies the vendor-side document for the follow-up biometric calls.
type DocumentOutcome struct {
	proofing.Outcome
	InstanceID string
}

// DocumentProofer is the document/biometric vendor capability.
type DocumentProofer interface {
	PostImages(ctx context.Context, front, back []byte) (DocumentOutcome, error)
	MatchFace(ctx context.Context, instanceID string, selfie []byte) (proofing.Outcome, error)
	CheckLiveness(ctx context.Context, selfie []byte) (proofing.Outcome, error)
}

// Images holds decrypted document images.
type Images struct {
	Front  []byte
	Back   []byte
	Selfie []byte
}

// ImageLoader fetches and decrypts the images referenced by a document request.
type ImageLoader interface {
	Load(ctx context.Context, req proofing.DocumentRequest) (Images, error)
}

// Deliverer posts a result body to a callback endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, url, token string, body proofing.Body) error
}

// Sink receives the result body in-process instead of an HTTP callback.
type Sink func(ctx context.Context, body proofing.Body) error
