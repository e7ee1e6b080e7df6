package ports

import (
	"idproof/internal/config"
)

// Vendor describes a PII proofer: the name recorded in context.stages, the
// settings it needs, and a factory that builds it from resolved settings.
type Vendor struct {
	Name string
	Keys []config.Key
	New  func(config.Settings) (Proofer, error)
}

// DocumentVendor is the document/biometric counterpart of Vendor.
type DocumentVendor struct {
	Name string
	Keys []config.Key
	New  func(config.Settings) (DocumentProofer, error)
}

// Catalog binds each stage to its vendor.
type Catalog struct {
	Resolution Vendor
	StateID    Vendor
	Address    Vendor
	Document   DocumentVendor
}
