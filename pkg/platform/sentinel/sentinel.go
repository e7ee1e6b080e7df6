// Package sentinel holds infrastructure facts shared by stores and clients.
// Stores return these (optionally wrapped) and callers translate them into
// domain errors:
//   - ErrNotFound: the named resource does not exist
//   - ErrUnavailable: the backing service could not be reached
package sentinel

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
