package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and queue implementations
// return these (optionally wrapped) so services can branch on them without
// knowing which backend is wired in.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrUnavailable: backend temporarily unreachable
// - ErrClosed: component already shut down
//
// Validation failures are domain values (domain.FieldError), never errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
