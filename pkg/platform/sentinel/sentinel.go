package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and the status list service translates them into domain errors.
//
//   - ErrNotFound: no status list exists for the owner
//   - ErrConflict: a status list already exists for the owner
//   - ErrUnavailable: the backing store could not complete the operation
//     (lock contention exhausted, connection lost)
//
// Validation failures on sizes and locations are domain errors, not sentinels.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
