package shared

import "errors"

// Sentinel errors shared across modules. Module-specific failures live
// with their packages; these cover session identity and lookups that
// cross package boundaries.
var (
	ErrNotFound           = errors.New("shared: not found")
	ErrInvalidCredentials = errors.New("shared: invalid credentials")
	ErrCSRFTokenMissing   = errors.New("shared: csrf token missing")
	ErrCSRFTokenMismatch  = errors.New("shared: csrf token mismatch")
)
