package analytics

import "errors"

// Sentinel errors returned by repositories and services. Handlers map these
// to HTTP statuses.
var (
	ErrScanNotFound    = errors.New("scan not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session")
	ErrInvalidAction   = errors.New("invalid action")
	ErrEmptyBatch      = errors.New("event batch is empty")
	ErrBatchTooLarge   = errors.New("event batch exceeds maximum size")
)
