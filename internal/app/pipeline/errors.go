package pipeline

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrValidation reports missing or empty input, raised before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports that the judge does not know the handle.
	ErrNotFound = errors.New("handle not found")
	// ErrUpstream reports a failed or timed-out judge call.
	ErrUpstream = errors.New("upstream fetch failed")
)
