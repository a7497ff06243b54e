package judge

import "errors"

// Sentinel error kinds for judge clients. Callers match them with errors.Is.
var (
	// ErrNotFound reports that the judge does not know the handle.
	ErrNotFound = errors.New("handle not found")
	// ErrUpstream reports a network, timeout, throttling or malformed-response failure.
	ErrUpstream = errors.New("upstream fetch failed")
	// ErrRejected reports that the judge refused the query itself.
	ErrRejected = errors.New("request rejected by judge")
)
