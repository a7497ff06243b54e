package api

import (
	"errors"
	"net/http"

	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/app/pipeline"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded, try again in a minute")
)

const maxBodyBytes = 1 << 20

// statusFor returns the HTTP status and error code for err.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, pipeline.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, judge.ErrRejected):
		return http.StatusBadRequest, "rejected"
	case errors.Is(err, pipeline.ErrNotFound), errors.Is(err, judge.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "upstream_error"
	}
}
