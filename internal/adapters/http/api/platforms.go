package api

import (
	"net/http"

	service "github.com/okian/cpstats/internal/app"
)

// PlatformHandler handles the multi-platform stats route.
type PlatformHandler struct {
	deps PlatformDependencies
}

// NewPlatformHandler creates a new platform handler.
func NewPlatformHandler(deps PlatformDependencies) *PlatformHandler {
	return &PlatformHandler{deps: deps}
}

// HandleStats handles GET /api/stats?cf=&lc=&at=&cc= requests.
func (h *PlatformHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.deps.Stats(r.Context(), service.StatsQuery{
		Codeforces: q.Get("cf"),
		LeetCode:   q.Get("lc"),
		AtCoder:    q.Get("at"),
		CodeChef:   q.Get("cc"),
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
