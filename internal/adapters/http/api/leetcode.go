package api

import (
	"errors"
	"net/http"
	"strings"
)

// LeetCodeHandler handles the LeetCode routes.
type LeetCodeHandler struct {
	deps LeetCodeDependencies
}

// NewLeetCodeHandler creates a new LeetCode handler.
func NewLeetCodeHandler(deps LeetCodeDependencies) *LeetCodeHandler {
	return &LeetCodeHandler{deps: deps}
}

// HandleProfile handles GET /api/leetcode?username= requests.
func (h *LeetCodeHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("username is required"))
		return
	}
	p, err := h.deps.LeetCode(r.Context(), username)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type leetcodeCoachRequest struct {
	Username   string `json:"username"`
	GoalMedium int    `json:"goalMedium"`
	GoalHard   int    `json:"goalHard"`
}

// HandleCoach handles POST /api/leetcode/coach requests.
func (h *LeetCodeHandler) HandleCoach(w http.ResponseWriter, r *http.Request) {
	var req leetcodeCoachRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("username is required"))
		return
	}
	report, err := h.deps.LeetCodeCoach(r.Context(), req.Username, req.GoalMedium, req.GoalHard)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
