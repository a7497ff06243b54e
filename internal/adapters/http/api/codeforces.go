package api

import (
	"errors"
	"net/http"
	"strings"
)

// CodeforcesHandler handles the Codeforces routes.
type CodeforcesHandler struct {
	deps CodeforcesDependencies
}

// NewCodeforcesHandler creates a new Codeforces handler.
func NewCodeforcesHandler(deps CodeforcesDependencies) *CodeforcesHandler {
	return &CodeforcesHandler{deps: deps}
}

// HandleProfile handles GET /api/codeforces?handle= requests.
func (h *CodeforcesHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(r.URL.Query().Get("handle"))
	if handle == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("handle is required"))
		return
	}
	prof, err := h.deps.Profile(r.Context(), handle)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// HandleCompare handles GET /api/codeforces/compare?h1=&h2= requests.
func (h *CodeforcesHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmp, err := h.deps.Compare(r.Context(), q.Get("h1"), q.Get("h2"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type coachRequest struct {
	Handle string `json:"handle"`
	Goal   int    `json:"goal"`
}

// HandleCoach handles POST /api/codeforces/coach requests.
func (h *CodeforcesHandler) HandleCoach(w http.ResponseWriter, r *http.Request) {
	var req coachRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Handle) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("handle is required"))
		return
	}
	report, err := h.deps.CodeforcesCoach(r.Context(), req.Handle, req.Goal)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type sheetRequest struct {
	Handle   string `json:"handle"`
	LadderID string `json:"ladderId"`
}

// HandleSheet handles POST /api/codeforces/sheet requests.
func (h *CodeforcesHandler) HandleSheet(w http.ResponseWriter, r *http.Request) {
	var req sheetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	sheet, err := h.deps.Sheet(r.Context(), req.Handle, req.LadderID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}
