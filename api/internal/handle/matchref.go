package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/match"
)

type matchReq struct {
	Category string   `json:"category"`
	Terms    []string `json:"terms"`
}

type matchResp struct {
	Success bool          `json:"success"`
	Matches []match.Match `json:"matches"`
}

// Match scores stored reference records against extracted keywords.
func (h *Handle) Match(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req matchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if !match.KnownTable(req.Category) {
		writeError(w, http.StatusBadRequest, "unknown category; use one of: "+strings.Join(match.Tables(), ", "))
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, "terms is required")
		return
	}
	if h.refs == nil {
		writeError(w, http.StatusInternalServerError, "reference data not configured")
		return
	}

	rows, err := h.refs.List(r.Context(), req.Category, 0)
	if err != nil {
		h.log.Errorw("reference load failed", "table", req.Category, "err", err)
		writeError(w, http.StatusInternalServerError, "reference data unavailable")
		return
	}

	matches := match.Score(req.Category, rows, req.Terms)
	if matches == nil {
		matches = []match.Match{}
	}
	writeJSON(w, http.StatusOK, matchResp{Success: true, Matches: matches})
}
