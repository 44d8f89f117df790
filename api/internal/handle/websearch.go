package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/search"
)

type webSearchReq struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

type webSearchResp struct {
	Success  bool            `json:"success"`
	Results  []search.Result `json:"results"`
	UsedMock bool            `json:"usedMock"`
}

// WebSearch is the web fallback stage. Without search credentials the client
// serves deterministic mock rows, so the stage never needs to be disabled.
func (h *Handle) WebSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req webSearchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	results, usedMock, err := h.searcher.Search(ctx, req.Query)
	if err != nil {
		h.log.Warnw("web-search fell back to mock", "err", err)
		results, usedMock, _ = (&search.Client{}).Search(ctx, req.Query)
	}
	if results == nil {
		results = []search.Result{}
	}

	writeJSON(w, http.StatusOK, webSearchResp{Success: true, Results: results, UsedMock: usedMock})
}
