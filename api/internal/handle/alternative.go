package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/llm/types"
)

type alternativeReq struct {
	LLMName string `json:"llm_name"`
	types.AlternativeInput
}

type alternativeResp struct {
	Success bool `json:"success"`
	types.AlternativeResult
}

// Alternative runs after the user reports the proposed guide did not work.
func (h *Handle) Alternative(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req alternativeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DeviceName) == "" {
		writeError(w, http.StatusBadRequest, "deviceName is required")
		return
	}
	if strings.TrimSpace(req.RejectedSolution) == "" {
		writeError(w, http.StatusBadRequest, "rejectedSolution is required")
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := engine.Alternatives(ctx, req.AlternativeInput)
	if err != nil {
		h.log.Warnw("alternatives fell back", "engine", engine.Name(), "err", err)
		out = types.FallbackAlternatives()
	} else {
		out.Repair()
	}

	writeJSON(w, http.StatusOK, alternativeResp{Success: true, AlternativeResult: out})
}
