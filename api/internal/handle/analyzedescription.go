package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/llm/types"
)

type analyzeDescriptionReq struct {
	LLMName string `json:"llm_name"`
	types.DescriptionInput
}

type analyzeDescriptionResp struct {
	Success bool `json:"success"`
	types.DescriptionAnalysisResult
}

func (h *Handle) AnalyzeDescription(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req analyzeDescriptionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := engine.AnalyzeDescription(ctx, req.DescriptionInput)
	if err != nil {
		h.log.Warnw("analyze-description fell back", "engine", engine.Name(), "err", err)
		out = types.FallbackDescriptionAnalysis()
	} else {
		out.Repair()
	}

	writeJSON(w, http.StatusOK, analyzeDescriptionResp{Success: true, DescriptionAnalysisResult: out})
}
