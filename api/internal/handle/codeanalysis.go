package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/llm/types"
)

type codeAnalysisReq struct {
	LLMName string `json:"llm_name"`
	types.CodeAnalysisInput
}

type codeAnalysisResp struct {
	Success bool `json:"success"`
	types.CodeAnalysisResult
}

// AnalyzeCode covers firmware snippets and schematic photos.
func (h *Handle) AnalyzeCode(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req codeAnalysisReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Code) == "" && strings.TrimSpace(req.ImageB64) == "" {
		writeError(w, http.StatusBadRequest, "code or imageBase64 is required")
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := engine.AnalyzeCode(ctx, req.CodeAnalysisInput)
	if err != nil {
		h.log.Warnw("analyze-code fell back", "engine", engine.Name(), "err", err)
		out = types.FallbackCodeAnalysis()
	} else {
		out.Repair()
	}

	writeJSON(w, http.StatusOK, codeAnalysisResp{Success: true, CodeAnalysisResult: out})
}
