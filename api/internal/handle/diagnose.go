package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/llm/types"
)

type diagnoseReq struct {
	LLMName string `json:"llm_name"`
	types.DiagnosisInput
}

type diagnoseResp struct {
	Success bool `json:"success"`
	types.FinalDiagnosis
}

type enhancedDiagnoseResp struct {
	Success bool `json:"success"`
	types.EnhancedDiagnosis
}

// Diagnose is the terminal stage: accumulated context in, repair guide out.
func (h *Handle) Diagnose(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req diagnoseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DeviceName) == "" {
		writeError(w, http.StatusBadRequest, "deviceName is required")
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := engine.Diagnose(ctx, req.DiagnosisInput)
	if err != nil {
		h.log.Warnw("diagnose fell back", "engine", engine.Name(), "err", err)
		out = types.FallbackDiagnosis()
	} else {
		out.Repair()
	}

	writeJSON(w, http.StatusOK, diagnoseResp{Success: true, FinalDiagnosis: out})
}

// EnhancedDiagnosis serves the variant diagnosis shape (problem with reason,
// steps with safety folded in, tools list).
func (h *Handle) EnhancedDiagnosis(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req diagnoseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DeviceName) == "" {
		writeError(w, http.StatusBadRequest, "deviceName is required")
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := engine.EnhancedDiagnose(ctx, req.DiagnosisInput)
	if err != nil {
		h.log.Warnw("enhanced-diagnosis fell back", "engine", engine.Name(), "err", err)
		out = types.FallbackEnhancedDiagnosis()
	} else {
		out.Repair()
	}

	writeJSON(w, http.StatusOK, enhancedDiagnoseResp{Success: true, EnhancedDiagnosis: out})
}
