package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/llm/types"
	"fixmate/api/internal/util"
)

type analyzeImageReq struct {
	LLMName  string `json:"llm_name"`
	ImageURL string `json:"imageUrl,omitempty"`
	types.ImageAnalysisInput
}

type analyzeImageResp struct {
	Success bool `json:"success"`
	types.ImageAnalysisResult
}

// AnalyzeImage is the vision stage. It counts against the daily scan quota
// because it is the entry point of a billable scan.
func (h *Handle) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req analyzeImageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ImageB64) == "" && strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "imageBase64 or imageUrl is required")
		return
	}

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	// Fetch failures surface to the caller; they are input problems, not
	// model problems. Like all input validation they run before the quota
	// gate so a rejected request never costs a scan.
	if strings.TrimSpace(req.ImageB64) == "" {
		b64, mime, err := util.FetchImageBase64(ctx, req.ImageURL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "image fetch failed: "+err.Error())
			return
		}
		req.ImageB64 = b64
		req.MIME = mime
	}

	if !h.consumeScan(w, r, userID) {
		return
	}

	out, err := engine.AnalyzeImage(ctx, req.ImageAnalysisInput)
	if err != nil {
		h.log.Warnw("analyze-image fell back", "engine", engine.Name(), "err", err)
		out = types.FallbackImageAnalysis()
	} else {
		out.Repair()
	}

	writeJSON(w, http.StatusOK, analyzeImageResp{Success: true, ImageAnalysisResult: out})
}
