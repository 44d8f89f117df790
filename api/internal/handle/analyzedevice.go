package handle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fixmate/api/internal/llm"
	"fixmate/api/internal/llm/types"
	"fixmate/api/internal/store"
	"fixmate/api/internal/util"
)

type analyzeDeviceReq struct {
	LLMName        string   `json:"llm_name"`
	ImageURLs      []string `json:"imageUrls,omitempty"`
	ImagesB64      []string `json:"imagesBase64,omitempty"`
	SymptomsText   string   `json:"symptomsText"`
	DeviceCategory string   `json:"deviceCategory,omitempty"`
	Language       string   `json:"language,omitempty"`
}

type analyzeDeviceResp struct {
	Success             bool                             `json:"success"`
	SessionID           string                           `json:"sessionId,omitempty"`
	Status              string                           `json:"status"`
	ImageAnalysis       *types.ImageAnalysisResult       `json:"imageAnalysis,omitempty"`
	DescriptionAnalysis *types.DescriptionAnalysisResult `json:"descriptionAnalysis,omitempty"`
	Questions           []types.Question                 `json:"questions"`
	UsedFallback        bool                             `json:"usedFallback,omitempty"`
}

// AnalyzeDevice orchestrates one diagnostic session: parallel image fetch,
// image analysis, description analysis, question generation, persistence.
// Stage failures are substituted with fallbacks; the session always reaches
// completed and the caller always gets a 200 with a populated analysis.
func (h *Handle) AnalyzeDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req analyzeDeviceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SymptomsText) == "" && len(req.ImageURLs) == 0 && len(req.ImagesB64) == 0 {
		writeError(w, http.StatusBadRequest, "symptomsText or at least one image is required")
		return
	}

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.consumeScan(w, r, userID) {
		return
	}

	ctx, cancel := stageContext(r)
	defer cancel()

	images := h.collectImages(ctx, &req)

	sessionID := uuid.New()
	if h.sessions != nil {
		sess := &store.Session{
			ID:             sessionID,
			UserID:         userID,
			DeviceCategory: req.DeviceCategory,
			ImageHashes:    hashImages(images),
			SymptomsText:   req.SymptomsText,
		}
		if err := h.sessions.Create(ctx, sess); err != nil {
			// Persistence never blocks the diagnosis.
			h.log.Errorw("session create failed", "session", sessionID, "err", err)
		}
	}

	imageOut, descOut, questions, fell := h.runPipeline(ctx, engine, &req, images)

	if h.sessions != nil {
		if err := h.sessions.Complete(ctx, sessionID, map[string]any{
			"imageAnalysis":       imageOut,
			"descriptionAnalysis": descOut,
		}, map[string]any{
			"questions": questions,
		}); err != nil {
			h.log.Errorw("session complete failed", "session", sessionID, "err", err)
		}
	}

	writeJSON(w, http.StatusOK, analyzeDeviceResp{
		Success:             true,
		SessionID:           sessionID.String(),
		Status:              store.SessionCompleted,
		ImageAnalysis:       imageOut,
		DescriptionAnalysis: descOut,
		Questions:           questions,
		UsedFallback:        fell,
	})
}

// collectImages gathers base64 payloads: inline ones as-is, URLs fetched in
// parallel with per-item failure isolation (a dead URL costs one image, not
// the scan).
func (h *Handle) collectImages(ctx context.Context, req *analyzeDeviceReq) []string {
	images := make([]string, 0, len(req.ImagesB64)+len(req.ImageURLs))
	for _, b64 := range req.ImagesB64 {
		if strings.TrimSpace(b64) != "" {
			images = append(images, b64)
		}
	}
	fetched := util.ParallelMap(ctx, req.ImageURLs, 4, func(ctx context.Context, url string) (string, error) {
		b64, _, err := util.FetchImageBase64(ctx, url)
		if err != nil {
			h.log.Warnw("image fetch skipped", "url", url, "err", err)
		}
		return b64, err
	})
	return append(images, fetched...)
}

// runPipeline threads each stage's output into the next, substituting the
// stage fallback wherever a call fails.
func (h *Handle) runPipeline(ctx context.Context, engine llm.Engine, req *analyzeDeviceReq, images []string) (*types.ImageAnalysisResult, *types.DescriptionAnalysisResult, []types.Question, bool) {
	fell := false

	// Vision over every image in parallel, merged into one finding set.
	// wantImages stays true when URLs were submitted but none survived the
	// fetch, so the caller still sees a fallback analysis instead of the
	// images silently vanishing.
	wantImages := len(req.ImagesB64)+len(req.ImageURLs) > 0
	var imageOut types.ImageAnalysisResult
	if len(images) > 0 {
		results := util.ParallelMap(ctx, images, 4, func(ctx context.Context, b64 string) (types.ImageAnalysisResult, error) {
			out, err := engine.AnalyzeImage(ctx, types.ImageAnalysisInput{
				ImageB64:       b64,
				DeviceCategory: req.DeviceCategory,
				Language:       req.Language,
			})
			if err != nil {
				h.log.Warnw("orchestrated image analysis failed", "err", err)
			}
			return out, err
		})
		if len(results) == 0 {
			imageOut = types.FallbackImageAnalysis()
			fell = true
		} else {
			imageOut = mergeImageResults(results)
			if imageOut.Repair() {
				fell = true
			}
		}
	} else if wantImages {
		imageOut = types.FallbackImageAnalysis()
		fell = true
	}

	// Description stage consumes the user text plus the visual findings.
	description := strings.TrimSpace(req.SymptomsText)
	if description == "" {
		description = "No symptom description provided; rely on the visual findings."
	}
	descIn := types.DescriptionInput{Description: description, Language: req.Language}
	if wantImages {
		descIn.ImageFindings = &imageOut
	}
	descOut, err := engine.AnalyzeDescription(ctx, descIn)
	if err != nil {
		h.log.Warnw("orchestrated description analysis fell back", "err", err)
		descOut = types.FallbackDescriptionAnalysis()
		fell = true
	} else if descOut.Repair() {
		fell = true
	}

	// Question stage rounds out the session for the client to render.
	deviceName := strings.TrimSpace(req.DeviceCategory)
	if deviceName == "" {
		deviceName = "the device"
	}
	qOut, err := engine.GenerateQuestions(ctx, types.QuestionsInput{
		DeviceName:  deviceName,
		Description: description,
		Language:    req.Language,
		Min:         5,
		Max:         5,
	})
	if err != nil {
		h.log.Warnw("orchestrated question generation fell back", "err", err)
		qOut = types.QuestionsResult{}
		fell = true
	}
	questions, qFell := types.RepairQuestions(qOut.Questions, 5, 5)
	if qFell {
		fell = true
	}

	var imgPtr *types.ImageAnalysisResult
	if wantImages {
		imgPtr = &imageOut
	}
	return imgPtr, &descOut, questions, fell
}

func mergeImageResults(results []types.ImageAnalysisResult) types.ImageAnalysisResult {
	merged := results[0]
	for _, r := range results[1:] {
		merged.Problems = append(merged.Problems, r.Problems...)
		if merged.VisualObservations == "" {
			merged.VisualObservations = r.VisualObservations
		}
		if len(merged.ClarifyingQuestions) < 5 {
			merged.ClarifyingQuestions = append(merged.ClarifyingQuestions, r.ClarifyingQuestions...)
		}
	}
	return merged
}

func hashImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, b64 := range images {
		sum := sha256.Sum256([]byte(b64))
		out = append(out, hex.EncodeToString(sum[:])[:16])
	}
	return out
}
