package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"fixmate/api/internal/llm/types"
)

type questionsReq struct {
	LLMName string `json:"llm_name"`
	types.QuestionsInput
}

type questionsResp struct {
	Success bool `json:"success"`
	types.QuestionsResult
}

// DeviceQuestions generates exactly 5 clarifying questions for a named
// device.
func (h *Handle) DeviceQuestions(w http.ResponseWriter, r *http.Request) {
	h.questions(w, r, 5, 5)
}

// DescriptionQuestions generates 3 to 6 follow-up questions for a free-text
// symptom description.
func (h *Handle) DescriptionQuestions(w http.ResponseWriter, r *http.Request) {
	h.questions(w, r, 3, 6)
}

func (h *Handle) questions(w http.ResponseWriter, r *http.Request, min, max int) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	var req questionsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DeviceName) == "" {
		writeError(w, http.StatusBadRequest, "deviceName is required")
		return
	}
	req.Min, req.Max = min, max

	ctx, cancel := stageContext(r)
	defer cancel()

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := engine.GenerateQuestions(ctx, req.QuestionsInput)
	if err != nil {
		h.log.Warnw("questions fell back", "engine", engine.Name(), "err", err)
		out = types.QuestionsResult{}
	}
	qs, fell := types.RepairQuestions(out.Questions, min, max)
	out.Questions = qs
	if fell || err != nil {
		out.UsedFallback = true
	}

	writeJSON(w, http.StatusOK, questionsResp{Success: true, QuestionsResult: out})
}
