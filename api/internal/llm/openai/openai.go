package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fixmate/api/internal/llm/prompt"
	"fixmate/api/internal/llm/types"
	"fixmate/api/internal/util"
)

// Engine talks to any OpenAI-compatible chat-completions endpoint over plain
// HTTP. The base URL is configurable so self-hosted compatible servers work
// unchanged.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model, baseURL string) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		// Timeout stays 0: the per-request context carries the deadline.
		httpc: &http.Client{Timeout: 0, Transport: tr},
	}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for tests).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) Name() string     { return "openai" }
func (e *Engine) GetModel() string { return e.Model }

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// chat performs one chat-completions call. imageDataURL, when non-empty, is
// attached to the user message as an image part.
func (e *Engine) chat(ctx context.Context, system, user, imageDataURL string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}

	var userContent any = user
	if imageDataURL != "" {
		userContent = []any{
			map[string]any{"type": "text", "text": user},
			map[string]any{"type": "image_url", "image_url": map[string]any{"url": imageDataURL}},
		}
	}

	body := map[string]any{
		"model":       e.Model,
		"temperature": 0,
		"messages": []message{
			{Role: "system", Content: system},
			{Role: "user", Content: userContent},
		},
		"response_format": map[string]any{"type": "json_object"},
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, truncateBytes(raw, 512))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: bad envelope: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: empty response")
	}
	return out.Choices[0].Message.Content, nil
}

func (e *Engine) imageDataURL(b64, explicitMIME string) (string, error) {
	raw, mimeHint, err := util.DecodeBase64MaybeDataURL(b64)
	if err != nil || len(raw) == 0 {
		return "", fmt.Errorf("openai: bad image base64")
	}
	mime := util.PickMIME(explicitMIME, mimeHint, raw)
	if !isOpenAIImageMIME(mime) {
		return "", fmt.Errorf("openai: unsupported MIME %s (need image/jpeg|png|webp)", mime)
	}
	return util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(raw)), nil
}

func (e *Engine) AnalyzeImage(ctx context.Context, in types.ImageAnalysisInput) (types.ImageAnalysisResult, error) {
	dataURL, err := e.imageDataURL(in.ImageB64, in.MIME)
	if err != nil {
		return types.ImageAnalysisResult{}, err
	}
	in.ImageB64 = ""
	system, user := prompt.ImageAnalysis(in)
	raw, err := e.chat(ctx, system, user, dataURL)
	if err != nil {
		return types.ImageAnalysisResult{}, err
	}
	var out types.ImageAnalysisResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.ImageAnalysisResult{}, fmt.Errorf("openai analyze-image: %w", err)
	}
	return out, nil
}

func (e *Engine) AnalyzeDescription(ctx context.Context, in types.DescriptionInput) (types.DescriptionAnalysisResult, error) {
	system, user := prompt.DescriptionAnalysis(in)
	raw, err := e.chat(ctx, system, user, "")
	if err != nil {
		return types.DescriptionAnalysisResult{}, err
	}
	var out types.DescriptionAnalysisResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.DescriptionAnalysisResult{}, fmt.Errorf("openai analyze-description: %w", err)
	}
	return out, nil
}

func (e *Engine) GenerateQuestions(ctx context.Context, in types.QuestionsInput) (types.QuestionsResult, error) {
	system, user := prompt.Questions(in)
	raw, err := e.chat(ctx, system, user, "")
	if err != nil {
		return types.QuestionsResult{}, err
	}
	var out types.QuestionsResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.QuestionsResult{}, fmt.Errorf("openai questions: %w", err)
	}
	return out, nil
}

func (e *Engine) Diagnose(ctx context.Context, in types.DiagnosisInput) (types.FinalDiagnosis, error) {
	system, user := prompt.Diagnosis(in)
	raw, err := e.chat(ctx, system, user, "")
	if err != nil {
		return types.FinalDiagnosis{}, err
	}
	var out types.FinalDiagnosis
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.FinalDiagnosis{}, fmt.Errorf("openai diagnose: %w", err)
	}
	return out, nil
}

func (e *Engine) EnhancedDiagnose(ctx context.Context, in types.DiagnosisInput) (types.EnhancedDiagnosis, error) {
	system, user := prompt.EnhancedDiagnosis(in)
	raw, err := e.chat(ctx, system, user, "")
	if err != nil {
		return types.EnhancedDiagnosis{}, err
	}
	var out types.EnhancedDiagnosis
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.EnhancedDiagnosis{}, fmt.Errorf("openai enhanced-diagnosis: %w", err)
	}
	return out, nil
}

func (e *Engine) Alternatives(ctx context.Context, in types.AlternativeInput) (types.AlternativeResult, error) {
	system, user := prompt.Alternatives(in)
	raw, err := e.chat(ctx, system, user, "")
	if err != nil {
		return types.AlternativeResult{}, err
	}
	var out types.AlternativeResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.AlternativeResult{}, fmt.Errorf("openai alternatives: %w", err)
	}
	return out, nil
}

func (e *Engine) AnalyzeCode(ctx context.Context, in types.CodeAnalysisInput) (types.CodeAnalysisResult, error) {
	var dataURL string
	if strings.TrimSpace(in.Code) == "" {
		u, err := e.imageDataURL(in.ImageB64, in.MIME)
		if err != nil {
			return types.CodeAnalysisResult{}, err
		}
		dataURL = u
		in.ImageB64 = ""
	}
	system, user := prompt.CodeAnalysis(in)
	raw, err := e.chat(ctx, system, user, dataURL)
	if err != nil {
		return types.CodeAnalysisResult{}, err
	}
	var out types.CodeAnalysisResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.CodeAnalysisResult{}, fmt.Errorf("openai analyze-code: %w", err)
	}
	return out, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

func isOpenAIImageMIME(m string) bool {
	m = strings.ToLower(strings.TrimSpace(m))
	switch m {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}
