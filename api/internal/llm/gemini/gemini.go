package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fixmate/api/internal/llm/prompt"
	"fixmate/api/internal/llm/types"
	"fixmate/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// generate runs one model call: system instruction, user text, optional
// inline image. Single shot; the pipeline masks failures with fallbacks, it
// never retries the provider.
func (e *Engine) generate(ctx context.Context, system, user string, img *genai.Blob) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	parts := []genai.Part{genai.Text(user)}
	if img != nil {
		parts = append(parts, img)
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func (e *Engine) imageBlob(b64, explicitMIME string) (*genai.Blob, error) {
	raw, mimeHint, err := util.DecodeBase64MaybeDataURL(b64)
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("gemini: bad image base64")
	}
	return &genai.Blob{MIMEType: util.PickMIME(explicitMIME, mimeHint, raw), Data: raw}, nil
}

func (e *Engine) AnalyzeImage(ctx context.Context, in types.ImageAnalysisInput) (types.ImageAnalysisResult, error) {
	blob, err := e.imageBlob(in.ImageB64, in.MIME)
	if err != nil {
		return types.ImageAnalysisResult{}, err
	}
	system, user := prompt.ImageAnalysis(in)
	raw, err := e.generate(ctx, system, user, blob)
	if err != nil {
		return types.ImageAnalysisResult{}, err
	}
	var out types.ImageAnalysisResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.ImageAnalysisResult{}, fmt.Errorf("gemini analyze-image: %w", err)
	}
	return out, nil
}

func (e *Engine) AnalyzeDescription(ctx context.Context, in types.DescriptionInput) (types.DescriptionAnalysisResult, error) {
	system, user := prompt.DescriptionAnalysis(in)
	raw, err := e.generate(ctx, system, user, nil)
	if err != nil {
		return types.DescriptionAnalysisResult{}, err
	}
	var out types.DescriptionAnalysisResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.DescriptionAnalysisResult{}, fmt.Errorf("gemini analyze-description: %w", err)
	}
	return out, nil
}

func (e *Engine) GenerateQuestions(ctx context.Context, in types.QuestionsInput) (types.QuestionsResult, error) {
	system, user := prompt.Questions(in)
	raw, err := e.generate(ctx, system, user, nil)
	if err != nil {
		return types.QuestionsResult{}, err
	}
	var out types.QuestionsResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.QuestionsResult{}, fmt.Errorf("gemini questions: %w", err)
	}
	return out, nil
}

func (e *Engine) Diagnose(ctx context.Context, in types.DiagnosisInput) (types.FinalDiagnosis, error) {
	system, user := prompt.Diagnosis(in)
	raw, err := e.generate(ctx, system, user, nil)
	if err != nil {
		return types.FinalDiagnosis{}, err
	}
	var out types.FinalDiagnosis
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.FinalDiagnosis{}, fmt.Errorf("gemini diagnose: %w", err)
	}
	return out, nil
}

func (e *Engine) EnhancedDiagnose(ctx context.Context, in types.DiagnosisInput) (types.EnhancedDiagnosis, error) {
	system, user := prompt.EnhancedDiagnosis(in)
	raw, err := e.generate(ctx, system, user, nil)
	if err != nil {
		return types.EnhancedDiagnosis{}, err
	}
	var out types.EnhancedDiagnosis
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.EnhancedDiagnosis{}, fmt.Errorf("gemini enhanced-diagnosis: %w", err)
	}
	return out, nil
}

func (e *Engine) Alternatives(ctx context.Context, in types.AlternativeInput) (types.AlternativeResult, error) {
	system, user := prompt.Alternatives(in)
	raw, err := e.generate(ctx, system, user, nil)
	if err != nil {
		return types.AlternativeResult{}, err
	}
	var out types.AlternativeResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.AlternativeResult{}, fmt.Errorf("gemini alternatives: %w", err)
	}
	return out, nil
}

func (e *Engine) AnalyzeCode(ctx context.Context, in types.CodeAnalysisInput) (types.CodeAnalysisResult, error) {
	var blob *genai.Blob
	if strings.TrimSpace(in.Code) == "" {
		b, err := e.imageBlob(in.ImageB64, in.MIME)
		if err != nil {
			return types.CodeAnalysisResult{}, err
		}
		blob = b
	}
	system, user := prompt.CodeAnalysis(in)
	raw, err := e.generate(ctx, system, user, blob)
	if err != nil {
		return types.CodeAnalysisResult{}, err
	}
	var out types.CodeAnalysisResult
	if err := util.DecodeLoose(raw, &out); err != nil {
		return types.CodeAnalysisResult{}, fmt.Errorf("gemini analyze-code: %w", err)
	}
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
