package llm

import (
	"context"
	"errors"

	"fixmate/api/internal/llm/types"
)

// Engine is one generative-model provider. Every method is a single
// request/response call; the caller bounds it with a context deadline.
type Engine interface {
	Name() string
	GetModel() string
	AnalyzeImage(ctx context.Context, in types.ImageAnalysisInput) (types.ImageAnalysisResult, error)
	AnalyzeDescription(ctx context.Context, in types.DescriptionInput) (types.DescriptionAnalysisResult, error)
	GenerateQuestions(ctx context.Context, in types.QuestionsInput) (types.QuestionsResult, error)
	Diagnose(ctx context.Context, in types.DiagnosisInput) (types.FinalDiagnosis, error)
	EnhancedDiagnose(ctx context.Context, in types.DiagnosisInput) (types.EnhancedDiagnosis, error)
	Alternatives(ctx context.Context, in types.AlternativeInput) (types.AlternativeResult, error)
	AnalyzeCode(ctx context.Context, in types.CodeAnalysisInput) (types.CodeAnalysisResult, error)
}

type Engines struct {
	Gemini Engine
	OpenAI Engine
}

// GetEngine resolves the per-request llm_name. Empty defaults to Gemini.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	switch llmName {
	case "", "gemini":
		if e.Gemini == nil {
			return nil, errors.New("gemini engine not configured")
		}
		return e.Gemini, nil
	case "gpt", "openai":
		if e.OpenAI == nil {
			return nil, errors.New("openai engine not configured")
		}
		return e.OpenAI, nil
	default:
		return nil, errors.New("unknown llm_name; use 'gemini' or 'openai'")
	}
}
