package types

import "strings"

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

type Problem struct {
	Label      string `json:"label"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

type ImageAnalysisResult struct {
	Problems            []Problem `json:"problems"`
	VisualObservations  string    `json:"visualObservations"`
	ClarifyingQuestions []string  `json:"clarifyingQuestions"`
	UsedFallback        bool      `json:"usedFallback,omitempty"`
}

var fallbackProblem = Problem{
	Label:      "Unidentified hardware issue",
	Reasoning:  "The image did not yield a specific visual finding.",
	Confidence: ConfidenceLow,
}

var fallbackClarifying = []string{
	"What exactly happens when you try to use the device?",
	"When did the problem start?",
	"Has the device been dropped or exposed to liquid?",
	"Does the device show any lights, sounds, or error messages?",
	"Have you already attempted any repair?",
}

// Repair coerces the vision-stage output to its minimum shape: at least one
// problem with a normalized confidence, a non-empty observations string, and
// exactly five clarifying questions. Reports whether anything was
// substituted.
func (r *ImageAnalysisResult) Repair() bool {
	fell := false

	problems := r.Problems[:0]
	for _, p := range r.Problems {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			fell = true
			continue
		}
		switch strings.ToLower(strings.TrimSpace(p.Confidence)) {
		case ConfidenceHigh:
			p.Confidence = ConfidenceHigh
		case ConfidenceLow:
			p.Confidence = ConfidenceLow
		case ConfidenceMedium:
			p.Confidence = ConfidenceMedium
		default:
			p.Confidence = ConfidenceMedium
			fell = true
		}
		problems = append(problems, p)
	}
	r.Problems = problems
	if len(r.Problems) == 0 {
		r.Problems = []Problem{fallbackProblem}
		fell = true
	}

	if strings.TrimSpace(r.VisualObservations) == "" {
		r.VisualObservations = "Assessment pending"
		fell = true
	}

	qs := r.ClarifyingQuestions[:0]
	for _, q := range r.ClarifyingQuestions {
		if s := strings.TrimSpace(q); s != "" {
			qs = append(qs, s)
		}
	}
	if len(qs) != len(r.ClarifyingQuestions) {
		fell = true
	}
	for i := 0; len(qs) < 5; i++ {
		qs = append(qs, fallbackClarifying[i%len(fallbackClarifying)])
		fell = true
	}
	if len(qs) > 5 {
		qs = qs[:5]
		fell = true
	}
	r.ClarifyingQuestions = qs

	if fell {
		r.UsedFallback = true
	}
	return fell
}

// FallbackImageAnalysis is the whole-response substitute used when the model
// call itself failed.
func FallbackImageAnalysis() ImageAnalysisResult {
	r := ImageAnalysisResult{}
	r.Repair()
	return r
}
