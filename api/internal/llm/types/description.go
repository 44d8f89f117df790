package types

import "strings"

type DescriptionAnalysisResult struct {
	PrioritizedProblems []Problem `json:"prioritizedProblems"`
	MatchedKeywords     []string  `json:"matchedKeywords"`
	UsedFallback        bool      `json:"usedFallback,omitempty"`
}

// Repair guarantees at least one prioritized problem and a non-nil keyword
// list.
func (r *DescriptionAnalysisResult) Repair() bool {
	fell := false

	problems := r.PrioritizedProblems[:0]
	for _, p := range r.PrioritizedProblems {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			fell = true
			continue
		}
		switch strings.ToLower(strings.TrimSpace(p.Confidence)) {
		case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
			p.Confidence = strings.ToLower(strings.TrimSpace(p.Confidence))
		default:
			p.Confidence = ConfidenceMedium
			fell = true
		}
		problems = append(problems, p)
	}
	r.PrioritizedProblems = problems
	if len(r.PrioritizedProblems) == 0 {
		r.PrioritizedProblems = []Problem{{
			Label:      "Device issue requiring professional assessment",
			Reasoning:  "The description did not map to a known failure pattern.",
			Confidence: ConfidenceLow,
		}}
		fell = true
	}

	kws := r.MatchedKeywords[:0]
	for _, k := range r.MatchedKeywords {
		if s := strings.TrimSpace(k); s != "" {
			kws = append(kws, s)
		}
	}
	if kws == nil {
		kws = []string{}
	}
	r.MatchedKeywords = kws

	if fell {
		r.UsedFallback = true
	}
	return fell
}

func FallbackDescriptionAnalysis() DescriptionAnalysisResult {
	r := DescriptionAnalysisResult{}
	r.Repair()
	return r
}
