package types

import (
	"sort"
	"strings"
)

type Alternative struct {
	Hypothesis string `json:"hypothesis"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

// AlternativeResult ranks fallback hypotheses after the user rejected the
// primary repair guide.
type AlternativeResult struct {
	Alternatives []Alternative `json:"alternatives"`
	UsedFallback bool          `json:"usedFallback,omitempty"`
}

var fallbackAlternatives = []Alternative{
	{
		Hypothesis: "The fault lies in a different component than first suspected",
		Reasoning:  "When the primary fix does not help, the symptom often originates upstream of the repaired part.",
		Confidence: ConfidenceMedium,
	},
	{
		Hypothesis: "The device needs professional bench diagnostics",
		Reasoning:  "Intermittent or board-level faults are hard to isolate without test equipment.",
		Confidence: ConfidenceLow,
	},
}

var confidenceRank = map[string]int{
	ConfidenceHigh:   0,
	ConfidenceMedium: 1,
	ConfidenceLow:    2,
}

// Repair guarantees at least two ranked alternatives with normalized
// confidence, ordered high to low.
func (r *AlternativeResult) Repair() bool {
	fell := false

	alts := r.Alternatives[:0]
	for _, a := range r.Alternatives {
		a.Hypothesis = strings.TrimSpace(a.Hypothesis)
		if a.Hypothesis == "" {
			fell = true
			continue
		}
		c := strings.ToLower(strings.TrimSpace(a.Confidence))
		if _, ok := confidenceRank[c]; !ok {
			c = ConfidenceMedium
			fell = true
		}
		a.Confidence = c
		alts = append(alts, a)
	}
	r.Alternatives = alts
	for i := 0; len(r.Alternatives) < 2; i++ {
		r.Alternatives = append(r.Alternatives, fallbackAlternatives[i%len(fallbackAlternatives)])
		fell = true
	}

	sort.SliceStable(r.Alternatives, func(i, j int) bool {
		return confidenceRank[r.Alternatives[i].Confidence] < confidenceRank[r.Alternatives[j].Confidence]
	})

	if fell {
		r.UsedFallback = true
	}
	return fell
}

func FallbackAlternatives() AlternativeResult {
	r := AlternativeResult{}
	r.Repair()
	return r
}
