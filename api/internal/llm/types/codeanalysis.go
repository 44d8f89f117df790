package types

import "strings"

// CodeAnalysisResult is the output of the code/schematic analysis stage.
type CodeAnalysisResult struct {
	Summary      string   `json:"summary"`
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
	UsedFallback bool     `json:"usedFallback,omitempty"`
}

func (r *CodeAnalysisResult) Repair() bool {
	fell := false

	if strings.TrimSpace(r.Summary) == "" {
		r.Summary = "Assessment pending"
		fell = true
	}

	issues := trimNonEmpty(r.Issues)
	if issues == nil {
		issues = []string{}
	}
	r.Issues = issues

	suggestions := trimNonEmpty(r.Suggestions)
	if len(suggestions) == 0 {
		suggestions = []string{"Review the firmware/schematic with a specialist before making changes."}
		fell = true
	}
	r.Suggestions = suggestions

	if fell {
		r.UsedFallback = true
	}
	return fell
}

func FallbackCodeAnalysis() CodeAnalysisResult {
	r := CodeAnalysisResult{}
	r.Repair()
	return r
}
