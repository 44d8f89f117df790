package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairQuestionsValidPassthrough(t *testing.T) {
	in := []Question{
		{ID: "q1", Category: CategoryPower, Question: "Does it turn on?"},
		{ID: "q2", Category: CategoryDisplay, Question: "Is the screen cracked?"},
		{ID: "q3", Category: CategoryUsage, Question: "How often is it used?"},
		{ID: "q4", Category: CategoryAudio, Question: "Any unusual sounds?"},
		{ID: "q5", Category: CategoryEnvironment, Question: "Any liquid exposure?"},
	}
	out, fell := RepairQuestions(in, 5, 5)
	assert.False(t, fell)
	assert.Equal(t, in, out)
}

func TestRepairQuestionsEmptyInput(t *testing.T) {
	out, fell := RepairQuestions(nil, 5, 5)
	assert.True(t, fell)
	require.Len(t, out, 5)
	for _, q := range out {
		assert.NotEmpty(t, q.ID)
		assert.NotEmpty(t, q.Question)
		assert.True(t, KnownCategories[q.Category], "category %q", q.Category)
	}
}

func TestRepairQuestionsBadItems(t *testing.T) {
	in := []Question{
		{Category: "Nonsense", Question: "Valid text, bad category"},
		{Category: CategoryPower, Question: "   "},
	}
	out, fell := RepairQuestions(in, 3, 6)
	assert.True(t, fell)
	require.GreaterOrEqual(t, len(out), 3)
	assert.LessOrEqual(t, len(out), 6)
	assert.Equal(t, CategoryGeneral, out[0].Category)
	for _, q := range out {
		assert.NotEmpty(t, q.ID)
		assert.NotEmpty(t, q.Question)
	}
}

func TestRepairQuestionsTruncates(t *testing.T) {
	in := make([]Question, 0, 8)
	for i := 0; i < 8; i++ {
		in = append(in, Question{ID: "x", Category: CategoryUsage, Question: "q?"})
	}
	out, fell := RepairQuestions(in, 5, 5)
	assert.Len(t, out, 5)
	assert.False(t, fell, "trimming a valid list to the cap is not a substitution")
}

func TestRepairQuestionsDroppedBlankStillFlags(t *testing.T) {
	in := []Question{
		{ID: "q1", Category: CategoryPower, Question: "Does it turn on?"},
		{ID: "q2", Category: CategoryUsage, Question: "   "},
		{ID: "q3", Category: CategoryDisplay, Question: "Any flicker?"},
		{ID: "q4", Category: CategoryAudio, Question: "Any buzzing?"},
	}
	out, fell := RepairQuestions(in, 3, 6)
	assert.True(t, fell, "discarding an invalid item is a substitution")
	assert.Len(t, out, 3)
}

func TestImageAnalysisRepairEmpty(t *testing.T) {
	var r ImageAnalysisResult
	assert.True(t, r.Repair())
	require.NotEmpty(t, r.Problems)
	assert.Equal(t, ConfidenceLow, r.Problems[0].Confidence)
	assert.NotEmpty(t, r.VisualObservations)
	assert.Len(t, r.ClarifyingQuestions, 5)
	assert.True(t, r.UsedFallback)
}

func TestImageAnalysisRepairValidPassthrough(t *testing.T) {
	r := ImageAnalysisResult{
		Problems:           []Problem{{Label: "Cracked screen", Reasoning: "Visible fracture", Confidence: "high"}},
		VisualObservations: "Display glass is shattered in the top corner.",
		ClarifyingQuestions: []string{
			"Does the touch layer respond?", "When did it crack?", "Was the device dropped?",
			"Is the image behind the crack intact?", "Any other damage?",
		},
	}
	assert.False(t, r.Repair())
	assert.False(t, r.UsedFallback)
	assert.Equal(t, "Cracked screen", r.Problems[0].Label)
}

func TestImageAnalysisRepairNormalizesConfidence(t *testing.T) {
	r := ImageAnalysisResult{
		Problems:           []Problem{{Label: "Worn port", Confidence: "VERY SURE"}},
		VisualObservations: "x",
		ClarifyingQuestions: []string{
			"a", "b", "c", "d", "e",
		},
	}
	assert.True(t, r.Repair())
	assert.Equal(t, ConfidenceMedium, r.Problems[0].Confidence)
}

func TestFinalDiagnosisRepairSubstitutesCannedSteps(t *testing.T) {
	d := FinalDiagnosis{Problem: "Dead battery"}
	assert.True(t, d.Repair())
	// The generic sequence goes out verbatim.
	assert.Equal(t, GenericRepairSteps, d.DetailedRepairSteps)
	assert.GreaterOrEqual(t, len(d.SafetyTips), 3)
	assert.True(t, d.UsedFallback)
}

func TestFinalDiagnosisRepairValidPassthrough(t *testing.T) {
	d := FinalDiagnosis{
		Problem:             "Clogged fan",
		DetailedRepairSteps: []string{"Open the case", "Remove dust", "Reassemble"},
		SafetyTips:          []string{"Unplug first", "Ground yourself", "Mind sharp edges"},
	}
	assert.False(t, d.Repair())
	assert.False(t, d.UsedFallback)
	assert.Equal(t, []string{"Open the case", "Remove dust", "Reassemble"}, d.DetailedRepairSteps)
}

func TestEnhancedDiagnosisRepairEmptySteps(t *testing.T) {
	d := EnhancedDiagnosis{ProblemWithReason: ProblemWithReason{Problem: "Short circuit", Reason: "Burn marks"}}
	assert.True(t, d.Repair())
	require.Len(t, d.RepairStepsWithSafety, 1)
	assert.Contains(t, d.RepairStepsWithSafety[0], "professional")
	assert.NotNil(t, d.ToolsNeeded)
}

func TestAlternativeRepairRanksAndPads(t *testing.T) {
	r := AlternativeResult{Alternatives: []Alternative{
		{Hypothesis: "B", Confidence: "low"},
		{Hypothesis: "A", Confidence: "high"},
	}}
	assert.False(t, r.Repair())
	require.Len(t, r.Alternatives, 2)
	assert.Equal(t, "A", r.Alternatives[0].Hypothesis)
	assert.Equal(t, "B", r.Alternatives[1].Hypothesis)

	var empty AlternativeResult
	assert.True(t, empty.Repair())
	assert.GreaterOrEqual(t, len(empty.Alternatives), 2)
}

func TestDescriptionRepair(t *testing.T) {
	var r DescriptionAnalysisResult
	assert.True(t, r.Repair())
	require.NotEmpty(t, r.PrioritizedProblems)
	assert.NotNil(t, r.MatchedKeywords)

	ok := DescriptionAnalysisResult{
		PrioritizedProblems: []Problem{{Label: "Fan bearing wear", Confidence: "medium"}},
		MatchedKeywords:     []string{"fan", "noise"},
	}
	assert.False(t, ok.Repair())
}

func TestCodeAnalysisRepair(t *testing.T) {
	var r CodeAnalysisResult
	assert.True(t, r.Repair())
	assert.NotEmpty(t, r.Summary)
	assert.NotNil(t, r.Issues)
	assert.NotEmpty(t, r.Suggestions)
}
