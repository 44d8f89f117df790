package types

import (
	"fmt"
	"strings"
)

// Question categories the client renders as section headers. The model is
// told to pick from this set; anything else is coerced to General.
const (
	CategoryPower       = "Power"
	CategoryPerformance = "Performance"
	CategoryPhysical    = "Physical"
	CategoryAudio       = "Audio"
	CategoryDisplay     = "Display"
	CategoryConnection  = "Connection"
	CategoryUsage       = "Usage"
	CategoryEnvironment = "Environment"
	CategoryGeneral     = "General"
)

var KnownCategories = map[string]bool{
	CategoryPower:       true,
	CategoryPerformance: true,
	CategoryPhysical:    true,
	CategoryAudio:       true,
	CategoryDisplay:     true,
	CategoryConnection:  true,
	CategoryUsage:       true,
	CategoryEnvironment: true,
	CategoryGeneral:     true,
}

type Question struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
}

type QuestionsResult struct {
	Questions    []Question `json:"questions"`
	UsedFallback bool       `json:"usedFallback,omitempty"`
}

// genericQuestions are substituted when the model returns nothing usable.
// They intentionally span several categories so the client still renders a
// sensible form.
var genericQuestions = []Question{
	{Category: CategoryGeneral, Question: "When did you first notice the problem?"},
	{Category: CategoryUsage, Question: "Does the problem happen every time you use the device, or only sometimes?"},
	{Category: CategoryEnvironment, Question: "Has the device been exposed to heat, moisture, or a fall recently?"},
	{Category: CategoryPower, Question: "Does the device power on and stay on normally?"},
	{Category: CategoryGeneral, Question: "Have you tried any fixes already, and what happened?"},
}

// RepairQuestions coerces a model-produced question list to the stage
// contract: between min and max items, every item with an id, a known
// category, and non-empty text. Returns the repaired list and whether any
// substitution was applied.
func RepairQuestions(in []Question, min, max int) ([]Question, bool) {
	fell := false
	out := make([]Question, 0, max)
	for _, q := range in {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			fell = true
			continue
		}
		if !KnownCategories[q.Category] {
			q.Category = CategoryGeneral
			fell = true
		}
		out = append(out, q)
		// Trimming a longer valid list to the cap is not a substitution.
		if len(out) == max {
			break
		}
	}
	for i := 0; len(out) < min; i++ {
		g := genericQuestions[i%len(genericQuestions)]
		out = append(out, g)
		fell = true
	}
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	return out, fell
}
