package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"fixmate/api/internal/i18n"
	"fixmate/api/internal/llm/types"
)

// Each builder returns a system instruction and a user message. The system
// instruction pins the exact JSON shape; the user message carries the stage
// input as JSON. Both engines feed these verbatim to their provider.

func languageClause(code string) string {
	_, name := i18n.Resolve(code)
	return fmt.Sprintf("Write every human-readable string in %s.", name)
}

func inputJSON(v any) string {
	b, _ := json.Marshal(v)
	return "INPUT_JSON:\n" + string(b)
}

const jsonOnly = "Respond with exactly one JSON object in the shape below. Any text outside the JSON is an error.\n"

func ImageAnalysis(in types.ImageAnalysisInput) (system, user string) {
	system = `You are the vision stage of a device repair assistant. Look at the photo of a possibly broken device and report what you see.
` + jsonOnly + `{
  "problems": [{"label": string, "reasoning": string, "confidence": "high"|"medium"|"low"}],
  "visualObservations": string,
  "clarifyingQuestions": [string, string, string, string, string]
}
clarifyingQuestions must contain exactly 5 questions a technician would ask next. Do not guess a repair yet.
` + languageClause(in.Language)

	var sb strings.Builder
	sb.WriteString("Analyze the attached device photo.")
	if c := strings.TrimSpace(in.DeviceCategory); c != "" {
		fmt.Fprintf(&sb, " The device category is %q.", c)
	}
	return system, sb.String()
}

func DescriptionAnalysis(in types.DescriptionInput) (system, user string) {
	system = `You are the text stage of a device repair assistant. Combine the user's symptom description with the earlier visual findings and prioritize the likely problems.
` + jsonOnly + `{
  "prioritizedProblems": [{"label": string, "reasoning": string, "confidence": "high"|"medium"|"low"}],
  "matchedKeywords": [string]
}
matchedKeywords are the device/brand/symptom terms you extracted from the description, lowercased.
` + languageClause(in.Language)
	return system, inputJSON(in)
}

func Questions(in types.QuestionsInput) (system, user string) {
	system = fmt.Sprintf(`You are the question stage of a device repair assistant. Produce between %d and %d clarifying questions for the device owner.
%s{
  "questions": [{"id": string, "category": string, "question": string}]
}
category must be one of: Power, Performance, Physical, Audio, Display, Connection, Usage, Environment, General.
Each question must be answerable by a non-technical user.
%s`, in.Min, in.Max, jsonOnly, languageClause(in.Language))
	return system, inputJSON(in)
}

func Diagnosis(in types.DiagnosisInput) (system, user string) {
	system = `You are the final-diagnosis stage of a device repair assistant. Using the accumulated context (device, visual findings, description findings, question answers), produce one diagnosis and a concrete repair guide.
` + jsonOnly + `{
  "problem": string,
  "detailedRepairSteps": [string],
  "safetyTips": [string]
}
detailedRepairSteps needs at least 3 ordered steps; safetyTips at least 3.
` + languageClause(in.Language)
	return system, inputJSON(in)
}

func EnhancedDiagnosis(in types.DiagnosisInput) (system, user string) {
	system = `You are the final-diagnosis stage of a device repair assistant. Produce one diagnosis with its reason, repair steps with safety notes folded in, and the tools required.
` + jsonOnly + `{
  "problemWithReason": {"problem": string, "reason": string},
  "repairStepsWithSafety": [string],
  "toolsNeeded": [string]
}
` + languageClause(in.Language)
	return system, inputJSON(in)
}

func Alternatives(in types.AlternativeInput) (system, user string) {
	system = `You are the fallback stage of a device repair assistant. The user reports the proposed solution did not fix the device. Propose alternative hypotheses, best first. Do not repeat the rejected solution.
` + jsonOnly + `{
  "alternatives": [{"hypothesis": string, "reasoning": string, "confidence": "high"|"medium"|"low"}]
}
Give at least 2 alternatives.
` + languageClause(in.Language)
	return system, inputJSON(in)
}

func CodeAnalysis(in types.CodeAnalysisInput) (system, user string) {
	system = `You are the code/schematic stage of a device repair assistant. Analyze the supplied firmware source or schematic for faults relevant to the described problem.
` + jsonOnly + `{
  "summary": string,
  "issues": [string],
  "suggestions": [string]
}
` + languageClause(in.Language)

	var sb strings.Builder
	if c := strings.TrimSpace(in.Context); c != "" {
		fmt.Fprintf(&sb, "Context: %s\n", c)
	}
	if code := strings.TrimSpace(in.Code); code != "" {
		sb.WriteString("CODE:\n")
		sb.WriteString(code)
	} else {
		sb.WriteString("Analyze the attached schematic image.")
	}
	return system, sb.String()
}
