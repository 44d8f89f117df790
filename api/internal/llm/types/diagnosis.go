package types

import "strings"

// FinalDiagnosis is the canonical terminal artifact of a session.
type FinalDiagnosis struct {
	Problem             string   `json:"problem"`
	DetailedRepairSteps []string `json:"detailedRepairSteps"`
	SafetyTips          []string `json:"safetyTips"`
	UsedFallback        bool     `json:"usedFallback,omitempty"`
}

// GenericRepairSteps is the canned sequence substituted verbatim when the
// model omits repair steps.
var GenericRepairSteps = []string{
	"Power the device off completely and disconnect it from any power source.",
	"Inspect the device for visible damage: cracks, swelling, corrosion, or loose connectors.",
	"Clean accessible ports and contacts with compressed air or a dry soft brush.",
	"Reconnect power and test whether the original problem still occurs.",
	"If the problem persists, stop and consult a qualified repair technician.",
}

var genericSafetyTips = []string{
	"Always disconnect power before opening or cleaning a device.",
	"Never work on a device with a swollen or damaged battery; have it handled professionally.",
	"Work on a dry, static-safe surface and keep liquids away from the device.",
}

// Repair coerces the diagnosis to its minimum shape: non-empty problem, at
// least 3 repair steps, at least 3 safety tips.
func (d *FinalDiagnosis) Repair() bool {
	fell := false

	if strings.TrimSpace(d.Problem) == "" {
		d.Problem = "Device issue requiring professional assessment"
		fell = true
	}

	steps := trimNonEmpty(d.DetailedRepairSteps)
	if len(steps) != len(d.DetailedRepairSteps) {
		fell = true
	}
	if len(steps) < 3 {
		steps = append([]string(nil), GenericRepairSteps...)
		fell = true
	}
	d.DetailedRepairSteps = steps

	tips := trimNonEmpty(d.SafetyTips)
	if len(tips) != len(d.SafetyTips) {
		fell = true
	}
	for i := 0; len(tips) < 3; i++ {
		tips = append(tips, genericSafetyTips[i%len(genericSafetyTips)])
		fell = true
	}
	d.SafetyTips = tips

	if fell {
		d.UsedFallback = true
	}
	return fell
}

func FallbackDiagnosis() FinalDiagnosis {
	d := FinalDiagnosis{}
	d.Repair()
	return d
}

// EnhancedDiagnosis is the variant terminal shape kept for the
// enhanced-diagnosis endpoint.
type EnhancedDiagnosis struct {
	ProblemWithReason     ProblemWithReason `json:"problemWithReason"`
	RepairStepsWithSafety []string          `json:"repairStepsWithSafety"`
	ToolsNeeded           []string          `json:"toolsNeeded"`
	UsedFallback          bool              `json:"usedFallback,omitempty"`
}

type ProblemWithReason struct {
	Problem string `json:"problem"`
	Reason  string `json:"reason"`
}

func (d *EnhancedDiagnosis) Repair() bool {
	fell := false

	if strings.TrimSpace(d.ProblemWithReason.Problem) == "" {
		d.ProblemWithReason.Problem = "Device issue requiring professional assessment"
		fell = true
	}
	if strings.TrimSpace(d.ProblemWithReason.Reason) == "" {
		d.ProblemWithReason.Reason = "Assessment pending"
		fell = true
	}

	steps := trimNonEmpty(d.RepairStepsWithSafety)
	if len(steps) != len(d.RepairStepsWithSafety) {
		fell = true
	}
	if len(steps) == 0 {
		steps = []string{"Stop here and consult a qualified repair professional before proceeding."}
		fell = true
	}
	d.RepairStepsWithSafety = steps

	tools := trimNonEmpty(d.ToolsNeeded)
	if tools == nil {
		tools = []string{}
	}
	d.ToolsNeeded = tools

	if fell {
		d.UsedFallback = true
	}
	return fell
}

func FallbackEnhancedDiagnosis() EnhancedDiagnosis {
	d := EnhancedDiagnosis{}
	d.Repair()
	return d
}

func trimNonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
