package gate

import (
	"fmt"

	"github.com/usawrapco/shoptrack/internal/job"
)

// Evaluation is the outcome of running a job against its stage gate.
type Evaluation struct {
	// CanAdvance is true iff every requirement for the current stage passed.
	CanAdvance bool
	// Missing lists the failure messages of every unmet requirement, in
	// table order.
	Missing []string
	// FirstBlocking is the first unmet requirement's message, or "" when the
	// job can advance. Feeds the highlighted item in UI checklists.
	FirstBlocking string
	// InvalidStage is set when the job sits on a terminal or unknown stage.
	// That is a guard condition, not a gate failure: no user input fixes it.
	InvalidStage bool
}

// Evaluate runs every requirement for the job's current stage and collects
// the failures. Pure: no side effects, no clock, no store access. Mutating
// the job's stage is the caller's decision.
func Evaluate(j *job.Job) Evaluation {
	rule, ok := rules[j.Stage]
	if !ok {
		msg := fmt.Sprintf("stage %q cannot be advanced", j.Stage)
		return Evaluation{
			CanAdvance:    false,
			Missing:       []string{msg},
			FirstBlocking: msg,
			InvalidStage:  true,
		}
	}

	var missing []string
	for _, req := range rule.Requirements {
		if !req.Check(j) {
			missing = append(missing, req.Message)
		}
	}

	ev := Evaluation{
		CanAdvance: len(missing) == 0,
		Missing:    missing,
	}
	if len(missing) > 0 {
		ev.FirstBlocking = missing[0]
	}
	return ev
}
