// Package triage classifies jobs for operational triage.
//
// Classify inspects a job's gate status and its time-in-stage and returns the
// severity tier used by the triage board:
//
//   - BLOCKED  → unmet gate requirements (remediation: enter the missing data)
//   - STALLED  → gate passes but the job overstayed its stage threshold
//   - ON_TRACK → everything else
//
// Requirement failure dominates elapsed time: a job that is both overdue and
// missing data is BLOCKED, because the fix is different.
package triage

import (
	"fmt"

	"github.com/usawrapco/shoptrack/internal/gate"
	"github.com/usawrapco/shoptrack/internal/job"
)

// Severity is the triage tier of a job.
type Severity int

const (
	SeverityUnspecified Severity = iota
	// SeverityOnTrack: gate passes and the job is within its stage threshold.
	SeverityOnTrack
	// SeverityStalled: gate passes but daysInStage exceeds the stage threshold.
	SeverityStalled
	// SeverityBlocked: one or more gate requirements are unmet.
	SeverityBlocked
)

// String returns a human-readable label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOnTrack:
		return "ON_TRACK"
	case SeverityStalled:
		return "STALLED"
	case SeverityBlocked:
		return "BLOCKED"
	default:
		return "UNSPECIFIED"
	}
}

// Per-stage day thresholds before a gate-passing job counts as stalled.
// Tunable data, not logic; exported so dashboards and tests can reference
// them without magic numbers.
const (
	IntakeStalledDays     = 7
	ProductionStalledDays = 5
	InstallStalledDays    = 3
	ReviewStalledDays     = 2
	CloseStalledDays      = 3
)

// StalledThreshold returns the stalled threshold in days for a stage, and
// false for terminal or unknown stages (which are never stalled).
func StalledThreshold(s job.Stage) (int, bool) {
	switch s {
	case job.StageIntake:
		return IntakeStalledDays, true
	case job.StageProduction:
		return ProductionStalledDays, true
	case job.StageInstall:
		return InstallStalledDays, true
	case job.StageReview:
		return ReviewStalledDays, true
	case job.StageClose:
		return CloseStalledDays, true
	default:
		return 0, false
	}
}

// Classification is the output of Classify.
type Classification struct {
	Severity Severity
	// Label is a short human-readable explanation for dashboards.
	Label string
}

// Classify returns the triage tier for a job. daysInStage is supplied by the
// caller (derived from the job's stage-entry timestamp) so classification
// stays clock-free and deterministic.
//
// Decision order (deliberate tie-break):
//  1. Unmet gate requirements → BLOCKED, regardless of elapsed time.
//  2. daysInStage over the stage threshold → STALLED.
//  3. Otherwise → ON_TRACK.
func Classify(j *job.Job, daysInStage int) Classification {
	ev := gate.Evaluate(j)
	if !ev.CanAdvance {
		if ev.InvalidStage && j.Stage.Terminal() {
			// Done jobs have nothing to triage.
			return Classification{Severity: SeverityOnTrack, Label: "complete"}
		}
		return Classification{
			Severity: SeverityBlocked,
			Label:    fmt.Sprintf("blocked: %s", ev.FirstBlocking),
		}
	}

	if threshold, ok := StalledThreshold(j.Stage); ok && daysInStage > threshold {
		return Classification{
			Severity: SeverityStalled,
			Label:    fmt.Sprintf("%d days in %s (threshold %d)", daysInStage, j.Stage, threshold),
		}
	}

	return Classification{Severity: SeverityOnTrack, Label: "on track"}
}
