// Package gate holds the stage-advancement rules for production jobs.
//
// Each non-terminal stage maps to an ordered list of named requirements; a
// job may only move to the next stage when every requirement passes.
// Evaluation is a pure function over the job snapshot — same snapshot, same
// result — so callers decide when (and whether) to mutate the job.
package gate

import (
	"fmt"

	"github.com/usawrapco/shoptrack/internal/job"
)

// Requirement is one named gate predicate. Check reports pass/fail; Message
// is surfaced to the user when the check fails. Requirements are independent
// of each other — table order only controls which failure is surfaced first.
type Requirement struct {
	Name    string
	Message string
	Check   func(*job.Job) bool
}

// Rule is the gate for one stage: the stage it advances to plus the
// requirements that must all pass first.
type Rule struct {
	Next         job.Stage
	Requirements []Requirement
}

// rules is the static gate table. Keyed by current stage; terminal stages
// have no entry.
var rules = map[job.Stage]Rule{
	job.StageIntake: {
		Next: job.StageProduction,
		Requirements: []Requirement{
			{
				Name:    "customer",
				Message: "customer must be set",
				Check:   func(j *job.Job) bool { return j.CustomerID != "" },
			},
			{
				Name:    "vehicle",
				Message: "vehicle description is required",
				Check:   func(j *job.Job) bool { return j.Vehicle != "" },
			},
			{
				Name:    "revenue",
				Message: "quoted revenue must be greater than zero",
				Check:   func(j *job.Job) bool { return j.Revenue > 0 },
			},
			{
				Name:    "line_items",
				Message: "at least one line item is required",
				Check:   func(j *job.Job) bool { return len(j.FormData.LineItems) > 0 },
			},
			{
				Name:    "lead_source",
				Message: "lead source must be tagged",
				Check:   func(j *job.Job) bool { return j.FormData.LeadSource != "" },
			},
			{
				Name:    "signoff",
				Message: "intake sign-off is missing",
				Check:   func(j *job.Job) bool { return j.Checkout.Intake },
			},
		},
	},
	job.StageProduction: {
		Next: job.StageInstall,
		Requirements: []Requirement{
			{
				Name:    "print_notes",
				Message: "print notes have not been recorded",
				Check:   func(j *job.Job) bool { return j.Actuals.PrintNotes != "" },
			},
			{
				Name:    "material_logged",
				Message: "material usage has not been logged",
				Check:   func(j *job.Job) bool { return j.Actuals.MaterialLogged > 0 },
			},
			{
				Name:    "signoff",
				Message: "production sign-off is missing",
				Check:   func(j *job.Job) bool { return j.Checkout.Production },
			},
		},
	},
	job.StageInstall: {
		Next: job.StageReview,
		Requirements: []Requirement{
			{
				Name:    "pre_install",
				Message: "pre-install checklist is incomplete",
				Check:   func(j *job.Job) bool { return j.Actuals.PreInstallDone },
			},
			{
				Name:    "post_install",
				Message: "post-install checklist is incomplete",
				Check:   func(j *job.Job) bool { return j.Actuals.PostInstallDone },
			},
			{
				Name:    "installer_signature",
				Message: "installer signature is missing",
				Check:   func(j *job.Job) bool { return j.Actuals.InstallerSignature },
			},
			{
				Name:    "labor_logged",
				Message: "install labor has not been logged",
				Check:   func(j *job.Job) bool { return j.Actuals.LaborLogged > 0 },
			},
			{
				Name:    "signoff",
				Message: "install sign-off is missing",
				Check:   func(j *job.Job) bool { return j.Checkout.Install },
			},
		},
	},
	job.StageReview: {
		Next: job.StageClose,
		Requirements: []Requirement{
			{
				Name:    "qc_pass",
				Message: "QC has not passed (reprint or fix still open)",
				Check:   func(j *job.Job) bool { return j.Actuals.QC == job.QCPass },
			},
			{
				Name:    "signoff",
				Message: "review sign-off is missing",
				Check:   func(j *job.Job) bool { return j.Checkout.Review },
			},
		},
	},
	job.StageClose: {
		Next: job.StageDone,
		Requirements: []Requirement{
			{
				Name:    "revenue",
				Message: "final revenue must be greater than zero",
				Check:   func(j *job.Job) bool { return j.Revenue > 0 },
			},
			{
				Name:    "material_cost",
				Message: "final material cost has not been recorded",
				Check:   func(j *job.Job) bool { return j.FinData.Material > 0 },
			},
			{
				Name:    "labor_cost",
				Message: "final labor cost has not been recorded",
				Check:   func(j *job.Job) bool { return j.FinData.Labor > 0 },
			},
			{
				Name:    "signoff",
				Message: "close sign-off is missing",
				Check:   func(j *job.Job) bool { return j.Checkout.Close },
			},
		},
	},
}

// RuleFor returns the gate rule for a stage. ok is false for terminal or
// unknown stages.
func RuleFor(s job.Stage) (Rule, bool) {
	r, ok := rules[s]
	return r, ok
}

// NextStage returns the stage s advances to, or an error for terminal and
// unknown stages.
func NextStage(s job.Stage) (job.Stage, error) {
	r, ok := rules[s]
	if !ok {
		return "", fmt.Errorf("stage %q has no next stage", s)
	}
	return r.Next, nil
}
