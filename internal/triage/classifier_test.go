package triage

import (
	"strings"
	"testing"

	"github.com/usawrapco/shoptrack/internal/job"
)

// passingJob returns a production-stage job with its gate fully satisfied.
func passingJob() *job.Job {
	return &job.Job{
		ID:         "job-1",
		OrgID:      "org-1",
		Stage:      job.StageProduction,
		CustomerID: "cust-1",
		Vehicle:    "box truck, partial wrap",
		Revenue:    2500,
		Actuals: job.Actuals{
			PrintNotes:     "panels printed, laminated",
			MaterialLogged: 300,
		},
		Checkout: job.Checkout{Production: true},
	}
}

func assertSeverity(t *testing.T, desc string, got Classification, want Severity) {
	t.Helper()
	if got.Severity != want {
		t.Errorf("%s: severity = %s, want %s (label %q)", desc, got.Severity, want, got.Label)
	}
	if got.Label == "" {
		t.Errorf("%s: label must not be empty", desc)
	}
}

func TestClassify_OnTrack(t *testing.T) {
	got := Classify(passingJob(), 2)
	assertSeverity(t, "gate passes, within threshold", got, SeverityOnTrack)
}

func TestClassify_AtThresholdStillOnTrack(t *testing.T) {
	// Exactly at the threshold is not over it.
	got := Classify(passingJob(), ProductionStalledDays)
	assertSeverity(t, "at-threshold job", got, SeverityOnTrack)
}

func TestClassify_Stalled(t *testing.T) {
	got := Classify(passingJob(), ProductionStalledDays+1)
	assertSeverity(t, "over-threshold job", got, SeverityStalled)
	if !strings.Contains(got.Label, "6 days") {
		t.Errorf("stalled label must include the day count, got %q", got.Label)
	}
}

// Unmet requirements dominate time: an overdue job with missing data is
// BLOCKED, not STALLED, because the remediation differs.
func TestClassify_BlockedDominatesStalled(t *testing.T) {
	j := passingJob()
	j.Actuals.PrintNotes = ""
	got := Classify(j, 30)
	assertSeverity(t, "overdue and missing data", got, SeverityBlocked)
	if !strings.Contains(got.Label, "print notes") {
		t.Errorf("blocked label must name the first blocking requirement, got %q", got.Label)
	}
}

func TestClassify_DoneJobIsNotTriaged(t *testing.T) {
	j := passingJob()
	j.Stage = job.StageDone
	got := Classify(j, 90)
	assertSeverity(t, "done job", got, SeverityOnTrack)
}

func TestClassify_PerStageThresholds(t *testing.T) {
	cases := []struct {
		stage job.Stage
		want  int
	}{
		{job.StageIntake, 7},
		{job.StageProduction, 5},
		{job.StageInstall, 3},
		{job.StageReview, 2},
		{job.StageClose, 3},
	}
	for _, tc := range cases {
		got, ok := StalledThreshold(tc.stage)
		if !ok || got != tc.want {
			t.Errorf("StalledThreshold(%s) = %d,%v, want %d,true", tc.stage, got, ok, tc.want)
		}
	}
	if _, ok := StalledThreshold(job.StageDone); ok {
		t.Error("done must have no stalled threshold")
	}
}
