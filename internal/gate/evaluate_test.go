package gate

import (
	"reflect"
	"testing"

	"github.com/usawrapco/shoptrack/internal/job"
)

// readyJob returns a job at the given stage with every gate requirement for
// that stage satisfied.
func readyJob(stage job.Stage) *job.Job {
	return &job.Job{
		ID:         "job-1",
		OrgID:      "org-1",
		Stage:      stage,
		CustomerID: "cust-1",
		Vehicle:    "2022 Sprinter van, full wrap",
		Revenue:    4000,
		FormData: job.FormData{
			LineItems:  []job.LineItem{{Description: "full wrap", Amount: 4000}},
			LeadSource: job.LeadInbound,
		},
		FinData: job.FinData{Material: 800, Labor: 700, DesignFee: 150},
		Actuals: job.Actuals{
			MaterialLogged:     780,
			LaborLogged:        650,
			PrintNotes:         "3M 2080, panels 1-6 printed clean",
			PreInstallDone:     true,
			PostInstallDone:    true,
			InstallerSignature: true,
			QC:                 job.QCPass,
		},
		Checkout: job.Checkout{Intake: true, Production: true, Install: true, Review: true, Close: true},
	}
}

// breakers knows, per stage, how to make each named requirement fail.
var breakers = map[job.Stage]map[string]func(*job.Job){
	job.StageIntake: {
		"customer":    func(j *job.Job) { j.CustomerID = "" },
		"vehicle":     func(j *job.Job) { j.Vehicle = "" },
		"revenue":     func(j *job.Job) { j.Revenue = 0 },
		"line_items":  func(j *job.Job) { j.FormData.LineItems = nil },
		"lead_source": func(j *job.Job) { j.FormData.LeadSource = "" },
		"signoff":     func(j *job.Job) { j.Checkout.Intake = false },
	},
	job.StageProduction: {
		"print_notes":     func(j *job.Job) { j.Actuals.PrintNotes = "" },
		"material_logged": func(j *job.Job) { j.Actuals.MaterialLogged = 0 },
		"signoff":         func(j *job.Job) { j.Checkout.Production = false },
	},
	job.StageInstall: {
		"pre_install":         func(j *job.Job) { j.Actuals.PreInstallDone = false },
		"post_install":        func(j *job.Job) { j.Actuals.PostInstallDone = false },
		"installer_signature": func(j *job.Job) { j.Actuals.InstallerSignature = false },
		"labor_logged":        func(j *job.Job) { j.Actuals.LaborLogged = 0 },
		"signoff":             func(j *job.Job) { j.Checkout.Install = false },
	},
	job.StageReview: {
		"qc_pass": func(j *job.Job) { j.Actuals.QC = job.QCReprint },
		"signoff": func(j *job.Job) { j.Checkout.Review = false },
	},
	job.StageClose: {
		"revenue":       func(j *job.Job) { j.Revenue = 0 },
		"material_cost": func(j *job.Job) { j.FinData.Material = 0 },
		"labor_cost":    func(j *job.Job) { j.FinData.Labor = 0 },
		"signoff":       func(j *job.Job) { j.Checkout.Close = false },
	},
}

func TestEvaluate_ReadyJobAdvancesAtEveryStage(t *testing.T) {
	for _, stage := range job.Stages() {
		if stage.Terminal() {
			continue
		}
		ev := Evaluate(readyJob(stage))
		if !ev.CanAdvance {
			t.Errorf("stage %s: CanAdvance=false, missing=%v", stage, ev.Missing)
		}
		if len(ev.Missing) != 0 || ev.FirstBlocking != "" {
			t.Errorf("stage %s: passing evaluation must carry no messages, got %v", stage, ev.Missing)
		}
	}
}

// Every requirement in the table must be load-bearing: breaking any single
// one on an otherwise-passing job must flip CanAdvance.
func TestEvaluate_EachRequirementIsLoadBearing(t *testing.T) {
	for stage, rule := range rules {
		for _, req := range rule.Requirements {
			breaker, ok := breakers[stage][req.Name]
			if !ok {
				t.Fatalf("no breaker for %s/%s — test out of sync with table", stage, req.Name)
			}
			j := readyJob(stage)
			breaker(j)
			ev := Evaluate(j)
			if ev.CanAdvance {
				t.Errorf("%s/%s: breaking requirement did not block advancement", stage, req.Name)
			}
			if len(ev.Missing) != 1 || ev.Missing[0] != req.Message {
				t.Errorf("%s/%s: missing = %v, want exactly [%q]", stage, req.Name, ev.Missing, req.Message)
			}
		}
	}
}

// Empty print notes plus missing sign-off yields both messages, print notes
// first (table order).
func TestEvaluate_ProductionMissingNotesAndSignoff(t *testing.T) {
	j := readyJob(job.StageProduction)
	j.Actuals.PrintNotes = ""
	j.Checkout.Production = false

	ev := Evaluate(j)
	if ev.CanAdvance {
		t.Fatal("CanAdvance must be false")
	}
	want := []string{
		"print notes have not been recorded",
		"production sign-off is missing",
	}
	if !reflect.DeepEqual(ev.Missing, want) {
		t.Errorf("missing = %v, want %v (table order)", ev.Missing, want)
	}
	if ev.FirstBlocking != want[0] {
		t.Errorf("first blocking = %q, want %q", ev.FirstBlocking, want[0])
	}
}

func TestEvaluate_TerminalStage(t *testing.T) {
	j := readyJob(job.StageClose)
	j.Stage = job.StageDone
	ev := Evaluate(j)
	if ev.CanAdvance {
		t.Error("done jobs must not advance")
	}
	if !ev.InvalidStage {
		t.Error("terminal stage must be reported as invalid-stage, not a gate failure")
	}
	if len(ev.Missing) != 1 {
		t.Errorf("want a single invalid-stage message, got %v", ev.Missing)
	}
}

func TestEvaluate_UnknownStage(t *testing.T) {
	j := readyJob(job.StageIntake)
	j.Stage = "paused"
	ev := Evaluate(j)
	if ev.CanAdvance || !ev.InvalidStage {
		t.Errorf("unknown stage: got CanAdvance=%v InvalidStage=%v", ev.CanAdvance, ev.InvalidStage)
	}
}

// Same snapshot in, bit-identical result out.
func TestEvaluate_Deterministic(t *testing.T) {
	j := readyJob(job.StageInstall)
	j.Actuals.PreInstallDone = false
	j.Actuals.LaborLogged = 0

	first := Evaluate(j)
	for i := 0; i < 10; i++ {
		if got := Evaluate(j); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestNextStage_ChainReachesDone(t *testing.T) {
	s := job.StageIntake
	for i := 0; i < 10; i++ {
		next, err := NextStage(s)
		if err != nil {
			t.Fatalf("NextStage(%s): %v", s, err)
		}
		if !s.Before(next) {
			t.Fatalf("stage chain must move forward: %s -> %s", s, next)
		}
		s = next
		if s == job.StageDone {
			return
		}
	}
	t.Fatal("stage chain never reached done")
}

func TestNextStage_Terminal(t *testing.T) {
	if _, err := NextStage(job.StageDone); err == nil {
		t.Error("NextStage(done) must error")
	}
}
