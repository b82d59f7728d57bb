package comp

import (
	"reflect"
	"testing"

	"github.com/usawrapco/shoptrack/internal/job"
)

// wrapJob builds the worked example: revenue $4,000, material $800,
// labor $700, design fee $150, misc $0, training tool used.
func wrapJob(source job.LeadSource) *job.Job {
	return &job.Job{
		ID:      "job-1",
		OrgID:   "org-1",
		Stage:   job.StageClose,
		Revenue: 4000,
		FormData: job.FormData{
			LeadSource:       source,
			TrainingToolUsed: true,
		},
		FinData: job.FinData{Material: 800, Labor: 700, DesignFee: 150, Misc: 0},
	}
}

func TestCompute_InboundWithTrainingBonus(t *testing.T) {
	// GP = 4000 - 1650 = 2350; GPM = 58.75 (no GPM bonus);
	// rate = 4.5 base + 1.0 training = 5.5% → commission 129.25.
	got := Compute(wrapJob(job.LeadInbound), DefaultRatePlan(), nil)

	if got.GrossProfit != 2350 {
		t.Errorf("gross profit = %.2f, want 2350.00", got.GrossProfit)
	}
	if got.GPM != 58.8 {
		t.Errorf("gpm = %.1f, want 58.8", got.GPM)
	}
	if got.Commission != 129.25 {
		t.Errorf("commission = %.2f, want 129.25", got.Commission)
	}
	if got.Breakdown.FinalRate != 5.5 {
		t.Errorf("final rate = %.1f, want 5.5", got.Breakdown.FinalRate)
	}
	if got.Breakdown.GPMBonusRate != 0 {
		t.Errorf("GPM bonus applied at 58.75%% margin")
	}
	if got.Breakdown.BaseAmount+got.Breakdown.BonusAmount != got.Commission {
		t.Errorf("base %.2f + bonus %.2f != commission %.2f",
			got.Breakdown.BaseAmount, got.Breakdown.BonusAmount, got.Commission)
	}
}

// Presold is not bonus-eligible: commission is GP × base rate exactly, even
// with the training flag set and regardless of margin.
func TestCompute_PresoldIgnoresBonuses(t *testing.T) {
	got := Compute(wrapJob(job.LeadPresold), DefaultRatePlan(), nil)

	if got.Commission != 117.50 {
		t.Errorf("commission = %.2f, want 117.50", got.Commission)
	}
	if got.Breakdown.FinalRate != 5.0 {
		t.Errorf("final rate = %.1f, want base 5.0", got.Breakdown.FinalRate)
	}
	if got.Breakdown.BonusAmount != 0 {
		t.Errorf("bonus amount = %.2f, want 0", got.Breakdown.BonusAmount)
	}
}

func TestCompute_PresoldIgnoresBonusesAboveGPMFloor(t *testing.T) {
	j := wrapJob(job.LeadPresold)
	j.FinData = job.FinData{Material: 500} // GP 3500, GPM 87.5 > 73
	got := Compute(j, DefaultRatePlan(), nil)

	if got.Breakdown.GPMBonusRate != 0 || got.Breakdown.TrainingBonusRate != 0 {
		t.Errorf("bonuses applied to non-eligible source: %+v", got.Breakdown)
	}
	// 3500 × 5% = 175.00 exactly.
	if got.Commission != 175.00 {
		t.Errorf("commission = %.2f, want 175.00", got.Commission)
	}
}

func TestCompute_GPMBonusAboveFloor(t *testing.T) {
	j := wrapJob(job.LeadInbound)
	j.FormData.TrainingToolUsed = false
	j.FinData = job.FinData{Material: 1000} // GP 3000, GPM 75 > 73
	got := Compute(j, DefaultRatePlan(), nil)

	// 4.5 + 2.0 = 6.5% of 3000 = 195.00.
	if got.Commission != 195.00 {
		t.Errorf("commission = %.2f, want 195.00", got.Commission)
	}
	if got.Breakdown.GPMBonusRate != 2.0 {
		t.Errorf("gpm bonus rate = %.1f, want 2.0", got.Breakdown.GPMBonusRate)
	}
}

func TestCompute_GPMExactlyAtFloorNoBonus(t *testing.T) {
	j := &job.Job{
		Revenue:  10000,
		FormData: job.FormData{LeadSource: job.LeadInbound},
		FinData:  job.FinData{Material: 2700}, // GPM exactly 73.0
	}
	got := Compute(j, DefaultRatePlan(), nil)
	if got.Breakdown.GPMBonusRate != 0 {
		t.Errorf("bonus requires gpm > 73, not >=; got rate %.1f", got.Breakdown.GPMBonusRate)
	}
}

func TestCompute_OverrideReplacesSourceRate(t *testing.T) {
	override := 8.0
	settings := &job.PaySettings{CommissionOverride: &override}
	j := wrapJob(job.LeadInbound)
	j.FormData.TrainingToolUsed = false

	got := Compute(j, DefaultRatePlan(), settings)
	// 2350 × 8% = 188.00; override replaces 4.5 entirely.
	if got.Commission != 188.00 {
		t.Errorf("commission = %.2f, want 188.00", got.Commission)
	}
	if !got.Breakdown.OverrideApplied {
		t.Error("OverrideApplied must be set")
	}
	if got.Breakdown.BaseRate != 8.0 {
		t.Errorf("base rate = %.1f, want override 8.0", got.Breakdown.BaseRate)
	}
}

func TestCompute_OverrideStillStacksBonuses(t *testing.T) {
	override := 3.0
	got := Compute(wrapJob(job.LeadInbound), DefaultRatePlan(),
		&job.PaySettings{CommissionOverride: &override})
	// Override replaces the base rate only; training bonus still stacks.
	if got.Breakdown.FinalRate != 4.0 {
		t.Errorf("final rate = %.1f, want 3.0 + 1.0 training", got.Breakdown.FinalRate)
	}
}

func TestCompute_ZeroRevenue(t *testing.T) {
	j := &job.Job{
		FormData: job.FormData{LeadSource: job.LeadInbound},
		FinData:  job.FinData{Material: 500},
	}
	got := Compute(j, DefaultRatePlan(), nil)
	if got.GPM != 0 {
		t.Errorf("gpm = %.1f, want defined zero on zero revenue", got.GPM)
	}
	if got.Commission != 0 {
		t.Errorf("commission = %.2f, want 0 (negative GP clamps)", got.Commission)
	}
	if got.GrossProfit != -500 {
		t.Errorf("gross profit = %.2f, want -500 reported as-is", got.GrossProfit)
	}
}

func TestCompute_CostsExceedRevenueNeverNegative(t *testing.T) {
	j := &job.Job{
		Revenue:  1000,
		FormData: job.FormData{LeadSource: job.LeadOutbound, TrainingToolUsed: true},
		FinData:  job.FinData{Material: 900, Labor: 800},
	}
	got := Compute(j, DefaultRatePlan(), nil)
	if got.Commission != 0 {
		t.Errorf("commission = %.2f, want 0 on negative gross profit", got.Commission)
	}
	if got.Breakdown.BonusAmount != 0 || got.Breakdown.BaseAmount != 0 {
		t.Errorf("clamped commission must split as zeros, got %+v", got.Breakdown)
	}
}

func TestCompute_MissingCostsDefaultToZero(t *testing.T) {
	j := &job.Job{
		Revenue:  1000,
		FormData: job.FormData{LeadSource: job.LeadWalkIn},
	}
	got := Compute(j, DefaultRatePlan(), nil)
	if got.GrossProfit != 1000 {
		t.Errorf("gross profit = %.2f, want full revenue with zero costs", got.GrossProfit)
	}
	// 1000 × 4% = 40.00.
	if got.Commission != 40.00 {
		t.Errorf("commission = %.2f, want 40.00", got.Commission)
	}
}

func TestCompute_UnknownSourceUsesDefaultRate(t *testing.T) {
	j := wrapJob("billboard")
	j.FormData.TrainingToolUsed = false
	got := Compute(j, DefaultRatePlan(), nil)
	// 2350 × 5% = 117.50.
	if got.Commission != 117.50 {
		t.Errorf("commission = %.2f, want default-rate 117.50", got.Commission)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	j := wrapJob(job.LeadRepeat)
	plan := DefaultRatePlan()
	first := Compute(j, plan, nil)
	for i := 0; i < 10; i++ {
		if got := Compute(j, plan, nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d diverged", i)
		}
	}
}
