package comp

import (
	"math"

	"github.com/usawrapco/shoptrack/internal/job"
)

// Breakdown itemizes how a commission figure was reached, for audit and for
// the pay statement's commission/bonus split. Rates are percentages rounded
// to one decimal; amounts are money rounded to two.
type Breakdown struct {
	Revenue   float64 `json:"revenue"`
	Material  float64 `json:"material"`
	Labor     float64 `json:"labor"`
	DesignFee float64 `json:"design_fee"`
	Misc      float64 `json:"misc"`

	BaseRate          float64 `json:"base_rate"`
	GPMBonusRate      float64 `json:"gpm_bonus_rate"`
	TrainingBonusRate float64 `json:"training_bonus_rate"`
	FinalRate         float64 `json:"final_rate"`

	BonusEligible   bool `json:"bonus_eligible"`
	OverrideApplied bool `json:"override_applied"`

	// BaseAmount + BonusAmount == Commission.
	BaseAmount  float64 `json:"base_amount"`
	BonusAmount float64 `json:"bonus_amount"`
}

// Result is the compensation computed for one job.
type Result struct {
	GrossProfit float64   `json:"gross_profit"`
	GPM         float64   `json:"gpm"`
	Commission  float64   `json:"commission"`
	Breakdown   Breakdown `json:"breakdown"`
}

// Compute derives gross profit, margin and commission for a job. Pure and
// deterministic: same snapshot and plan, same result.
//
// settings carries the sales rep's individual commission override; pass nil
// when the rep has none. The override replaces the source-derived base rate
// entirely but does not change bonus eligibility, which is a property of the
// lead source.
//
// Missing cost components read as zero. revenue == 0 yields gpm 0, not a
// division error. Negative gross profit yields zero commission, never
// negative. Internal math runs at full precision; rounding happens once at
// the output boundary.
func Compute(j *job.Job, plan *RatePlan, settings *job.PaySettings) Result {
	fin := j.FinData
	grossProfit := j.Revenue - fin.TotalCost()

	var gpm float64
	if j.Revenue > 0 {
		gpm = grossProfit / j.Revenue * 100
	}

	baseRate, bonusEligible := plan.rateFor(j.FormData.LeadSource)
	overrideApplied := false
	if settings != nil && settings.CommissionOverride != nil {
		baseRate = *settings.CommissionOverride
		overrideApplied = true
	}

	var gpmBonus, trainingBonus float64
	if bonusEligible {
		if gpm > plan.GPMBonusFloor {
			gpmBonus = plan.GPMBonusRate
		}
		if j.FormData.TrainingToolUsed {
			trainingBonus = plan.TrainingBonusRate
		}
	}
	finalRate := baseRate + gpmBonus + trainingBonus

	payableGP := grossProfit
	if payableGP < 0 {
		payableGP = 0
	}
	commission := round2(payableGP * finalRate / 100)
	baseAmount := round2(payableGP * baseRate / 100)

	return Result{
		GrossProfit: round2(grossProfit),
		GPM:         round1(gpm),
		Commission:  commission,
		Breakdown: Breakdown{
			Revenue:           round2(j.Revenue),
			Material:          round2(fin.Material),
			Labor:             round2(fin.Labor),
			DesignFee:         round2(fin.DesignFee),
			Misc:              round2(fin.Misc),
			BaseRate:          round1(baseRate),
			GPMBonusRate:      round1(gpmBonus),
			TrainingBonusRate: round1(trainingBonus),
			FinalRate:         round1(finalRate),
			BonusEligible:     bonusEligible,
			OverrideApplied:   overrideApplied,
			BaseAmount:        baseAmount,
			BonusAmount:       round2(commission - baseAmount),
		},
	}
}

// round2 rounds money to cents.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// round1 rounds a percentage to one decimal.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
