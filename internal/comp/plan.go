// Package comp computes the compensation owed on a completed job: gross
// profit, margin, and the tiered sales commission with its bonus stack.
// It is the single authoritative commission path — stage advancement and the
// payroll processor both call into it with the same RatePlan, so the value
// persisted at close and the value on the pay statement agree by
// construction.
package comp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/usawrapco/shoptrack/internal/job"
)

// SourceRate is the commission configuration for one lead source. Rate is a
// percentage (4.5 = 4.5%). BonusEligible gates the entire bonus stack: when
// false, no bonus applies even if its individual condition is met.
type SourceRate struct {
	Rate          float64 `yaml:"rate"`
	BonusEligible bool    `yaml:"bonus_eligible"`
}

// RatePlan is the org's commission plan. Loaded from a yaml file when one is
// configured, otherwise the compiled-in defaults apply.
type RatePlan struct {
	// Sources maps each lead source to its base rate and bonus eligibility.
	Sources map[job.LeadSource]SourceRate `yaml:"sources"`

	// DefaultRate applies when a job's lead source is untagged or unknown.
	// Default-rated jobs stay bonus-eligible.
	DefaultRate float64 `yaml:"default_rate"`

	// GPMBonusRate is added to the rate when the job's margin exceeds
	// GPMBonusFloor.
	GPMBonusRate  float64 `yaml:"gpm_bonus_rate"`
	GPMBonusFloor float64 `yaml:"gpm_bonus_floor"`

	// TrainingBonusRate is added when the sales form flags the training tool
	// as used on the job.
	TrainingBonusRate float64 `yaml:"training_bonus_rate"`
}

// DefaultRatePlan returns the shop's standard plan.
func DefaultRatePlan() *RatePlan {
	return &RatePlan{
		Sources: map[job.LeadSource]SourceRate{
			job.LeadInbound:       {Rate: 4.5, BonusEligible: true},
			job.LeadOutbound:      {Rate: 6.0, BonusEligible: true},
			job.LeadReferral:      {Rate: 5.0, BonusEligible: true},
			job.LeadWalkIn:        {Rate: 4.0, BonusEligible: true},
			job.LeadPresold:       {Rate: 5.0, BonusEligible: false},
			job.LeadRepeat:        {Rate: 5.5, BonusEligible: true},
			job.LeadCrossReferral: {Rate: 2.5, BonusEligible: false},
		},
		DefaultRate:       5.0,
		GPMBonusRate:      2.0,
		GPMBonusFloor:     73.0,
		TrainingBonusRate: 1.0,
	}
}

// LoadRatePlan reads a yaml plan file over the defaults, so a partial file
// only overrides what it names.
func LoadRatePlan(path string) (*RatePlan, error) {
	plan := DefaultRatePlan()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate plan: %w", err)
	}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to parse rate plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate plan %s: %w", path, err)
	}
	return plan, nil
}

// Validate rejects plans that would produce nonsense commission.
func (p *RatePlan) Validate() error {
	for source, sr := range p.Sources {
		if sr.Rate < 0 {
			return fmt.Errorf("source %q has negative rate %.2f", source, sr.Rate)
		}
	}
	if p.DefaultRate < 0 {
		return fmt.Errorf("default rate is negative")
	}
	if p.GPMBonusRate < 0 || p.TrainingBonusRate < 0 {
		return fmt.Errorf("bonus rates must not be negative")
	}
	return nil
}

// rateFor resolves the base rate and bonus eligibility for a lead source.
func (p *RatePlan) rateFor(source job.LeadSource) (float64, bool) {
	if sr, ok := p.Sources[source]; ok {
		return sr.Rate, sr.BonusEligible
	}
	return p.DefaultRate, true
}
