package comp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/usawrapco/shoptrack/internal/job"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rateplan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write plan file: %v", err)
	}
	return path
}

func TestLoadRatePlan_PartialFileOverridesDefaults(t *testing.T) {
	path := writePlanFile(t, `
sources:
  inbound:
    rate: 6.0
    bonus_eligible: true
gpm_bonus_rate: 3.0
`)
	plan, err := LoadRatePlan(path)
	if err != nil {
		t.Fatalf("LoadRatePlan: %v", err)
	}
	if got := plan.Sources[job.LeadInbound].Rate; got != 6.0 {
		t.Errorf("inbound rate = %.1f, want overridden 6.0", got)
	}
	if plan.GPMBonusRate != 3.0 {
		t.Errorf("gpm bonus rate = %.1f, want 3.0", plan.GPMBonusRate)
	}
	// Untouched defaults survive.
	if plan.GPMBonusFloor != 73.0 {
		t.Errorf("gpm bonus floor = %.1f, want default 73.0", plan.GPMBonusFloor)
	}
	if plan.TrainingBonusRate != 1.0 {
		t.Errorf("training bonus = %.1f, want default 1.0", plan.TrainingBonusRate)
	}
}

func TestLoadRatePlan_RejectsNegativeRate(t *testing.T) {
	path := writePlanFile(t, `
sources:
  walk_in:
    rate: -2.0
`)
	if _, err := LoadRatePlan(path); err == nil {
		t.Fatal("negative rate must be rejected")
	}
}

func TestLoadRatePlan_MissingFile(t *testing.T) {
	if _, err := LoadRatePlan(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestDefaultRatePlan_PresoldNotBonusEligible(t *testing.T) {
	plan := DefaultRatePlan()
	if plan.Sources[job.LeadPresold].BonusEligible {
		t.Error("presold must not be bonus-eligible")
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("default plan must validate: %v", err)
	}
}
