package job

import (
	"testing"
	"time"
)

func TestStageOrdering(t *testing.T) {
	stages := Stages()
	if len(stages) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(stages))
	}
	for i := 1; i < len(stages); i++ {
		if !stages[i-1].Before(stages[i]) {
			t.Errorf("%s must come before %s", stages[i-1], stages[i])
		}
		if stages[i].Before(stages[i-1]) {
			t.Errorf("%s must not come before %s", stages[i], stages[i-1])
		}
	}
}

func TestStageValid(t *testing.T) {
	for _, s := range Stages() {
		if !s.Valid() {
			t.Errorf("%s must be valid", s)
		}
	}
	if Stage("shipping").Valid() {
		t.Error("unknown stage must not be valid")
	}
	if Stage("shipping").Before(StageDone) {
		t.Error("unknown stage must not be before anything")
	}
}

func TestStageTerminal(t *testing.T) {
	if !StageDone.Terminal() {
		t.Error("done must be terminal")
	}
	if StageClose.Terminal() {
		t.Error("close must not be terminal")
	}
}

func TestCheckoutSignedOff(t *testing.T) {
	c := Checkout{Production: true}
	if !c.SignedOff(StageProduction) {
		t.Error("production sign-off must be visible")
	}
	if c.SignedOff(StageIntake) {
		t.Error("intake sign-off must not be set")
	}
	if c.SignedOff(StageDone) {
		t.Error("terminal stage has no sign-off")
	}
}

func TestFinDataTotalCost(t *testing.T) {
	f := FinData{Material: 800, Labor: 700, DesignFee: 150, Misc: 25}
	if got := f.TotalCost(); got != 1675 {
		t.Errorf("expected total cost 1675, got %v", got)
	}
}

func TestDaysInStage(t *testing.T) {
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	j := &Job{StageEnteredAt: now.Add(-49 * time.Hour)}
	if got := j.DaysInStage(now); got != 2 {
		t.Errorf("expected 2 days, got %d", got)
	}
}

func TestDaysInStageUnsetIsZero(t *testing.T) {
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	j := &Job{}
	if got := j.DaysInStage(now); got != 0 {
		t.Errorf("expected 0 for unset entry time, got %d", got)
	}
	j.StageEnteredAt = now.Add(time.Hour)
	if got := j.DaysInStage(now); got != 0 {
		t.Errorf("expected 0 for future entry time, got %d", got)
	}
}
