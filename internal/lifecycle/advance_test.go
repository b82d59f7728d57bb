package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/job"
)

// fakeStore records calls so tests can assert what was persisted and when.
type fakeStore struct {
	advances  []advanceCall
	sendbacks []sendbackCall
	settings  map[string]*job.PaySettings
	failWith  error
}

type advanceCall struct {
	from, to job.Stage
	fin      *comp.Result
	actor    string
}

type sendbackCall struct {
	from, to job.Stage
	reason   string
	actor    string
}

func (s *fakeStore) AdvanceJob(_ context.Context, _ *job.Job, from, to job.Stage, fin *comp.Result, actor string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.advances = append(s.advances, advanceCall{from, to, fin, actor})
	return nil
}

func (s *fakeStore) SendBackJob(_ context.Context, _ *job.Job, from, to job.Stage, reason, actor string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.sendbacks = append(s.sendbacks, sendbackCall{from, to, reason, actor})
	return nil
}

func (s *fakeStore) PaySettings(_ context.Context, _, workerID string) (*job.PaySettings, error) {
	return s.settings[workerID], nil
}

// closableJob passes the close gate: next advancement lands on done.
func closableJob() *job.Job {
	return &job.Job{
		ID: "job-1", OrgID: "org-1", Stage: job.StageClose,
		CustomerID: "cust-1", Vehicle: "sedan, hood PPF",
		SalesRepID: "rep-1",
		Revenue:    4000,
		FormData:   job.FormData{LeadSource: job.LeadInbound, TrainingToolUsed: true},
		FinData:    job.FinData{Material: 800, Labor: 700, DesignFee: 150},
		Checkout:   job.Checkout{Close: true},
	}
}

func newEngine(store Store) *Engine {
	e := NewEngine(store, comp.DefaultRatePlan(), nil)
	e.now = func() time.Time { return time.Date(2025, 3, 7, 15, 0, 0, 0, time.UTC) }
	return e
}

func TestAdvance_BlockedJobIsUntouched(t *testing.T) {
	store := &fakeStore{}
	j := closableJob()
	j.Checkout.Close = false

	err := newEngine(store).Advance(context.Background(), j, "tess")
	ge, ok := AsGateError(err)
	if !ok {
		t.Fatalf("want *GateError, got %v", err)
	}
	if ge.FirstBlocking != "close sign-off is missing" {
		t.Errorf("first blocking = %q", ge.FirstBlocking)
	}
	if j.Stage != job.StageClose {
		t.Error("blocked advance must not mutate the job")
	}
	if len(store.advances) != 0 {
		t.Error("blocked advance must not reach the store")
	}
}

func TestAdvance_ToDoneComputesCommissionAtomically(t *testing.T) {
	store := &fakeStore{}
	j := closableJob()

	if err := newEngine(store).Advance(context.Background(), j, "tess"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if len(store.advances) != 1 {
		t.Fatalf("store calls = %d, want 1", len(store.advances))
	}
	call := store.advances[0]
	if call.from != job.StageClose || call.to != job.StageDone {
		t.Errorf("transition %s → %s, want close → done", call.from, call.to)
	}
	// The financial snapshot travels in the same store call as the stage
	// change.
	if call.fin == nil {
		t.Fatal("terminal transition must carry the compensation result")
	}
	if call.fin.Commission != 129.25 {
		t.Errorf("commission = %.2f, want 129.25", call.fin.Commission)
	}

	if j.Stage != job.StageDone {
		t.Errorf("stage = %s, want done", j.Stage)
	}
	if j.Commission != 129.25 || j.Profit != 2350 || j.GPM != 58.8 {
		t.Errorf("financials not written: commission=%.2f profit=%.2f gpm=%.1f",
			j.Commission, j.Profit, j.GPM)
	}
	if j.CompletedAt == nil {
		t.Error("CompletedAt must be stamped on close")
	}
}

func TestAdvance_RepOverrideReachesCommission(t *testing.T) {
	override := 8.0
	store := &fakeStore{settings: map[string]*job.PaySettings{
		"rep-1": {CommissionOverride: &override},
	}}
	j := closableJob()
	j.FormData.TrainingToolUsed = false

	if err := newEngine(store).Advance(context.Background(), j, "tess"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if j.Commission != 188.00 {
		t.Errorf("commission = %.2f, want override-driven 188.00", j.Commission)
	}
}

func TestAdvance_NonTerminalCarriesNoFinancials(t *testing.T) {
	store := &fakeStore{}
	j := &job.Job{
		ID: "job-1", OrgID: "org-1", Stage: job.StageReview,
		Actuals:  job.Actuals{QC: job.QCPass},
		Checkout: job.Checkout{Review: true},
	}
	if err := newEngine(store).Advance(context.Background(), j, "qc"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if store.advances[0].fin != nil {
		t.Error("non-terminal transition must not carry a compensation result")
	}
	if j.Stage != job.StageClose {
		t.Errorf("stage = %s, want close", j.Stage)
	}
}

func TestAdvance_TerminalStageIsInvalidState(t *testing.T) {
	j := closableJob()
	j.Stage = job.StageDone
	err := newEngine(&fakeStore{}).Advance(context.Background(), j, "tess")
	if !errors.Is(err, ErrInvalidStage) {
		t.Errorf("want ErrInvalidStage, got %v", err)
	}
	if _, ok := AsGateError(err); ok {
		t.Error("invalid state must not look like a gate failure")
	}
}

func TestAdvance_StoreConflictLeavesJobUntouched(t *testing.T) {
	store := &fakeStore{failWith: ErrConflict}
	j := closableJob()
	err := newEngine(store).Advance(context.Background(), j, "tess")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if j.Stage != job.StageClose || j.Commission != 0 {
		t.Error("lost race must not mutate the snapshot")
	}
}

func TestSendBack_RequiresReason(t *testing.T) {
	j := closableJob()
	err := newEngine(&fakeStore{}).SendBack(context.Background(), j, job.StageProduction, "", "lead")
	if !errors.Is(err, ErrEmptyReason) {
		t.Errorf("want ErrEmptyReason, got %v", err)
	}
}

func TestSendBack_BypassesGates(t *testing.T) {
	store := &fakeStore{}
	j := closableJob()
	j.Checkout = job.Checkout{} // nothing signed off; gates would block

	err := newEngine(store).SendBack(context.Background(), j, job.StageProduction, "panel misprint on door", "lead")
	if err != nil {
		t.Fatalf("SendBack: %v", err)
	}
	if j.Stage != job.StageProduction {
		t.Errorf("stage = %s, want production", j.Stage)
	}
	if len(store.sendbacks) != 1 || store.sendbacks[0].reason != "panel misprint on door" {
		t.Errorf("store call = %+v", store.sendbacks)
	}
}

func TestSendBack_ForwardTargetRejected(t *testing.T) {
	j := closableJob()
	j.Stage = job.StageProduction
	err := newEngine(&fakeStore{}).SendBack(context.Background(), j, job.StageReview, "skip ahead", "lead")
	if !errors.Is(err, ErrNotBackward) {
		t.Errorf("want ErrNotBackward, got %v", err)
	}
}
