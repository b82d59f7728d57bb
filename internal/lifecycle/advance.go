// Package lifecycle performs stage transitions on jobs: gated forward
// advancement, reason-carrying send-back, and the transition events handed to
// the side-effect dispatcher. It is the only component allowed to trigger
// persistence of computed commission onto a job, which it does exactly once —
// on the transition into done.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/gate"
	"github.com/usawrapco/shoptrack/internal/job"
)

// Store is the slice of the job record store the lifecycle engine needs.
// Implementations must make AdvanceJob atomic: the stage field and the
// financial snapshot commit together or not at all, and a concurrent update
// to the same job surfaces as ErrConflict.
type Store interface {
	AdvanceJob(ctx context.Context, j *job.Job, from, to job.Stage, fin *comp.Result, actor string) error
	SendBackJob(ctx context.Context, j *job.Job, from, to job.Stage, reason, actor string) error
	PaySettings(ctx context.Context, orgID, workerID string) (*job.PaySettings, error)
}

// Engine runs stage transitions against a store and a commission plan.
type Engine struct {
	store Store
	plan  *comp.RatePlan
	bus   *Dispatcher
	now   func() time.Time
}

// NewEngine wires a lifecycle engine. bus may be nil when the caller has no
// notification collaborators (tests, one-shot tools).
func NewEngine(store Store, plan *comp.RatePlan, bus *Dispatcher) *Engine {
	return &Engine{store: store, plan: plan, bus: bus, now: time.Now}
}

// Advance moves the job to its next stage if its gate passes.
//
// On the transition into done, the compensation engine runs synchronously and
// its output is persisted onto the job in the same atomic store update as the
// stage change. On gate failure the job is untouched and the evaluator's
// missing list comes back unchanged as a *GateError.
func (e *Engine) Advance(ctx context.Context, j *job.Job, actor string) error {
	ev := gate.Evaluate(j)
	if ev.InvalidStage {
		return fmt.Errorf("%w: stage %q", ErrInvalidStage, j.Stage)
	}
	if !ev.CanAdvance {
		return &GateError{Missing: ev.Missing, FirstBlocking: ev.FirstBlocking}
	}

	next, err := gate.NextStage(j.Stage)
	if err != nil {
		return fmt.Errorf("%w: stage %q", ErrInvalidStage, j.Stage)
	}

	var fin *comp.Result
	if next.Terminal() {
		settings, err := e.repSettings(ctx, j)
		if err != nil {
			return err
		}
		r := comp.Compute(j, e.plan, settings)
		fin = &r
	}

	from := j.Stage
	if err := e.store.AdvanceJob(ctx, j, from, next, fin, actor); err != nil {
		return err
	}

	now := e.now()
	j.Stage = next
	j.StageEnteredAt = now
	j.UpdatedAt = now
	if fin != nil {
		j.Profit = fin.GrossProfit
		j.GPM = fin.GPM
		j.Commission = fin.Commission
		j.CompletedAt = &now
	}

	kind := EventStageAdvanced
	if next.Terminal() {
		kind = EventJobClosed
	}
	e.publish(Event{
		Kind:       kind,
		OrgID:      j.OrgID,
		JobID:      j.ID,
		From:       from,
		To:         next,
		Actor:      actor,
		Commission: fin,
		At:         now,
	})
	return nil
}

// SendBack moves the job backward to an earlier stage. Gate checks are
// bypassed entirely; a non-empty reason is mandatory and the transition emits
// its own event kind so collaborators can tell it apart from forward
// movement.
func (e *Engine) SendBack(ctx context.Context, j *job.Job, to job.Stage, reason, actor string) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if !to.Valid() {
		return fmt.Errorf("%w: target %q", ErrInvalidStage, to)
	}
	if !to.Before(j.Stage) {
		return ErrNotBackward
	}

	from := j.Stage
	if err := e.store.SendBackJob(ctx, j, from, to, reason, actor); err != nil {
		return err
	}

	now := e.now()
	j.Stage = to
	j.StageEnteredAt = now
	j.UpdatedAt = now
	j.CompletedAt = nil

	e.publish(Event{
		Kind:   EventJobSentBack,
		OrgID:  j.OrgID,
		JobID:  j.ID,
		From:   from,
		To:     to,
		Actor:  actor,
		Reason: reason,
		At:     now,
	})
	return nil
}

// repSettings loads the assigned sales rep's pay settings for the commission
// override. A job with no rep computes on source rates alone.
func (e *Engine) repSettings(ctx context.Context, j *job.Job) (*job.PaySettings, error) {
	if j.SalesRepID == "" {
		return nil, nil
	}
	settings, err := e.store.PaySettings(ctx, j.OrgID, j.SalesRepID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales rep pay settings: %w", err)
	}
	return settings, nil
}

func (e *Engine) publish(ev Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
