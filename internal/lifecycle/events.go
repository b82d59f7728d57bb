package lifecycle

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/job"
)

// EventKind identifies a stage-transition event.
type EventKind string

const (
	// EventStageAdvanced: a forward transition into a non-terminal stage.
	EventStageAdvanced EventKind = "stage_advanced"
	// EventJobSentBack: an explicit backward transition with a reason.
	EventJobSentBack EventKind = "job_sent_back"
	// EventJobClosed: the transition into done, carrying the persisted
	// compensation snapshot.
	EventJobClosed EventKind = "job_closed"
)

// Event is the typed value the core emits on every stage transition. The
// dispatcher delivers it to notifiers; the core itself never talks to a
// notification channel.
type Event struct {
	Kind  EventKind
	OrgID string
	JobID string
	From  job.Stage
	To    job.Stage
	Actor string
	// Reason is set on send-back events.
	Reason string
	// Commission is set on job-closed events.
	Commission *comp.Result
	At         time.Time
}

// Notifier consumes transition events. Implementations live in the
// orchestration layer (chat, SMS, sync hooks); their failures are logged and
// swallowed, never propagated back into job state.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

// Notify executes f(ctx, ev).
func (f NotifierFunc) Notify(ctx context.Context, ev Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, ev)
}

// Dispatcher fans events out to notifiers asynchronously. Publishing never
// blocks a stage transition: a full queue drops the event with a log line
// rather than stalling the caller.
type Dispatcher struct {
	notifiers []Notifier
	queue     chan Event
	done      chan struct{}
	log       *logrus.Logger
}

const defaultQueueSize = 64

// NewDispatcher starts a dispatcher delivering to the given notifiers.
// Callers must Close it to drain the queue.
func NewDispatcher(log *logrus.Logger, notifiers ...Notifier) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dispatcher{
		notifiers: notifiers,
		queue:     make(chan Event, defaultQueueSize),
		done:      make(chan struct{}),
		log:       log,
	}
	go d.run()
	return d
}

// Publish enqueues an event for delivery. Fire-and-forget by contract.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.WithFields(logrus.Fields{
			"kind": ev.Kind,
			"job":  ev.JobID,
		}).Warn("event queue full, dropping transition event")
	}
}

// Close stops intake and drains queued events before returning.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		for _, n := range d.notifiers {
			if err := n.Notify(context.Background(), ev); err != nil {
				// A failed notification must not roll back the transition
				// that triggered it.
				d.log.WithFields(logrus.Fields{
					"kind": ev.Kind,
					"org":  ev.OrgID,
					"job":  ev.JobID,
				}).WithError(err).Error("notifier failed")
			}
		}
	}
}
