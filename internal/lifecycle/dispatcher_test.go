package lifecycle

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/usawrapco/shoptrack/internal/job"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// collector records delivered events.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) Notify(_ context.Context, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	c := &collector{}
	d := NewDispatcher(quietLogger(), c)

	d.Publish(Event{Kind: EventStageAdvanced, JobID: "j1", From: job.StageIntake, To: job.StageProduction})
	d.Publish(Event{Kind: EventJobClosed, JobID: "j1", From: job.StageClose, To: job.StageDone})
	d.Close()

	if len(c.events) != 2 {
		t.Fatalf("delivered %d events, want 2", len(c.events))
	}
	if c.events[0].Kind != EventStageAdvanced || c.events[1].Kind != EventJobClosed {
		t.Errorf("order broken: %v, %v", c.events[0].Kind, c.events[1].Kind)
	}
}

// A failing notifier is logged and swallowed; later notifiers and later
// events still deliver.
func TestDispatcher_NotifierFailureIsSwallowed(t *testing.T) {
	c := &collector{}
	failing := NotifierFunc(func(context.Context, Event) error {
		return errors.New("smtp down")
	})
	d := NewDispatcher(quietLogger(), failing, c)

	d.Publish(Event{Kind: EventJobSentBack, JobID: "j1", Reason: "rework"})
	d.Publish(Event{Kind: EventStageAdvanced, JobID: "j2"})
	d.Close()

	if len(c.events) != 2 {
		t.Fatalf("second notifier got %d events, want 2 despite failures", len(c.events))
	}
}

func TestNotifierFunc_NilIsNoop(t *testing.T) {
	var f NotifierFunc
	if err := f.Notify(context.Background(), Event{}); err != nil {
		t.Errorf("nil NotifierFunc must be a no-op, got %v", err)
	}
}
