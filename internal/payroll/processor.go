// Package payroll aggregates a pay period into per-worker pay statements.
//
//	period snapshot (workers, time entries, closed jobs, accepted bids)
//	    ↓
//	payroll.Run()
//	    ├─ employee cohort   — hours × rate (weekly minimum) or salary, + commission
//	    └─ contractor cohort — accepted-bid flat amounts, labor-cost fallback
//	    ↓
//	Result (statements + period totals + per-worker errors)
//
// The run is read-many, write-none: it consumes a snapshot loaded once by the
// caller and mutates nothing. Per-worker computations are independent and fan
// out across goroutines; one worker failing lands in Errors without aborting
// the batch.
package payroll

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/job"
)

// Snapshot is the read-only input to a payroll run, already scoped to one org
// and one period by the loader.
type Snapshot struct {
	Workers     []*job.Worker
	TimeEntries []*job.TimeEntry
	// ClosedJobs are the jobs that reached done inside the period.
	ClosedJobs []*job.Job
	// Bids are all bids on the closed jobs; the run itself applies the lazy
	// expiry filter and the accepted-only rule.
	Bids []*job.InstallerBid
}

// WorkerError reports one worker whose statement could not be computed.
type WorkerError struct {
	WorkerID string
	Err      string
}

// Result is the output of one payroll run.
type Result struct {
	PeriodStart time.Time
	PeriodEnd   time.Time

	Statements []*job.PayStatement
	Errors     []WorkerError

	EmployeeTotal   float64
	ContractorTotal float64
	GrandTotal      float64
	EmployeeCount   int
	ContractorCount int
}

// Processor runs payroll with a fixed rate plan.
type Processor struct {
	plan *comp.RatePlan
	// now stamps the lazy bid-expiry check; overridable in tests.
	now func() time.Time
}

// NewProcessor creates a processor using the given commission plan.
func NewProcessor(plan *comp.RatePlan) *Processor {
	return &Processor{plan: plan, now: time.Now}
}

// Run computes a statement for every active worker in the snapshot. Workers
// compute in parallel; statement order follows the snapshot's worker order
// regardless of goroutine scheduling.
func (p *Processor) Run(periodStart, periodEnd time.Time, snap *Snapshot) *Result {
	res := &Result{PeriodStart: periodStart, PeriodEnd: periodEnd}
	if snap == nil {
		return res
	}

	now := p.now()
	statements := make([]*job.PayStatement, len(snap.Workers))
	errs := make([]*WorkerError, len(snap.Workers))

	var wg sync.WaitGroup
	for i, w := range snap.Workers {
		if !w.Active {
			continue
		}
		wg.Add(1)
		go func(i int, w *job.Worker) {
			defer wg.Done()
			st, err := p.statementFor(w, snap, now)
			if err != nil {
				errs[i] = &WorkerError{WorkerID: w.ID, Err: err.Error()}
				return
			}
			statements[i] = st
		}(i, w)
	}
	wg.Wait()

	for i := range snap.Workers {
		if errs[i] != nil {
			res.Errors = append(res.Errors, *errs[i])
			continue
		}
		st := statements[i]
		if st == nil {
			continue
		}
		res.Statements = append(res.Statements, st)
		switch st.Cohort {
		case job.WorkerContractor:
			res.ContractorTotal = round2(res.ContractorTotal + st.Total)
			res.ContractorCount++
		default:
			res.EmployeeTotal = round2(res.EmployeeTotal + st.Total)
			res.EmployeeCount++
		}
	}
	res.GrandTotal = round2(res.EmployeeTotal + res.ContractorTotal)
	return res
}

// statementFor computes one worker's statement against the shared read-only
// snapshot.
func (p *Processor) statementFor(w *job.Worker, snap *Snapshot, now time.Time) (*job.PayStatement, error) {
	st := &job.PayStatement{
		WorkerID:   w.ID,
		WorkerName: w.Name,
		Cohort:     w.Cohort(),
	}

	switch st.Cohort {
	case job.WorkerEmployee:
		if err := p.fillEmployee(st, w, snap); err != nil {
			return nil, err
		}
	case job.WorkerContractor:
		p.fillContractor(st, w, snap, now)
	}

	st.Total = round2(st.BasePay + st.Commission + st.Bonus)
	return st, nil
}

// fillEmployee sums hours into base pay and adds sales commission for every
// closed job where the worker is the assigned sales rep.
func (p *Processor) fillEmployee(st *job.PayStatement, w *job.Worker, snap *Snapshot) error {
	var minutes int
	for _, e := range snap.TimeEntries {
		if e.WorkerID != w.ID {
			continue
		}
		m := e.Minutes()
		minutes += m
		st.Lines = append(st.Lines, job.PayLine{
			Kind:      "time",
			RefID:     e.ID,
			JobID:     e.JobID,
			Minutes:   m,
			Anomalous: e.Anomalous(),
		})
	}
	st.Hours = round2(float64(minutes) / 60)

	switch {
	case w.Pay.Salary > 0:
		st.BasePay = round2(w.Pay.Salary)
	case w.Pay.HourlyRate > 0:
		base := st.Hours * w.Pay.HourlyRate
		if base < w.Pay.WeeklyMinimum {
			base = w.Pay.WeeklyMinimum
		}
		st.BasePay = round2(base)
	default:
		return fmt.Errorf("worker %s has neither salary nor hourly rate configured", w.ID)
	}

	for _, j := range snap.ClosedJobs {
		if j.SalesRepID != w.ID {
			continue
		}
		r := comp.Compute(j, p.plan, &w.Pay)
		st.Commission = round2(st.Commission + r.Breakdown.BaseAmount)
		st.Bonus = round2(st.Bonus + r.Breakdown.BonusAmount)
		st.Lines = append(st.Lines, job.PayLine{
			Kind:   "commission",
			RefID:  j.ID,
			JobID:  j.ID,
			Amount: r.Commission,
		})
	}
	return nil
}

// fillContractor pays accepted-bid flat amounts for the worker's closed jobs,
// falling back to the job's recorded labor cost when no live accepted bid
// exists. A job is paid once: bid takes precedence over the fallback.
func (p *Processor) fillContractor(st *job.PayStatement, w *job.Worker, snap *Snapshot, now time.Time) {
	// Accepted, unexpired bids by job, for this worker only.
	accepted := make(map[string]*job.InstallerBid)
	for _, b := range snap.Bids {
		if b.InstallerID != w.ID || b.Status != job.BidAccepted || b.Expired(now) {
			continue
		}
		accepted[b.JobID] = b
	}

	for _, j := range snap.ClosedJobs {
		if j.InstallerID != w.ID {
			continue
		}
		if b, ok := accepted[j.ID]; ok {
			st.BasePay = round2(st.BasePay + b.Amount)
			st.Lines = append(st.Lines, job.PayLine{
				Kind:   "bid",
				RefID:  b.ID,
				JobID:  j.ID,
				Amount: b.Amount,
			})
			continue
		}
		// Not every job is formally bid; the recorded labor cost stands in.
		st.BasePay = round2(st.BasePay + j.FinData.Labor)
		st.Lines = append(st.Lines, job.PayLine{
			Kind:   "labor_fallback",
			RefID:  j.ID,
			JobID:  j.ID,
			Amount: j.FinData.Labor,
		})
	}

	// Contractors still log hours for shop visibility; report them without
	// paying them.
	var minutes int
	for _, e := range snap.TimeEntries {
		if e.WorkerID == w.ID {
			minutes += e.Minutes()
		}
	}
	st.Hours = round2(float64(minutes) / 60)

	sort.SliceStable(st.Lines, func(a, b int) bool { return st.Lines[a].JobID < st.Lines[b].JobID })
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
