package job

import "time"

// WorkerType splits the workforce into the two payroll cohorts.
type WorkerType string

const (
	// WorkerEmployee is paid hourly (with a guaranteed weekly minimum) or a
	// fixed salary, plus sales commission where applicable.
	WorkerEmployee WorkerType = "employee"
	// WorkerContractor is paid a flat per-job rate from accepted bids, with
	// the job's labor cost as fallback when no bid exists.
	WorkerContractor WorkerType = "contractor"
)

// Role is the worker's function in the shop.
type Role string

const (
	RoleSales      Role = "sales"
	RoleProduction Role = "production"
	RoleInstaller  Role = "installer"
	RoleManager    Role = "manager"
)

// PaySettings configures how one worker is paid. Zero values mean
// "not configured"; CommissionOverride, when set, replaces the lead-source
// base rate entirely.
type PaySettings struct {
	WorkerType         WorkerType
	HourlyRate         float64
	Salary             float64
	WeeklyMinimum      float64
	CommissionOverride *float64
}

// Worker is a person on the org's roster.
type Worker struct {
	ID        string
	OrgID     string
	Name      string
	Role      Role
	Active    bool
	Pay       PaySettings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cohort resolves the payroll cohort for the worker. The worker type setting
// wins when present; unset installers default to contractor, everyone else
// defaults to employee.
func (w *Worker) Cohort() WorkerType {
	switch w.Pay.WorkerType {
	case WorkerEmployee, WorkerContractor:
		return w.Pay.WorkerType
	}
	if w.Role == RoleInstaller {
		return WorkerContractor
	}
	return WorkerEmployee
}

// EntryType distinguishes worked time from paid time off.
type EntryType string

const (
	EntryWork EntryType = "work"
	EntryPTO  EntryType = "pto"
)

// missedClockOutSpan is the span beyond which an entry is flagged as a missed
// clock-out. The entry still counts toward totals.
const missedClockOutSpan = 12 * time.Hour

// TimeEntry is a worker's logged duration against a job, or general shop time
// when JobID is empty.
type TimeEntry struct {
	ID       string
	OrgID    string
	WorkerID string
	JobID    string // empty = unassigned/shop time
	Start    time.Time
	End      time.Time // zero = still open / missed clock-out
	Type     EntryType
	Notes    string // empty notes are themselves a tracked data-quality signal
}

// Minutes derives the entry duration in whole minutes, never negative. An
// entry with no end contributes zero minutes but is still listed in totals
// (see Anomalous).
func (e *TimeEntry) Minutes() int {
	if e.End.IsZero() || e.End.Before(e.Start) {
		return 0
	}
	return int(e.End.Sub(e.Start).Minutes())
}

// Anomalous reports whether the entry looks like a missed clock-out: no end
// timestamp, or a span longer than 12 hours. Anomalous entries are flagged,
// not dropped.
func (e *TimeEntry) Anomalous() bool {
	if e.End.IsZero() {
		return true
	}
	return e.End.Sub(e.Start) > missedClockOutSpan
}

// PayLine is one contributing job or time block on a pay statement, kept for
// audit.
type PayLine struct {
	Kind      string  `json:"kind"` // "time", "commission", "bid", "labor_fallback"
	RefID     string  `json:"ref_id"`
	JobID     string  `json:"job_id,omitempty"`
	Minutes   int     `json:"minutes,omitempty"`
	Amount    float64 `json:"amount"`
	Anomalous bool    `json:"anomalous,omitempty"`
}

// PayStatement is one worker's pay for one period. Produced by the payroll
// processor and handed to the caller; the core does not persist or format it.
type PayStatement struct {
	WorkerID   string     `json:"worker_id"`
	WorkerName string     `json:"worker_name"`
	Cohort     WorkerType `json:"cohort"`
	Hours      float64    `json:"hours"`
	BasePay    float64    `json:"base_pay"`
	Commission float64    `json:"commission"`
	Bonus      float64    `json:"bonus"`
	Total      float64    `json:"total"`
	Lines      []PayLine  `json:"lines,omitempty"`
}
