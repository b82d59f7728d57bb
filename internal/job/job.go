// Package job defines the domain model for a wrap/PPF production job and the
// records that hang off it: installer bids, logged time, pay settings and the
// payroll statements derived from them. Everything is scoped to one
// organization; no type in this package carries a default org.
package job

import "time"

// Stage is the position of a job in the production pipeline. Stages form a
// fixed forward chain; moving backward is only possible through an explicit
// send-back that records a reason.
type Stage string

const (
	StageIntake     Stage = "intake"
	StageProduction Stage = "production"
	StageInstall    Stage = "install"
	StageReview     Stage = "review"
	StageClose      Stage = "close"
	StageDone       Stage = "done"
)

// stageOrder gives each stage its position in the pipeline. Used for
// before/after checks on send-back targets.
var stageOrder = map[Stage]int{
	StageIntake:     0,
	StageProduction: 1,
	StageInstall:    2,
	StageReview:     3,
	StageClose:      4,
	StageDone:       5,
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Terminal reports whether s is the end of the pipeline.
func (s Stage) Terminal() bool { return s == StageDone }

// Before reports whether s comes earlier in the pipeline than other.
// Unknown stages are never before anything.
func (s Stage) Before(other Stage) bool {
	a, ok1 := stageOrder[s]
	b, ok2 := stageOrder[other]
	return ok1 && ok2 && a < b
}

// Stages lists the pipeline in order, intake first.
func Stages() []Stage {
	return []Stage{StageIntake, StageProduction, StageInstall, StageReview, StageClose, StageDone}
}

// LeadSource tags where the sale came from. The compensation plan maps each
// source to a base commission rate and a bonus-eligibility flag.
type LeadSource string

const (
	LeadInbound       LeadSource = "inbound"
	LeadOutbound      LeadSource = "outbound"
	LeadReferral      LeadSource = "referral"
	LeadWalkIn        LeadSource = "walk_in"
	LeadPresold       LeadSource = "presold"
	LeadRepeat        LeadSource = "repeat"
	LeadCrossReferral LeadSource = "cross_referral"
)

// QCResult is the outcome recorded after quality control.
type QCResult string

const (
	QCPass    QCResult = "pass"
	QCReprint QCResult = "reprint"
	QCFix     QCResult = "fix"
)

// LineItem is one quoted line on the job's sales form.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// FormData holds the sales-side form fields. Known keys are explicit fields;
// anything else the UI stores rides along in Extra untouched.
type FormData struct {
	LineItems        []LineItem        `json:"line_items,omitempty"`
	LeadSource       LeadSource        `json:"lead_source,omitempty"`
	TrainingToolUsed bool              `json:"training_tool_used,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// FinData is the cost breakdown, used both at quote time and when actuals are
// finalized. A missing component is zero, never an error.
type FinData struct {
	Material  float64           `json:"material,omitempty"`
	Labor     float64           `json:"labor,omitempty"`
	DesignFee float64           `json:"design_fee,omitempty"`
	Misc      float64           `json:"misc,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// TotalCost sums the known cost components.
func (f FinData) TotalCost() float64 {
	return f.Material + f.Labor + f.DesignFee + f.Misc
}

// Actuals is populated progressively as the job moves through the shop.
type Actuals struct {
	MaterialLogged     float64           `json:"material_logged,omitempty"`
	LaborLogged        float64           `json:"labor_logged,omitempty"`
	PrintNotes         string            `json:"print_notes,omitempty"`
	PreInstallDone     bool              `json:"pre_install_done,omitempty"`
	PostInstallDone    bool              `json:"post_install_done,omitempty"`
	InstallerSignature bool              `json:"installer_signature,omitempty"`
	QC                 QCResult          `json:"qc,omitempty"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// Checkout carries the per-stage sign-off flags.
type Checkout struct {
	Intake     bool `json:"intake,omitempty"`
	Production bool `json:"production,omitempty"`
	Install    bool `json:"install,omitempty"`
	Review     bool `json:"review,omitempty"`
	Close      bool `json:"close,omitempty"`
}

// SignedOff reports whether the sign-off flag for s is set. Terminal and
// unknown stages have no sign-off and report false.
func (c Checkout) SignedOff(s Stage) bool {
	switch s {
	case StageIntake:
		return c.Intake
	case StageProduction:
		return c.Production
	case StageInstall:
		return c.Install
	case StageReview:
		return c.Review
	case StageClose:
		return c.Close
	default:
		return false
	}
}

// Job is the unit of work tracked through the pipeline.
type Job struct {
	ID         string `json:"id"`
	OrgID      string `json:"org_id"`
	Stage      Stage  `json:"stage"`
	CustomerID string `json:"customer_id"`
	Vehicle    string `json:"vehicle"`

	// Assigned actors. SalesRepID earns commission at close; InstallerID is
	// paid flat-rate through bids or the labor fallback.
	SalesRepID  string `json:"sales_rep_id,omitempty"`
	InstallerID string `json:"installer_id,omitempty"`

	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
	GPM        float64 `json:"gpm"`
	Commission float64 `json:"commission"`

	FormData FormData `json:"form_data"`
	FinData  FinData  `json:"fin_data"`
	Actuals  Actuals  `json:"actuals"`
	Checkout Checkout `json:"checkout"`

	StageEnteredAt time.Time  `json:"stage_entered_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// DaysInStage derives whole days spent in the current stage as of now.
// Returns 0 when StageEnteredAt is unset.
func (j *Job) DaysInStage(now time.Time) int {
	if j.StageEnteredAt.IsZero() || now.Before(j.StageEnteredAt) {
		return 0
	}
	return int(now.Sub(j.StageEnteredAt).Hours() / 24)
}
