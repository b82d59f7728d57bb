package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/usawrapco/shoptrack/internal/job"
)

// JobRow is the Jobs table shape. The semi-structured bags are stored as
// JSON strings and unpacked into their typed structs on read.
type JobRow struct {
	OrgId          string     `spanner:"OrgId"`
	JobId          string     `spanner:"JobId"`
	Stage          string     `spanner:"Stage"`
	CustomerId     string     `spanner:"CustomerId"`
	Vehicle        string     `spanner:"Vehicle"`
	SalesRepId     string     `spanner:"SalesRepId"`
	InstallerId    string     `spanner:"InstallerId"`
	Revenue        float64    `spanner:"Revenue"`
	Profit         float64    `spanner:"Profit"`
	Gpm            float64    `spanner:"Gpm"`
	Commission     float64    `spanner:"Commission"`
	FormDataJson   string     `spanner:"FormDataJson"`
	FinDataJson    string     `spanner:"FinDataJson"`
	ActualsJson    string     `spanner:"ActualsJson"`
	CheckoutJson   string     `spanner:"CheckoutJson"`
	StageEnteredAt time.Time  `spanner:"StageEnteredAt"`
	CreatedAt      time.Time  `spanner:"CreatedAt"`
	UpdatedAt      time.Time  `spanner:"UpdatedAt"`
	CompletedAt    *time.Time `spanner:"CompletedAt"`
}

// jobColumns lists every Jobs column, in JobRow order.
var jobColumns = []string{
	"OrgId", "JobId", "Stage", "CustomerId", "Vehicle", "SalesRepId", "InstallerId",
	"Revenue", "Profit", "Gpm", "Commission",
	"FormDataJson", "FinDataJson", "ActualsJson", "CheckoutJson",
	"StageEnteredAt", "CreatedAt", "UpdatedAt", "CompletedAt",
}

// toDomain unpacks the row into the domain job.
func (r *JobRow) toDomain() (*job.Job, error) {
	j := &job.Job{
		ID:             r.JobId,
		OrgID:          r.OrgId,
		Stage:          job.Stage(r.Stage),
		CustomerID:     r.CustomerId,
		Vehicle:        r.Vehicle,
		SalesRepID:     r.SalesRepId,
		InstallerID:    r.InstallerId,
		Revenue:        r.Revenue,
		Profit:         r.Profit,
		GPM:            r.Gpm,
		Commission:     r.Commission,
		StageEnteredAt: r.StageEnteredAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		CompletedAt:    r.CompletedAt,
	}
	for _, f := range []struct {
		raw  string
		into any
	}{
		{r.FormDataJson, &j.FormData},
		{r.FinDataJson, &j.FinData},
		{r.ActualsJson, &j.Actuals},
		{r.CheckoutJson, &j.Checkout},
	} {
		if f.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.into); err != nil {
			return nil, fmt.Errorf("failed to parse job %s data bag: %w", r.JobId, err)
		}
	}
	return j, nil
}

// packBag marshals one of the job's semi-structured bags for storage.
func packBag(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode data bag: %w", err)
	}
	return string(data), nil
}

// BidRow is the InstallerBids table shape.
type BidRow struct {
	OrgId       string     `spanner:"OrgId"`
	BidId       string     `spanner:"BidId"`
	JobId       string     `spanner:"JobId"`
	InstallerId string     `spanner:"InstallerId"`
	Amount      float64    `spanner:"Amount"`
	HoursBudget float64    `spanner:"HoursBudget"`
	Status      string     `spanner:"Status"`
	ExpiresAt   *time.Time `spanner:"ExpiresAt"`
	CreatedAt   time.Time  `spanner:"CreatedAt"`
	UpdatedAt   time.Time  `spanner:"UpdatedAt"`
}

var bidColumns = []string{
	"OrgId", "BidId", "JobId", "InstallerId", "Amount", "HoursBudget",
	"Status", "ExpiresAt", "CreatedAt", "UpdatedAt",
}

func (r *BidRow) toDomain() *job.InstallerBid {
	b := &job.InstallerBid{
		ID:          r.BidId,
		OrgID:       r.OrgId,
		JobID:       r.JobId,
		InstallerID: r.InstallerId,
		Amount:      r.Amount,
		HoursBudget: r.HoursBudget,
		Status:      job.BidStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ExpiresAt != nil {
		b.ExpiresAt = *r.ExpiresAt
	}
	return b
}

// TimeEntryRow is the TimeEntries table shape.
type TimeEntryRow struct {
	OrgId    string     `spanner:"OrgId"`
	EntryId  string     `spanner:"EntryId"`
	WorkerId string     `spanner:"WorkerId"`
	JobId    *string    `spanner:"JobId"`
	StartAt  time.Time  `spanner:"StartAt"`
	EndAt    *time.Time `spanner:"EndAt"`
	Type     string     `spanner:"Type"`
	Notes    *string    `spanner:"Notes"`
}

var timeEntryColumns = []string{
	"OrgId", "EntryId", "WorkerId", "JobId", "StartAt", "EndAt", "Type", "Notes",
}

func (r *TimeEntryRow) toDomain() *job.TimeEntry {
	e := &job.TimeEntry{
		ID:       r.EntryId,
		OrgID:    r.OrgId,
		WorkerID: r.WorkerId,
		Start:    r.StartAt,
		Type:     job.EntryType(r.Type),
	}
	if r.JobId != nil {
		e.JobID = *r.JobId
	}
	if r.EndAt != nil {
		e.End = *r.EndAt
	}
	if r.Notes != nil {
		e.Notes = *r.Notes
	}
	return e
}

// WorkerRow is the Workers table shape; pay settings are inlined.
type WorkerRow struct {
	OrgId              string    `spanner:"OrgId"`
	WorkerId           string    `spanner:"WorkerId"`
	Name               string    `spanner:"Name"`
	Role               string    `spanner:"Role"`
	Active             bool      `spanner:"Active"`
	WorkerType         string    `spanner:"WorkerType"`
	HourlyRate         float64   `spanner:"HourlyRate"`
	Salary             float64   `spanner:"Salary"`
	WeeklyMinimum      float64   `spanner:"WeeklyMinimum"`
	CommissionOverride *float64  `spanner:"CommissionOverride"`
	CreatedAt          time.Time `spanner:"CreatedAt"`
	UpdatedAt          time.Time `spanner:"UpdatedAt"`
}

var workerColumns = []string{
	"OrgId", "WorkerId", "Name", "Role", "Active",
	"WorkerType", "HourlyRate", "Salary", "WeeklyMinimum", "CommissionOverride",
	"CreatedAt", "UpdatedAt",
}

func (r *WorkerRow) toDomain() *job.Worker {
	return &job.Worker{
		ID:     r.WorkerId,
		OrgID:  r.OrgId,
		Name:   r.Name,
		Role:   job.Role(r.Role),
		Active: r.Active,
		Pay: job.PaySettings{
			WorkerType:         job.WorkerType(r.WorkerType),
			HourlyRate:         r.HourlyRate,
			Salary:             r.Salary,
			WeeklyMinimum:      r.WeeklyMinimum,
			CommissionOverride: r.CommissionOverride,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// StageTransitionRow is the StageTransitions audit table shape.
type StageTransitionRow struct {
	OrgId          string    `spanner:"OrgId"`
	JobId          string    `spanner:"JobId"`
	TransitionId   string    `spanner:"TransitionId"`
	FromStage      string    `spanner:"FromStage"`
	ToStage        string    `spanner:"ToStage"`
	Actor          string    `spanner:"Actor"`
	Reason         *string   `spanner:"Reason"`
	TransitionedAt time.Time `spanner:"TransitionedAt"`
}

var transitionColumns = []string{
	"OrgId", "JobId", "TransitionId", "FromStage", "ToStage", "Actor", "Reason", "TransitionedAt",
}
