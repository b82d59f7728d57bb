package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/usawrapco/shoptrack/internal/gate"
	"github.com/usawrapco/shoptrack/internal/job"
	"github.com/usawrapco/shoptrack/internal/triage"
)

// CreateJobRequest is the body of POST /v1/jobs.
type CreateJobRequest struct {
	CustomerID  string       `json:"customer_id"`
	Vehicle     string       `json:"vehicle"`
	SalesRepID  string       `json:"sales_rep_id"`
	InstallerID string       `json:"installer_id"`
	Revenue     float64      `json:"revenue"`
	FormData    job.FormData `json:"form_data"`
	FinData     job.FinData  `json:"fin_data"`
}

// CreateJob handles POST /v1/jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	j := &job.Job{
		OrgID:       orgFrom(r),
		CustomerID:  req.CustomerID,
		Vehicle:     req.Vehicle,
		SalesRepID:  req.SalesRepID,
		InstallerID: req.InstallerID,
		Revenue:     req.Revenue,
		FormData:    req.FormData,
		FinData:     req.FinData,
	}
	if err := h.store.InsertJob(r.Context(), j); err != nil {
		h.log.WithError(err).Error("failed to create job")
		http.Error(w, "Failed to create job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.WithFields(map[string]interface{}{
		"org": j.OrgID,
		"job": j.ID,
	}).Info("job created")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    j.ID,
		"stage": j.Stage,
	})
}

// GetJob handles GET /v1/jobs/{id}. The response includes the gate
// evaluation and triage tier for the current stage.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	j, err := h.store.GetJob(r.Context(), orgFrom(r), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	ev := gate.Evaluate(j)
	cls := triage.Classify(j, j.DaysInStage(h.now()))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job": j,
		"gate": map[string]interface{}{
			"can_advance":    ev.CanAdvance,
			"missing":        ev.Missing,
			"first_blocking": ev.FirstBlocking,
		},
		"triage": map[string]interface{}{
			"severity": cls.Severity.String(),
			"label":    cls.Label,
		},
	})
}

// UpdateJobRequest is the body of PUT /v1/jobs/{id}. Stage and commission
// are absent on purpose; they only move through the transition endpoints.
type UpdateJobRequest struct {
	CustomerID  string       `json:"customer_id"`
	Vehicle     string       `json:"vehicle"`
	SalesRepID  string       `json:"sales_rep_id"`
	InstallerID string       `json:"installer_id"`
	Revenue     float64      `json:"revenue"`
	FormData    job.FormData `json:"form_data"`
	FinData     job.FinData  `json:"fin_data"`
	Actuals     job.Actuals  `json:"actuals"`
	Checkout    job.Checkout `json:"checkout"`
}

// UpdateJob handles PUT /v1/jobs/{id}.
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	j, err := h.store.GetJob(r.Context(), orgFrom(r), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	j.CustomerID = req.CustomerID
	j.Vehicle = req.Vehicle
	j.SalesRepID = req.SalesRepID
	j.InstallerID = req.InstallerID
	j.Revenue = req.Revenue
	j.FormData = req.FormData
	j.FinData = req.FinData
	j.Actuals = req.Actuals
	j.Checkout = req.Checkout

	if err := h.store.UpdateJobFields(r.Context(), j); err != nil {
		h.log.WithError(err).Error("failed to update job")
		http.Error(w, "Failed to update job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    j.ID,
		"stage": j.Stage,
	})
}

// ListJobs handles GET /v1/jobs. Only open jobs are returned.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListOpenJobs(r.Context(), orgFrom(r))
	if err != nil {
		h.log.WithError(err).Error("failed to list jobs")
		http.Error(w, "Failed to list jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]map[string]interface{}, len(jobs))
	for i, j := range jobs {
		items[i] = map[string]interface{}{
			"id":            j.ID,
			"stage":         j.Stage,
			"customer_id":   j.CustomerID,
			"vehicle":       j.Vehicle,
			"revenue":       j.Revenue,
			"days_in_stage": j.DaysInStage(h.now()),
			"created_at":    j.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// GateStatus handles GET /v1/jobs/{id}/gate.
func (h *Handler) GateStatus(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	j, err := h.store.GetJob(r.Context(), orgFrom(r), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	ev := gate.Evaluate(j)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stage":          j.Stage,
		"can_advance":    ev.CanAdvance,
		"missing":        ev.Missing,
		"first_blocking": ev.FirstBlocking,
	})
}

// AdvanceJobRequest is the body of POST /v1/jobs/{id}/advance.
type AdvanceJobRequest struct {
	Actor string `json:"actor"`
}

// AdvanceJob handles POST /v1/jobs/{id}/advance.
func (h *Handler) AdvanceJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	org := orgFrom(r)

	j, err := h.store.GetJob(r.Context(), org, jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var req AdvanceJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engine.Advance(r.Context(), j, req.Actor); err != nil {
		h.writeTransitionError(w, err)
		return
	}

	h.log.WithFields(map[string]interface{}{
		"org":   org,
		"job":   j.ID,
		"stage": j.Stage,
	}).Info("job advanced")

	resp := map[string]interface{}{
		"id":    j.ID,
		"stage": j.Stage,
	}
	if j.Stage.Terminal() {
		resp["commission"] = j.Commission
		resp["profit"] = j.Profit
		resp["gpm"] = j.GPM
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendBackRequest is the body of POST /v1/jobs/{id}/sendback.
type SendBackRequest struct {
	To     job.Stage `json:"to"`
	Reason string    `json:"reason"`
	Actor  string    `json:"actor"`
}

// SendBackJob handles POST /v1/jobs/{id}/sendback.
func (h *Handler) SendBackJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	org := orgFrom(r)

	j, err := h.store.GetJob(r.Context(), org, jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var req SendBackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engine.SendBack(r.Context(), j, req.To, req.Reason, req.Actor); err != nil {
		h.writeTransitionError(w, err)
		return
	}

	h.log.WithFields(map[string]interface{}{
		"org":    org,
		"job":    j.ID,
		"stage":  j.Stage,
		"reason": req.Reason,
	}).Info("job sent back")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    j.ID,
		"stage": j.Stage,
	})
}

// ListTransitions handles GET /v1/jobs/{id}/transitions.
func (h *Handler) ListTransitions(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	org := orgFrom(r)

	if _, err := h.store.GetJob(r.Context(), org, jobID); err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	transitions, err := h.store.ListTransitions(r.Context(), org, jobID)
	if err != nil {
		h.log.WithError(err).Error("failed to list transitions")
		http.Error(w, "Failed to list transitions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]map[string]interface{}, len(transitions))
	for i, t := range transitions {
		item := map[string]interface{}{
			"from":  t.From,
			"to":    t.To,
			"actor": t.Actor,
			"at":    t.TransitionedAt,
		}
		if t.Reason != "" {
			item["reason"] = t.Reason
		}
		items[i] = item
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// TriageBoard handles GET /v1/triage. Blocked jobs sort first, then
// stalled, then on-track, so the worst problems lead the board.
func (h *Handler) TriageBoard(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListOpenJobs(r.Context(), orgFrom(r))
	if err != nil {
		h.log.WithError(err).Error("failed to list jobs for triage")
		http.Error(w, "Failed to build triage board: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := h.now()
	type entry struct {
		severity triage.Severity
		item     map[string]interface{}
	}
	entries := make([]entry, len(jobs))
	for i, j := range jobs {
		days := j.DaysInStage(now)
		cls := triage.Classify(j, days)
		entries[i] = entry{
			severity: cls.Severity,
			item: map[string]interface{}{
				"id":            j.ID,
				"stage":         j.Stage,
				"customer_id":   j.CustomerID,
				"vehicle":       j.Vehicle,
				"days_in_stage": days,
				"severity":      cls.Severity.String(),
				"label":         cls.Label,
			},
		}
	}

	items := make([]map[string]interface{}, 0, len(entries))
	for _, severity := range []triage.Severity{triage.SeverityBlocked, triage.SeverityStalled, triage.SeverityOnTrack} {
		for _, e := range entries {
			if e.severity == severity {
				items = append(items, e.item)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
