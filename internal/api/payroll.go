package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/usawrapco/shoptrack/internal/payroll"
)

// RunPayrollRequest is the body of POST /v1/payroll/run.
type RunPayrollRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// RunPayroll handles POST /v1/payroll/run. The run is a pure computation
// over a period snapshot; nothing is persisted, so re-running a period is
// always safe.
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r)

	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || !req.PeriodEnd.After(req.PeriodStart) {
		http.Error(w, "period_start and period_end must form a valid range", http.StatusBadRequest)
		return
	}

	snap, err := h.store.LoadPayrollSnapshot(r.Context(), org, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		h.log.WithError(err).Error("failed to load payroll snapshot")
		http.Error(w, "Failed to load payroll data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	proc := payroll.NewProcessor(h.plan)
	res := proc.Run(req.PeriodStart, req.PeriodEnd, snap)

	h.log.WithFields(map[string]interface{}{
		"org":         org,
		"statements":  len(res.Statements),
		"errors":      len(res.Errors),
		"grand_total": res.GrandTotal,
	}).Info("payroll run complete")

	errs := make([]map[string]interface{}, len(res.Errors))
	for i, we := range res.Errors {
		errs[i] = map[string]interface{}{
			"worker_id": we.WorkerID,
			"error":     we.Err,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period_start": res.PeriodStart,
		"period_end":   res.PeriodEnd,
		"statements":   res.Statements,
		"errors":       errs,
		"totals": map[string]interface{}{
			"employee":         res.EmployeeTotal,
			"contractor":       res.ContractorTotal,
			"grand":            res.GrandTotal,
			"employee_count":   res.EmployeeCount,
			"contractor_count": res.ContractorCount,
		},
	})
}
