package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/usawrapco/shoptrack/internal/job"
	"github.com/usawrapco/shoptrack/internal/lifecycle"
)

// CreateBidRequest is the body of POST /v1/jobs/{id}/bids.
type CreateBidRequest struct {
	InstallerID string     `json:"installer_id"`
	Amount      float64    `json:"amount"`
	HoursBudget float64    `json:"hours_budget"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreateBid handles POST /v1/jobs/{id}/bids.
func (h *Handler) CreateBid(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	org := orgFrom(r)

	if _, err := h.store.GetJob(r.Context(), org, jobID); err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var req CreateBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.InstallerID == "" {
		http.Error(w, "installer_id is required", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	b := &job.InstallerBid{
		OrgID:       org,
		JobID:       jobID,
		InstallerID: req.InstallerID,
		Amount:      req.Amount,
		HoursBudget: req.HoursBudget,
		Status:      job.BidPending,
	}
	if req.ExpiresAt != nil {
		b.ExpiresAt = *req.ExpiresAt
	}
	if err := h.store.InsertBid(r.Context(), b); err != nil {
		h.log.WithError(err).Error("failed to create bid")
		http.Error(w, "Failed to create bid: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     b.ID,
		"status": b.Status,
	})
}

// ListBids handles GET /v1/jobs/{id}/bids. Each item carries the effective
// eligibility after the lazy expiry check, not just the stored status.
func (h *Handler) ListBids(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	org := orgFrom(r)

	bids, err := h.store.ListBidsForJob(r.Context(), org, jobID)
	if err != nil {
		h.log.WithError(err).Error("failed to list bids")
		http.Error(w, "Failed to list bids: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := h.now()
	items := make([]map[string]interface{}, len(bids))
	for i, b := range bids {
		items[i] = map[string]interface{}{
			"id":           b.ID,
			"installer_id": b.InstallerID,
			"amount":       b.Amount,
			"hours_budget": b.HoursBudget,
			"status":       b.Status,
			"eligible":     b.Eligible(now),
			"created_at":   b.CreatedAt,
		}
		if !b.ExpiresAt.IsZero() {
			items[i]["expires_at"] = b.ExpiresAt
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// AcceptBid handles POST /v1/bids/{id}/accept. Exactly one concurrent
// acceptance per job wins; the losers get 409.
func (h *Handler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	bidID := mux.Vars(r)["id"]
	org := orgFrom(r)

	if err := h.store.AcceptBid(r.Context(), org, bidID); err != nil {
		if errors.Is(err, lifecycle.ErrConflict) {
			http.Error(w, "bid is no longer eligible", http.StatusConflict)
			return
		}
		h.log.WithError(err).Error("failed to accept bid")
		http.Error(w, "Failed to accept bid: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.WithFields(map[string]interface{}{
		"org": org,
		"bid": bidID,
	}).Info("bid accepted")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     bidID,
		"status": job.BidAccepted,
	})
}

// DeclineBid handles POST /v1/bids/{id}/decline.
func (h *Handler) DeclineBid(w http.ResponseWriter, r *http.Request) {
	bidID := mux.Vars(r)["id"]
	org := orgFrom(r)

	if err := h.store.DeclineBid(r.Context(), org, bidID); err != nil {
		h.log.WithError(err).Error("failed to decline bid")
		http.Error(w, "Failed to decline bid: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     bidID,
		"status": job.BidDeclined,
	})
}
