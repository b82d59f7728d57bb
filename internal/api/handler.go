// Package api exposes the shop's job lifecycle, bidding, and payroll
// operations over HTTP. Every route is org-scoped via the X-Org-Id header.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/database"
	"github.com/usawrapco/shoptrack/internal/job"
	"github.com/usawrapco/shoptrack/internal/lifecycle"
	"github.com/usawrapco/shoptrack/internal/payroll"
)

// Store is the slice of the record store the HTTP handlers need.
// *database.Client satisfies it.
type Store interface {
	lifecycle.Store

	InsertJob(ctx context.Context, j *job.Job) error
	GetJob(ctx context.Context, orgID, jobID string) (*job.Job, error)
	UpdateJobFields(ctx context.Context, j *job.Job) error
	ListOpenJobs(ctx context.Context, orgID string) ([]*job.Job, error)
	ListTransitions(ctx context.Context, orgID, jobID string) ([]*database.StageTransition, error)

	InsertBid(ctx context.Context, b *job.InstallerBid) error
	GetBid(ctx context.Context, orgID, bidID string) (*job.InstallerBid, error)
	AcceptBid(ctx context.Context, orgID, bidID string) error
	DeclineBid(ctx context.Context, orgID, bidID string) error
	ListBidsForJob(ctx context.Context, orgID, jobID string) ([]*job.InstallerBid, error)

	LoadPayrollSnapshot(ctx context.Context, orgID string, start, end time.Time) (*payroll.Snapshot, error)
}

// Handler holds the collaborators behind the HTTP surface.
type Handler struct {
	store  Store
	engine *lifecycle.Engine
	plan   *comp.RatePlan
	log    *logrus.Logger
	now    func() time.Time
}

// NewHandler creates the HTTP handler set.
func NewHandler(store Store, engine *lifecycle.Engine, plan *comp.RatePlan, log *logrus.Logger) *Handler {
	return &Handler{
		store:  store,
		engine: engine,
		plan:   plan,
		log:    log,
		now:    time.Now,
	}
}

type ctxKey int

const orgKey ctxKey = iota

// requireOrg rejects requests without an X-Org-Id header and stashes the org
// in the request context for handlers.
func requireOrg(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org := r.Header.Get("X-Org-Id")
		if org == "" {
			http.Error(w, "X-Org-Id header is required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), orgKey, org)))
	})
}

func orgFrom(r *http.Request) string {
	org, _ := r.Context().Value(orgKey).(string)
	return org
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeTransitionError maps lifecycle errors onto HTTP statuses. Gate
// failures carry the evaluator's missing list so clients can render the
// checklist.
func (h *Handler) writeTransitionError(w http.ResponseWriter, err error) {
	var gateErr *lifecycle.GateError
	switch {
	case errors.As(err, &gateErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":          "gate not satisfied",
			"missing":        gateErr.Missing,
			"first_blocking": gateErr.FirstBlocking,
		})
	case errors.Is(err, lifecycle.ErrConflict):
		http.Error(w, "job was modified concurrently, retry", http.StatusConflict)
	case errors.Is(err, lifecycle.ErrInvalidStage),
		errors.Is(err, lifecycle.ErrNotBackward),
		errors.Is(err, lifecycle.ErrEmptyReason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.WithError(err).Error("stage transition failed")
		http.Error(w, "Failed to transition job: "+err.Error(), http.StatusInternalServerError)
	}
}
