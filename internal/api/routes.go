package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter configures all API routes on a fresh mux router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(requireOrg)

	// Job endpoints
	api.HandleFunc("/jobs", h.CreateJob).Methods("POST")
	api.HandleFunc("/jobs", h.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", h.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", h.UpdateJob).Methods("PUT")
	api.HandleFunc("/jobs/{id}/gate", h.GateStatus).Methods("GET")
	api.HandleFunc("/jobs/{id}/advance", h.AdvanceJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/sendback", h.SendBackJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/transitions", h.ListTransitions).Methods("GET")

	// Triage board
	api.HandleFunc("/triage", h.TriageBoard).Methods("GET")

	// Bid endpoints
	api.HandleFunc("/jobs/{id}/bids", h.CreateBid).Methods("POST")
	api.HandleFunc("/jobs/{id}/bids", h.ListBids).Methods("GET")
	api.HandleFunc("/bids/{id}/accept", h.AcceptBid).Methods("POST")
	api.HandleFunc("/bids/{id}/decline", h.DeclineBid).Methods("POST")

	// Payroll
	api.HandleFunc("/payroll/run", h.RunPayroll).Methods("POST")

	return r
}
