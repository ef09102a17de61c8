// Package v1handler implements the v1 run API: start a batch check, fetch a
// stored run and download its reports.
package v1handler

import (
	"net/http"

	"domaincheck/internal/checker"
	"domaincheck/internal/config"
)

// Options configure the v1 handlers.
type Options struct {
	// MaxRunDomains rejects runs with more domains; 0 disables the limit.
	MaxRunDomains int
	// MinMonthlyVisits is the hits threshold used when a request sets none.
	MinMonthlyVisits int64
	// Run carries the worker settings of every batch started through the API.
	Run checker.RunOptions
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) Options {
	run := checker.NewRunOptions(cfg)
	// API runs are bounded by MaxRunDomains and never checkpoint to disk
	run.MaxDomains = 0
	run.CheckpointEvery = 0

	return Options{
		MaxRunDomains:    cfg.HTTP.MaxRunDomains,
		MinMonthlyVisits: cfg.Checker.MinMonthlyVisits,
		Run:              run,
	}
}

// Deps are the collaborators of the handlers.
type Deps struct {
	Checker  checker.Checker
	Sessions *Sessions
}

// Handler serves the v1 routes.
type Handler struct {
	deps Deps
	opts Options
}

// New constructs a Handler.
func New(deps Deps, opts Options) *Handler {
	return &Handler{deps: deps, opts: opts}
}

// Register adds the v1 routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/runs", h.CreateRun)
	mux.HandleFunc("GET /v1/runs/{id}", h.GetRun)
	mux.HandleFunc("DELETE /v1/runs/{id}", h.DeleteRun)
	mux.HandleFunc("GET /v1/runs/{id}/{file}", h.Download)
}
