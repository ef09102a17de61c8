package v1handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"domaincheck/internal/report"
	"domaincheck/pkg/controller"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the JSON body of a run request.
const maxBodyBytes = 1 << 20

// CreateRunRequest is the body of POST /v1/runs.
type CreateRunRequest struct {
	Domains []string `json:"domains"`
	// MinMonthlyVisits overrides the configured hits threshold when set.
	MinMonthlyVisits *int64 `json:"minMonthlyVisits,omitempty"`
}

// CreateRun checks the requested domains synchronously and stores the run.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRunRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		controller.WriteError(ctx, w, serrors.Wrap(serrors.ErrBadInput, err, "invalid request body"))

		return
	}

	domains := make([]string, 0, len(req.Domains))
	for _, d := range req.Domains {
		if d = domain.Normalize(d); d != "" {
			domains = append(domains, d)
		}
	}
	switch {
	case len(domains) == 0:
		controller.WriteError(ctx, w, serrors.With(serrors.ErrBadInput, "domains must not be empty"))

		return
	case h.opts.MaxRunDomains > 0 && len(domains) > h.opts.MaxRunDomains:
		controller.WriteError(ctx, w,
			serrors.With(serrors.ErrBadInput, "at most %d domains per run", h.opts.MaxRunDomains))

		return
	}

	threshold := h.opts.MinMonthlyVisits
	if req.MinMonthlyVisits != nil {
		if *req.MinMonthlyVisits < 0 {
			controller.WriteError(ctx, w, serrors.With(serrors.ErrBadInput, "minMonthlyVisits must not be negative"))

			return
		}
		threshold = *req.MinMonthlyVisits
	}

	run := &Run{ID: uuid.New(), CreatedAt: time.Now().UTC(), MinMonthlyVisits: threshold}
	ctx = logger.WithFields(ctx, zap.Stringer("run_id", run.ID))
	logger.Info(ctx, "run started", zap.Int("domains", len(domains)))

	results, err := h.deps.Checker.Run(ctx, domains, h.opts.Run)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = serrors.Wrap(serrors.ErrTimeout, err, "run did not finish in time (%d of %d domains)",
				len(results), len(domains))
		}
		controller.WriteError(ctx, w, err)

		return
	}

	run.Results = results
	run.Hits = results.Hits(threshold)
	h.deps.Sessions.Add(run)

	controller.WriteJSON(ctx, w, http.StatusCreated, run)
}

// GetRun returns a stored run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.run(r)
	if err != nil {
		controller.WriteError(r.Context(), w, err)

		return
	}

	controller.WriteJSON(r.Context(), w, http.StatusOK, run)
}

// DeleteRun forgets a stored run.
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	id, err := runID(r)
	if err == nil {
		err = h.deps.Sessions.Delete(id)
	}
	if err != nil {
		controller.WriteError(r.Context(), w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// download describes one report of a run.
type download struct {
	contentType string
	render      func(w io.Writer, run *Run) error
}

//nolint: gochecknoglobals
var downloads = map[string]download{
	"full.csv": {"text/csv; charset=utf-8", func(w io.Writer, run *Run) error {
		return report.WriteFull(w, run.Results)
	}},
	"hits.csv": {"text/csv; charset=utf-8", func(w io.Writer, run *Run) error {
		return report.WriteHits(w, run.Results, run.MinMonthlyVisits)
	}},
	"minimal.csv": {"text/csv; charset=utf-8", func(w io.Writer, run *Run) error {
		return report.WriteMinimal(w, run.Results)
	}},
	"results.xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(w io.Writer, run *Run) error {
		return report.WriteWorkbook(w, run.Results, run.MinMonthlyVisits)
	}},
}

// Download renders one report of a stored run.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.PathValue("file")
	d, ok := downloads[name]
	if !ok {
		controller.WriteError(ctx, w, serrors.With(serrors.ErrNotFound, "unknown report %q", name))

		return
	}

	run, err := h.run(r)
	if err != nil {
		controller.WriteError(ctx, w, err)

		return
	}

	var buf bytes.Buffer
	if err := d.render(&buf, run); err != nil {
		controller.WriteError(ctx, w, err)

		return
	}

	w.Header().Set("Content-Type", d.contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+run.ID.String()+"-"+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) run(r *http.Request) (*Run, error) {
	id, err := runID(r)
	if err != nil {
		return nil, err
	}

	return h.deps.Sessions.Get(id)
}

func runID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, serrors.Wrap(serrors.ErrBadInput, err, "invalid run id")
	}

	return id, nil
}
