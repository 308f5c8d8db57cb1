package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dfrestrepo/ramatrack/internal/db"
	"github.com/dfrestrepo/ramatrack/internal/metrics"
	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/dfrestrepo/ramatrack/internal/rama"
	"github.com/dfrestrepo/ramatrack/internal/service"
)

// Searcher is the upstream search capability exposed by the API.
// *rama.Client satisfies it.
type Searcher interface {
	SearchByName(ctx context.Context, name string, opts rama.SearchOptions) ([]rama.ProcessSummary, error)
	SearchByRegistrationNumber(ctx context.Context, numero string, opts rama.SearchOptions) ([]rama.ProcessSummary, error)
}

// Handler holds API route handlers.
type Handler struct {
	reconciler *service.Reconciler
	facade     *service.Facade
	searcher   Searcher
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(reconciler *service.Reconciler, facade *service.Facade, searcher Searcher, collector *metrics.Collector, logger *slog.Logger) *Handler {
	return &Handler{
		reconciler: reconciler,
		facade:     facade,
		searcher:   searcher,
		metrics:    collector,
		logger:     logger,
	}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetProcess handles GET /api/processes/{id}. It only reads the store; a
// process that was never ingested yields 404 without touching the source.
func (h *Handler) GetProcess(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "id")

	proc, err := h.facade.FindCached(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("process not ingested"))
			return
		}
		h.logger.Error("get process failed", "external_id", externalID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, processBody(proc))
}

// IngestProcess handles POST /api/processes/{id}/ingest. The optional
// search_term query records how the caller found the process.
func (h *Handler) IngestProcess(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "id")

	result, err := h.reconciler.Ingest(r.Context(), externalID, service.IngestOptions{
		SearchTerm: r.URL.Query().Get("search_term"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDetailUnavailable):
			writeJSON(w, http.StatusBadGateway, errorBody("upstream source unavailable"))
		case errors.Is(err, service.ErrPersistFailed):
			h.logger.Error("ingest persist failed", "external_id", externalID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		default:
			h.logger.Error("ingest failed", "external_id", externalID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	status := http.StatusCreated
	if result.FromCache {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"process":        processBody(result.Process),
		"from_cache":     result.FromCache,
		"actions_total":  result.ActionsTotal,
		"actions_stored": result.ActionsStored,
		"actions_failed": result.ActionsFailed,
	})
}

// ReEnrichProcess handles POST /api/processes/{id}/reenrich.
func (h *Handler) ReEnrichProcess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.facade.GetProcess(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("process not found"))
			return
		}
		h.logger.Error("re-enrich lookup failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	result, err := h.reconciler.ReEnrich(r.Context(), id)
	if err != nil {
		h.logger.Error("re-enrich failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"actions_processed": result.ActionsProcessed,
		"actions_failed":    result.ActionsFailed,
	})
}

// ListActions handles GET /api/processes/{id}/actions.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.facade.GetProcess(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("process not found"))
			return
		}
		h.logger.Error("list actions lookup failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	actions, err := h.facade.ListActions(r.Context(), id)
	if err != nil {
		h.logger.Error("list actions failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]map[string]any, 0, len(actions))
	for i := range actions {
		items = append(items, actionBody(&actions[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"actions": items,
		"total":   len(items),
	})
}

// Search handles GET /api/search. Exactly one of the name or number query
// parameters selects the search mode.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	number := q.Get("number")
	if (name == "") == (number == "") {
		writeJSON(w, http.StatusBadRequest, errorBody("exactly one of 'name' or 'number' is required"))
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	opts := rama.SearchOptions{
		PersonType: q.Get("person_type"),
		OnlyActive: q.Get("only_active") == "true",
		CourtCode:  q.Get("court_code"),
		Page:       page,
	}

	var (
		results []rama.ProcessSummary
		err     error
	)
	if name != "" {
		err = h.metrics.Time(metrics.OpSourceSearch, func() error {
			results, err = h.searcher.SearchByName(r.Context(), name, opts)
			return err
		})
	} else {
		err = h.metrics.Time(metrics.OpSourceSearch, func() error {
			results, err = h.searcher.SearchByRegistrationNumber(r.Context(), number, opts)
			return err
		})
	}
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody("upstream source unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
	})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// processBody shapes a process for the wire; the record id is flattened to
// its string form.
func processBody(p *models.Process) map[string]any {
	body := map[string]any{
		"id":          models.MustRecordIDString(p.ID),
		"external_id": p.ExternalID,
		"queried_at":  p.QueriedAt,
		"created":     p.Created,
		"updated":     p.Updated,
	}
	setOpt(body, "registration_number", p.RegistrationNumber)
	setOpt(body, "court", p.Court)
	setOpt(body, "reporting_judge", p.ReportingJudge)
	setOpt(body, "parties", p.Parties)
	setOpt(body, "filing_date", p.FilingDate)
	setOpt(body, "process_type", p.ProcessType)
	setOpt(body, "process_class", p.ProcessClass)
	setOpt(body, "file_location", p.FileLocation)
	setOpt(body, "plaintiff", p.Plaintiff)
	setOpt(body, "defendant", p.Defendant)
	setOpt(body, "search_term_used", p.SearchTermUsed)
	return body
}

func actionBody(a *models.Action) map[string]any {
	body := map[string]any{
		"id":            models.MustRecordIDString(a.ID),
		"process":       models.MustRecordIDString(a.Process),
		"has_documents": a.HasDocuments,
		"created":       a.Created,
		"updated":       a.Updated,
	}
	setOpt(body, "external_action_id", a.ExternalActionID)
	setOpt(body, "action_date", a.ActionDate)
	setOpt(body, "action_type", a.ActionType)
	setOpt(body, "annotation", a.Annotation)
	setOpt(body, "term_start_date", a.TermStartDate)
	setOpt(body, "term_end_date", a.TermEndDate)
	setOpt(body, "registered_date", a.RegisteredDate)
	setOpt(body, "ai_summary", a.AISummary)
	if a.AIUrgency != nil {
		body["ai_urgency"] = string(*a.AIUrgency)
	}
	return body
}

func setOpt(body map[string]any, key string, val *string) {
	if val != nil {
		body[key] = *val
	}
}
