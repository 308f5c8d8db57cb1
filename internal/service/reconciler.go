package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dfrestrepo/ramatrack/internal/db"
	"github.com/dfrestrepo/ramatrack/internal/llm"
	"github.com/dfrestrepo/ramatrack/internal/metrics"
	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/dfrestrepo/ramatrack/internal/rama"
)

// Reconciler drives the ingest pipeline: source fetch, normalization,
// enrichment and persistence.
type Reconciler struct {
	store      Store
	source     Source
	oracle     llm.Oracle
	logger     *slog.Logger
	metrics    *metrics.Collector
	llmTimeout time.Duration
}

// NewReconciler wires the pipeline dependencies. A zero llmTimeout disables
// the per-call deadline on enrichment requests.
func NewReconciler(store Store, source Source, oracle llm.Oracle, logger *slog.Logger, collector *metrics.Collector, llmTimeout time.Duration) *Reconciler {
	return &Reconciler{
		store:      store,
		source:     source,
		oracle:     oracle,
		logger:     logger,
		metrics:    collector,
		llmTimeout: llmTimeout,
	}
}

// IngestOptions tune a single Ingest run.
type IngestOptions struct {
	// SearchTerm records how the user found this process (name or
	// registration number). Stored on the process for provenance.
	SearchTerm string

	// Progress, when set, is called after each action is reconciled.
	Progress func(done, total int)
}

// IngestResult reports what one Ingest run did.
type IngestResult struct {
	Process        *models.Process
	FromCache      bool
	ActionsTotal  int
	ActionsStored int
	ActionsFailed int
	ActionsShape  rama.Shape
}

// Ingest fetches, enriches and persists one process identified by its
// upstream idProceso. A process already in the store short-circuits: no
// source or enrichment calls are made. Action failures are isolated; a
// failing action is logged and skipped while the rest of the run proceeds.
func (r *Reconciler) Ingest(ctx context.Context, externalID string, opts IngestOptions) (*IngestResult, error) {
	cached, err := r.store.GetProcessByExternalID(ctx, externalID)
	if err == nil {
		r.logger.Info("process already ingested, serving from store",
			"external_id", externalID)
		return &IngestResult{Process: cached, FromCache: true}, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("ingest: cache check: %w", err)
	}

	var detail *rama.Detail
	err = r.metrics.Time(metrics.OpSourceDetail, func() error {
		var ferr error
		detail, ferr = r.source.FetchDetail(ctx, externalID)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDetailUnavailable, externalID, err)
	}

	input := normalizeDetail(externalID, detail, opts.SearchTerm)

	var proc *models.Process
	err = r.metrics.Time(metrics.OpDBUpsertProcess, func() error {
		var perr error
		proc, perr = r.store.UpsertProcess(ctx, input)
		return perr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: process %s: %v", ErrPersistFailed, input.ExternalID, err)
	}

	actions := r.fetchActions(ctx, input.ExternalID)
	result := &IngestResult{
		Process:      proc,
		ActionsTotal: len(actions.Items),
		ActionsShape: actions.Shape,
	}

	for i, raw := range actions.Items {
		action := normalizeAction(raw)
		action.Process = proc.ID
		action.AISummary, action.AIUrgency = r.enrich(ctx, action.ActionType, action.Annotation)

		err := r.metrics.Time(metrics.OpDBUpsertAction, func() error {
			_, uerr := r.store.UpsertAction(ctx, action)
			return uerr
		})
		if err != nil {
			result.ActionsFailed++
			r.logger.Error("storing action failed, skipping",
				"process", input.ExternalID,
				"external_action_id", deref(action.ExternalActionID),
				"error", err)
		} else {
			result.ActionsStored++
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(actions.Items))
		}
	}

	// Re-read so computed fields (timestamps) reflect the stored state.
	fresh, err := r.store.GetProcessByLocalID(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		r.logger.Warn("re-reading stored process failed", "error", err)
	} else {
		result.Process = fresh
	}

	r.logger.Info("ingest complete",
		"external_id", input.ExternalID,
		"actions_total", result.ActionsTotal,
		"actions_stored", result.ActionsStored,
		"actions_failed", result.ActionsFailed)
	return result, nil
}

// fetchActions pulls the action list, tolerating source failures and payload
// shapes it does not recognize. Either way the ingest continues with zero
// actions; only the process detail is load-bearing.
func (r *Reconciler) fetchActions(ctx context.Context, externalID string) rama.ActionsPayload {
	var payload rama.ActionsPayload
	err := r.metrics.Time(metrics.OpSourceActions, func() error {
		var ferr error
		payload, ferr = r.source.FetchActions(ctx, externalID)
		return ferr
	})
	if err != nil {
		r.logger.Warn("fetching actions failed, continuing without them",
			"external_id", externalID, "error", err)
		return rama.ActionsPayload{Shape: rama.ShapeUnrecognized}
	}
	if payload.Shape == rama.ShapeUnrecognized {
		r.logger.Warn("unrecognized actions payload shape, continuing without them",
			"external_id", externalID)
	}
	return payload
}

// enrich produces the AI fields for one action. The summary is optional (nil
// when the backend fails or the annotation is empty); the urgency is always
// set: LOW for empty annotations without consulting the backend, MEDIUM when
// the backend fails or answers outside the urgency set.
func (r *Reconciler) enrich(ctx context.Context, actionType, annotation *string) (*string, *models.Urgency) {
	text := strings.TrimSpace(deref(annotation))
	if text == "" {
		low := models.UrgencyLow
		return nil, &low
	}

	var summary *string
	err := r.metrics.Time(metrics.OpLLMSummarize, func() error {
		lctx, cancel := r.llmContext(ctx)
		defer cancel()

		s, serr := r.oracle.Summarize(lctx, text)
		if serr != nil {
			return serr
		}
		summary = models.StringPtr(strings.TrimSpace(s))
		return nil
	})
	if err != nil {
		r.logger.Warn("summarization failed, storing action without summary", "error", err)
	}

	urgency := models.UrgencyMedium
	err = r.metrics.Time(metrics.OpLLMClassify, func() error {
		lctx, cancel := r.llmContext(ctx)
		defer cancel()

		u, cerr := r.oracle.ClassifyUrgency(lctx, deref(actionType), text)
		if cerr != nil {
			return cerr
		}
		urgency = u
		return nil
	})
	if err != nil {
		r.logger.Warn("urgency classification failed, defaulting to MEDIUM", "error", err)
	}
	return summary, &urgency
}

func (r *Reconciler) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.llmTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.llmTimeout)
}

// ReEnrichResult reports what one ReEnrich run did.
type ReEnrichResult struct {
	ActionsProcessed int
	ActionsFailed    int
}

// ReEnrich re-runs summarization and classification over every stored action
// of a process, e.g. after switching to a stronger model. Failures are
// isolated per action like in Ingest.
func (r *Reconciler) ReEnrich(ctx context.Context, processLocalID string) (*ReEnrichResult, error) {
	actions, err := r.store.ListActionsByProcess(ctx, processLocalID)
	if err != nil {
		return nil, fmt.Errorf("re-enrich: %w", err)
	}

	result := &ReEnrichResult{}
	for _, action := range actions {
		summary, urgency := r.enrich(ctx, action.ActionType, action.Annotation)

		_, err := r.store.UpdateActionEnrichment(ctx, models.MustRecordIDString(action.ID), summary, urgency)
		if err != nil {
			result.ActionsFailed++
			r.logger.Error("updating action enrichment failed, skipping",
				"action", models.MustRecordIDString(action.ID), "error", err)
			continue
		}
		result.ActionsProcessed++
	}

	r.logger.Info("re-enrichment complete",
		"process", processLocalID,
		"actions_processed", result.ActionsProcessed,
		"actions_failed", result.ActionsFailed)
	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
