// Package service implements the ingestion-and-enrichment pipeline: fetch a
// process and its actions from the Rama Judicial API, reconcile them against
// local storage with idempotent upserts, and enrich each action with an
// AI-generated summary and urgency classification.
package service

import (
	"context"
	"errors"

	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/dfrestrepo/ramatrack/internal/rama"
)

// Sentinel errors surfaced by Ingest.
var (
	// ErrDetailUnavailable means the external source returned nothing usable
	// for the process detail; ingestion aborts with no partial state written.
	ErrDetailUnavailable = errors.New("process detail unavailable")

	// ErrPersistFailed means the record store rejected or failed the process
	// write; ingestion aborts before any actions are attempted.
	ErrPersistFailed = errors.New("persist failed")
)

// Store is the record-store capability the pipeline depends on. *db.Client
// satisfies it; absence is reported with db.ErrNotFound.
type Store interface {
	UpsertProcess(ctx context.Context, in models.ProcessInput) (*models.Process, error)
	GetProcessByExternalID(ctx context.Context, externalID string) (*models.Process, error)
	GetProcessByLocalID(ctx context.Context, id string) (*models.Process, error)
	UpsertAction(ctx context.Context, in models.ActionInput) (*models.Action, error)
	UpdateActionEnrichment(ctx context.Context, id string, summary *string, urgency *models.Urgency) (*models.Action, error)
	ListActionsByProcess(ctx context.Context, processID string) ([]models.Action, error)
}

// Source is the external-process-source capability: process detail and the
// action list. *rama.Client satisfies it.
type Source interface {
	FetchDetail(ctx context.Context, externalID string) (*rama.Detail, error)
	FetchActions(ctx context.Context, externalID string) (rama.ActionsPayload, error)
}
