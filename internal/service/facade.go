package service

import (
	"context"

	"github.com/dfrestrepo/ramatrack/internal/models"
)

// Facade exposes read-only queries over the record store to the CLI and the
// HTTP server without giving them write access.
type Facade struct {
	store Store
}

// NewFacade creates a read facade over the store.
func NewFacade(store Store) *Facade {
	return &Facade{store: store}
}

// FindCached returns the stored process for an upstream idProceso, or
// db.ErrNotFound when it was never ingested.
func (f *Facade) FindCached(ctx context.Context, externalID string) (*models.Process, error) {
	return f.store.GetProcessByExternalID(ctx, externalID)
}

// GetProcess returns the stored process by its store-assigned id.
func (f *Facade) GetProcess(ctx context.Context, id string) (*models.Process, error) {
	return f.store.GetProcessByLocalID(ctx, id)
}

// ListActions returns a process's stored actions, newest first.
func (f *Facade) ListActions(ctx context.Context, processID string) ([]models.Action, error) {
	return f.store.ListActionsByProcess(ctx, processID)
}
