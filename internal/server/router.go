package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(h *Handler, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recoverer(logger))
	r.Use(Logging(logger))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Lookup and ingestion are keyed by the upstream idProceso;
		// re-enrichment and the action list by the store-assigned id.
		r.Get("/processes/{id}", h.GetProcess)
		r.Post("/processes/{id}/ingest", h.IngestProcess)
		r.Post("/processes/{id}/reenrich", h.ReEnrichProcess)
		r.Get("/processes/{id}/actions", h.ListActions)

		// Upstream search passthrough.
		r.Get("/search", h.Search)

		// Runtime statistics.
		r.Get("/stats", h.Stats)
	})

	// Keep chi from treating unknown paths as 405s on the process subtree.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	})

	return r
}
