package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/cmd/matching-api/handlers"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/config"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/storage"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/pkg/engine"
)

// NewRouter builds the HTTP routing table for the matching API.
func NewRouter(logger *observability.Logger, cfg *config.Config, eng *engine.Engine, repo *storage.InventoryRepository) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if len(eng.Snapshot().Items) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"empty catalog"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	matchHandler := handlers.NewMatchingHandler(logger, eng)
	inventoryHandler := handlers.NewInventoryHandler(logger, eng, repo)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match", matchHandler.Match)
		r.Post("/alternatives", matchHandler.Alternatives)
		r.Post("/availability", matchHandler.Availability)
		r.Post("/procurement/plan", matchHandler.PlanProcurement)
		r.Post("/readiness", matchHandler.AssessReadiness)

		r.Get("/inventory", inventoryHandler.List)
		r.Get("/inventory/{id}", inventoryHandler.Get)
		r.Put("/inventory", inventoryHandler.Replace)
		r.Post("/inventory/sync", inventoryHandler.Sync)
	})

	return r
}
