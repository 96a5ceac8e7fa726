package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/storage"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/pkg/engine"
)

// InventoryHandler serves the catalog store and snapshot operations.
type InventoryHandler struct {
	logger *observability.Logger
	engine *engine.Engine
	repo   *storage.InventoryRepository
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(logger *observability.Logger, eng *engine.Engine, repo *storage.InventoryRepository) *InventoryHandler {
	return &InventoryHandler{logger: logger, engine: eng, repo: repo}
}

// SnapshotResponse describes the live catalog snapshot.
type SnapshotResponse struct {
	Items    []matching.InventoryItem `json:"items"`
	Version  uint64                   `json:"version"`
	SyncedAt string                   `json:"synced_at"`
	Count    int                      `json:"count"`
}

// List returns the current in-memory catalog snapshot.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.Snapshot()
	writeJSON(w, http.StatusOK, SnapshotResponse{
		Items:    snapshot.Items,
		Version:  snapshot.Version,
		SyncedAt: snapshot.SyncedAt.Format("2006-01-02T15:04:05Z07:00"),
		Count:    len(snapshot.Items),
	})
}

// Get returns one stored inventory item by id.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "inventory item not found")
		return
	}
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Str("id", id).Msg("Inventory get failed")
		writeError(w, http.StatusInternalServerError, "inventory lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// ReplaceRequest is the request body for a full catalog replace.
type ReplaceRequest struct {
	Items []matching.InventoryItem `json:"items"`
}

// ReplaceResponse reports the published snapshot version.
type ReplaceResponse struct {
	Version uint64 `json:"version"`
	Count   int    `json:"count"`
}

// Replace persists the given items as the whole catalog and publishes them as
// a new snapshot.
func (h *InventoryHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.ReplaceAll(r.Context(), req.Items); err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Inventory replace failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.engine.ReplaceInventory(req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ReplaceResponse{Version: snapshot.Version, Count: len(snapshot.Items)})
}

// Sync republishes the persisted catalog as a new snapshot.
func (h *InventoryHandler) Sync(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.engine.Sync(r.Context(), h.repo)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Inventory sync failed")
		writeError(w, http.StatusInternalServerError, "inventory sync failed")
		return
	}

	writeJSON(w, http.StatusOK, ReplaceResponse{Version: snapshot.Version, Count: len(snapshot.Items)})
}
