// Package handlers provides HTTP handlers for the matching API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/pkg/engine"
)

// MatchingHandler serves the matching pipeline operations.
type MatchingHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewMatchingHandler creates a new matching handler.
func NewMatchingHandler(logger *observability.Logger, eng *engine.Engine) *MatchingHandler {
	return &MatchingHandler{logger: logger, engine: eng}
}

// MatchRequest is the request body for a single-component match.
type MatchRequest struct {
	Component matching.RequiredComponent `json:"component"`
}

// MatchResponse holds ranked candidate matches.
type MatchResponse struct {
	Matches []matching.ComponentMatch `json:"matches"`
	Count   int                       `json:"count"`
}

// Match ranks catalog candidates for one required component.
func (h *MatchingHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Component.Name == "" {
		writeError(w, http.StatusBadRequest, "component name is required")
		return
	}

	matches, err := h.engine.Match(r.Context(), req.Component)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).
			Str("component", req.Component.Name).
			Msg("Match failed")
		writeError(w, http.StatusInternalServerError, "match failed")
		return
	}

	writeJSON(w, http.StatusOK, MatchResponse{Matches: matches, Count: len(matches)})
}

// Alternatives returns known substitutes for the component's type.
func (h *MatchingHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.engine.FindAlternatives(req.Component)
	writeJSON(w, http.StatusOK, result)
}

// Availability produces the availability analysis for one component.
func (h *MatchingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Component.Name == "" {
		writeError(w, http.StatusBadRequest, "component name is required")
		return
	}

	analysis, err := h.engine.Analyze(r.Context(), req.Component)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).
			Str("component", req.Component.Name).
			Msg("Availability analysis failed")
		writeError(w, http.StatusInternalServerError, "availability analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// PlanRequest is the request body for procurement planning and readiness.
type PlanRequest struct {
	ProjectID  string                       `json:"project_id"`
	Components []matching.RequiredComponent `json:"components"`
}

// PlanResponse holds the sequenced procurement plan.
type PlanResponse struct {
	Items []matching.ProcurementItem `json:"items"`
	Count int                        `json:"count"`
}

// PlanProcurement analyzes all components and returns them in execution order.
func (h *MatchingHandler) PlanProcurement(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Components) == 0 {
		writeError(w, http.StatusBadRequest, "at least one component is required")
		return
	}

	items, err := h.engine.PlanProcurement(r.Context(), req.Components)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Procurement planning failed")
		writeError(w, http.StatusInternalServerError, "procurement planning failed")
		return
	}

	writeJSON(w, http.StatusOK, PlanResponse{Items: items, Count: len(items)})
}

// AssessReadiness rolls component analyses into a project readiness verdict.
func (h *MatchingHandler) AssessReadiness(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	assessment, err := h.engine.AssessReadiness(r.Context(), req.ProjectID, req.Components)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).
			Str("project_id", req.ProjectID).
			Msg("Readiness assessment failed")
		writeError(w, http.StatusInternalServerError, "readiness assessment failed")
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

// errorResponse is the shared error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
