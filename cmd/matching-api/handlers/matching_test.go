package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/config"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/pkg/engine"
)

func newTestHandler(t *testing.T) *MatchingHandler {
	t.Helper()

	eng, err := engine.New(config.DefaultConfig(), observability.Nop(), nil)
	require.NoError(t, err)

	_, err = eng.ReplaceInventory([]matching.InventoryItem{
		{
			ID:                "inv-001",
			Name:              "Rebar #5 Grade 60",
			Manufacturer:      "Nucor",
			Specifications:    matching.Specifications{"grade": matching.TextValue("60")},
			QuantityAvailable: 500,
			Location:          "Yard A",
			UnitCost:          12.5,
			LeadTimeDays:      5,
		},
	})
	require.NoError(t, err)

	return NewMatchingHandler(observability.Nop(), eng)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestMatchingHandler_Match(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.Match, MatchRequest{
		Component: matching.RequiredComponent{
			Name:           "Rebar #5 Grade 60",
			Manufacturer:   "Nucor",
			Specifications: matching.Specifications{"grade": matching.TextValue("60")},
			Quantity:       100,
			RequiredDate:   time.Now().AddDate(0, 0, 30),
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "inv-001", resp.Matches[0].ItemID)
}

func TestMatchingHandler_Match_MissingName(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.Match, MatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchingHandler_Match_MalformedBody(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Match(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchingHandler_Availability(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.Availability, MatchRequest{
		Component: matching.RequiredComponent{
			Name:           "Rebar #5 Grade 60",
			Manufacturer:   "Nucor",
			Specifications: matching.Specifications{"grade": matching.TextValue("60")},
			Quantity:       100,
			RequiredDate:   time.Now().AddDate(0, 0, 30),
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var analysis matching.AvailabilityAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.IsAvailable)
	assert.Equal(t, 500, analysis.AvailableQuantity)
}

func TestMatchingHandler_AssessReadiness_RequiresProject(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.AssessReadiness, PlanRequest{
		Components: []matching.RequiredComponent{{Name: "anything"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchingHandler_PlanProcurement_RequiresComponents(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.PlanProcurement, PlanRequest{ProjectID: "proj-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchingHandler_AssessReadiness(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.AssessReadiness, PlanRequest{
		ProjectID: "proj-1",
		Components: []matching.RequiredComponent{
			{
				Name:           "Rebar #5 Grade 60",
				Manufacturer:   "Nucor",
				Specifications: matching.Specifications{"grade": matching.TextValue("60")},
				Quantity:       100,
				RequiredDate:   time.Now().AddDate(0, 0, 30),
			},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var assessment matching.BuildReadinessAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	assert.Equal(t, "proj-1", assessment.ProjectID)
	assert.Equal(t, matching.ReadinessStatusReady, assessment.Status)
}
