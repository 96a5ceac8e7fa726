package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/cache"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/config"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/observability"
)

// stubSource serves a fixed catalog for sync tests.
type stubSource struct {
	items []matching.InventoryItem
	err   error
	calls int
}

func (s *stubSource) ListAll(ctx context.Context) ([]matching.InventoryItem, error) {
	s.calls++
	return s.items, s.err
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	client := cache.NewMemoryClient(100)
	t.Cleanup(func() { _ = client.Close() })

	eng, err := New(config.DefaultConfig(), observability.Nop(), client)
	require.NoError(t, err)
	return eng
}

func testCatalog() []matching.InventoryItem {
	return []matching.InventoryItem{
		{
			ID:                "inv-001",
			Name:              "Rebar #5 Grade 60",
			Manufacturer:      "Nucor Steel",
			Specifications:    matching.Specifications{"grade": matching.TextValue("60")},
			QuantityAvailable: 500,
			Location:          "Yard A",
			UnitCost:          12.5,
			LeadTimeDays:      5,
		},
		{
			ID:                "inv-002",
			Name:              "Wide Flange Beam W12x26",
			Manufacturer:      "Nucor",
			Specifications:    matching.Specifications{"depth_in": matching.NumberValue(12.22)},
			QuantityAvailable: 40,
			Location:          "Yard B",
			UnitCost:          480,
			LeadTimeDays:      21,
		},
	}
}

func rebarRequirement() matching.RequiredComponent {
	return matching.RequiredComponent{
		Name:           "Rebar #5 Grade 60",
		Manufacturer:   "Nucor",
		Specifications: matching.Specifications{"grade": matching.TextValue("60")},
		Quantity:       100,
		RequiredDate:   time.Now().AddDate(0, 0, 45),
	}
}

func TestEngine_Sync_PublishesSnapshot(t *testing.T) {
	eng := newTestEngine(t)

	source := &stubSource{items: testCatalog()}
	snapshot, err := eng.Sync(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snapshot.Version)
	assert.Len(t, snapshot.Items, 2)
	assert.Equal(t, 1, source.calls)
}

func TestEngine_Sync_SourceError(t *testing.T) {
	eng := newTestEngine(t)

	source := &stubSource{err: errors.New("connection refused")}
	_, err := eng.Sync(context.Background(), source)
	assert.ErrorContains(t, err, "load inventory")
}

func TestEngine_Match_AgainstSnapshot(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)

	matches, err := eng.Match(context.Background(), rebarRequirement())
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "inv-001", matches[0].ItemID)
	assert.Equal(t, matching.MatchTypeExact, matches[0].MatchType)
}

func TestEngine_Match_NormalizesUnitText(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ReplaceInventory([]matching.InventoryItem{
		{
			ID:                "inv-010",
			Name:              "Glulam Beam 24F-V4",
			Manufacturer:      "Boise Cascade",
			Specifications:    matching.Specifications{"length": matching.TextValue("3.66 meters")},
			QuantityAvailable: 12,
			Location:          "Yard C",
			UnitCost:          640,
			LeadTimeDays:      14,
		},
	})
	require.NoError(t, err)

	matches, err := eng.Match(context.Background(), matching.RequiredComponent{
		Name:           "Glulam Beam 24F-V4",
		Manufacturer:   "Boise Cascade",
		Specifications: matching.Specifications{"length": matching.TextValue("12 feet")},
		Quantity:       4,
		RequiredDate:   time.Now().AddDate(0, 0, 45),
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// The literal texts differ but both sides gain derived length_feet and
	// length_meters keys, so 2 of the 3 required fields compare numerically:
	// 0.4 name + 0.2 manufacturer + 0.4 * 2/3 specs.
	assert.Equal(t, matching.MatchTypeExact, matches[0].MatchType)
	assert.InDelta(t, 0.4+0.2+0.4*2.0/3.0, matches[0].Score, 1e-9)
}

func TestEngine_Match_EmptyCatalog(t *testing.T) {
	eng := newTestEngine(t)

	matches, err := eng.Match(context.Background(), rebarRequirement())
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEngine_Analyze_UsesCacheAcrossCalls(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)

	first, err := eng.Analyze(context.Background(), rebarRequirement())
	require.NoError(t, err)
	require.True(t, first.IsAvailable)

	// The second call serves from cache: same analysis id, same timestamp.
	second, err := eng.Analyze(context.Background(), rebarRequirement())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.AnalyzedAt.Equal(second.AnalyzedAt))
}

func TestEngine_Analyze_SyncInvalidatesCache(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)

	first, err := eng.Analyze(context.Background(), rebarRequirement())
	require.NoError(t, err)

	// A new snapshot addresses new cache keys, so analysis reruns.
	_, err = eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)

	second, err := eng.Analyze(context.Background(), rebarRequirement())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEngine_FindAlternatives_DefaultTables(t *testing.T) {
	eng := newTestEngine(t)

	result := eng.FindAlternatives(matching.RequiredComponent{
		Name:          "Steel Beam",
		ComponentType: "steel_beam",
	})

	assert.True(t, result.KnownType)
}

func TestEngine_PlanProcurement_SequencesItems(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)

	urgent := matching.RequiredComponent{
		Name:           "Wide Flange Beam W12x26",
		Specifications: matching.Specifications{"depth_in": matching.NumberValue(12.22)},
		Quantity:       10,
		RequiredDate:   time.Now().AddDate(0, 0, 25),
		OnCriticalPath: true,
	}
	relaxed := rebarRequirement()

	items, err := eng.PlanProcurement(context.Background(), []matching.RequiredComponent{relaxed, urgent})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// The critical-path beam with a 21-day lead against a 25-day deadline
	// sequences ahead of the relaxed rebar order.
	assert.Equal(t, "Wide Flange Beam W12x26", items[0].Component.Name)
	assert.Equal(t, matching.PriorityCritical, items[0].Priority)
}

func TestEngine_AssessReadiness(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)

	assessment, err := eng.AssessReadiness(context.Background(), "proj-1",
		[]matching.RequiredComponent{rebarRequirement()})
	require.NoError(t, err)

	assert.Equal(t, "proj-1", assessment.ProjectID)
	assert.InDelta(t, 100, assessment.Score, 1e-9)
	assert.Equal(t, matching.ReadinessStatusReady, assessment.Status)
}

func TestEngine_New_NilArgumentsFallBack(t *testing.T) {
	eng, err := New(nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, eng)

	// Without a cache client, analysis still works uncached.
	_, err = eng.ReplaceInventory(testCatalog())
	require.NoError(t, err)
	analysis, err := eng.Analyze(context.Background(), rebarRequirement())
	require.NoError(t, err)
	assert.True(t, analysis.IsAvailable)
}
