package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultAggregatorConfig()).WithClock(func() time.Time { return testNow })
}

func readyAnalysis(name string, leadDays int) AvailabilityAnalysis {
	return AvailabilityAnalysis{
		ComponentName:     name,
		RequiredQuantity:  10,
		AvailableQuantity: 10,
		IsAvailable:       true,
		Urgency:           UrgencyNormal,
		AnalyzedAt:        testNow,
		EstimatedDelivery: testNow.AddDate(0, 0, leadDays),
		Cost: CostStats{
			Average: decimal.NewFromInt(1000),
			Optimal: decimal.NewFromInt(900),
		},
	}
}

func atRiskAnalysis(name string) AvailabilityAnalysis {
	return AvailabilityAnalysis{
		ComponentName:     name,
		RequiredQuantity:  10,
		AvailableQuantity: 2,
		IsAvailable:       false,
		Urgency:           UrgencyImmediate,
		AnalyzedAt:        testNow,
		EstimatedDelivery: testNow.AddDate(0, 0, 14),
	}
}

func pendingAnalysis(name string, leadDays int) AvailabilityAnalysis {
	return AvailabilityAnalysis{
		ComponentName:     name,
		RequiredQuantity:  10,
		AvailableQuantity: 0,
		IsAvailable:       false,
		Urgency:           UrgencyAdvancePlanning,
		AnalyzedAt:        testNow,
		EstimatedDelivery: testNow.AddDate(0, 0, leadDays),
	}
}

func TestClassifyComponent(t *testing.T) {
	assert.Equal(t, ComponentStateReady, ClassifyComponent(readyAnalysis("a", 5)))
	assert.Equal(t, ComponentStateAtRisk, ClassifyComponent(atRiskAnalysis("b")))
	assert.Equal(t, ComponentStatePending, ClassifyComponent(pendingAnalysis("c", 30)))
}

func TestAggregator_Assess_AllReady(t *testing.T) {
	g := newTestAggregator()

	assessment := g.Assess("proj-1", []AvailabilityAnalysis{
		readyAnalysis("beam", 5),
		readyAnalysis("rebar", 3),
	})

	// (100*2 + 50*0) / 2 = 100
	assert.InDelta(t, 100, assessment.Score, 1e-9)
	assert.Equal(t, ReadinessStatusReady, assessment.Status)
	assert.Equal(t, 2, assessment.ReadyCount)
	assert.Zero(t, assessment.PendingCount)
	assert.Zero(t, assessment.AtRiskCount)
	// 2 ready >= 0.7 * 2
	assert.Equal(t, CriticalPathClear, assessment.CriticalPathStatus)
	// start = now + max lead 5 + standard buffer 3
	assert.Equal(t, testNow.AddDate(0, 0, 8), assessment.EstimatedStartDate)
	assert.Empty(t, assessment.Recommendations)
	assert.Empty(t, assessment.RiskFactors)

	// Cost rolls up average and optimal independently.
	assert.True(t, assessment.Cost.Total.Equal(decimal.NewFromInt(2000)))
	assert.True(t, assessment.Cost.Optimal.Equal(decimal.NewFromInt(1800)))
}

func TestAggregator_Assess_MixedReadyAndAtRisk(t *testing.T) {
	g := newTestAggregator()

	assessment := g.Assess("proj-2", []AvailabilityAnalysis{
		readyAnalysis("beam", 5),
		atRiskAnalysis("hvac unit"),
	})

	// (100*1 + 50*0) / 2 = 50
	assert.InDelta(t, 50, assessment.Score, 1e-9)
	assert.Equal(t, ReadinessStatusNotReady, assessment.Status)
	assert.Equal(t, 1, assessment.AtRiskCount)
	// 1 ready < 0.7 * 2
	assert.Equal(t, CriticalPathBlocked, assessment.CriticalPathStatus)
	// start = now + max lead 14 + at-risk buffer 7
	assert.Equal(t, testNow.AddDate(0, 0, 21), assessment.EstimatedStartDate)

	require.Len(t, assessment.RiskFactors, 1)
	assert.Contains(t, assessment.RiskFactors[0], "hvac unit")
	assert.Contains(t, assessment.RiskFactors[0], "short by 8 units")

	// Expedite, begin-now, and critical-path rules all fire.
	assert.Contains(t, assessment.Recommendations, "expedite procurement for 1 at-risk component(s)")
	assert.Contains(t, assessment.Recommendations, "begin procurement now to avoid schedule slip")
	assert.Contains(t, assessment.Recommendations, "focus on critical path components first")
}

func TestAggregator_Assess_ReadyAndPendingIsPartial(t *testing.T) {
	g := newTestAggregator()

	assessment := g.Assess("proj-3", []AvailabilityAnalysis{
		readyAnalysis("beam", 5),
		pendingAnalysis("pump", 30),
	})

	// (100*1 + 50*1) / 2 = 75
	assert.InDelta(t, 75, assessment.Score, 1e-9)
	assert.Equal(t, ReadinessStatusPartial, assessment.Status)
	assert.Equal(t, 1, assessment.PendingCount)
	assert.Contains(t, assessment.Recommendations, "confirm supplier lead times for 1 pending component(s)")
}

func TestAggregator_Assess_StatusThresholds(t *testing.T) {
	g := newTestAggregator()

	// 9 ready + 1 pending: (900 + 50) / 10 = 95 -> ready
	analyses := make([]AvailabilityAnalysis, 0, 10)
	for i := 0; i < 9; i++ {
		analyses = append(analyses, readyAnalysis("c", 1))
	}
	analyses = append(analyses, pendingAnalysis("p", 10))

	assessment := g.Assess("proj-4", analyses)
	assert.InDelta(t, 95, assessment.Score, 1e-9)
	assert.Equal(t, ReadinessStatusReady, assessment.Status)

	// 2 ready + 8 pending: (200 + 400) / 10 = 60 -> partial at the boundary
	analyses = analyses[:0]
	for i := 0; i < 2; i++ {
		analyses = append(analyses, readyAnalysis("c", 1))
	}
	for i := 0; i < 8; i++ {
		analyses = append(analyses, pendingAnalysis("p", 10))
	}

	assessment = g.Assess("proj-4", analyses)
	assert.InDelta(t, 60, assessment.Score, 1e-9)
	assert.Equal(t, ReadinessStatusPartial, assessment.Status)
}

func TestAggregator_Assess_EmptyProject(t *testing.T) {
	g := newTestAggregator()

	assessment := g.Assess("proj-5", nil)

	assert.Zero(t, assessment.Score)
	assert.Equal(t, ReadinessStatusNotReady, assessment.Status)
	assert.Equal(t, CriticalPathBlocked, assessment.CriticalPathStatus)
	assert.Equal(t, testNow.AddDate(0, 0, 3), assessment.EstimatedStartDate)
}
