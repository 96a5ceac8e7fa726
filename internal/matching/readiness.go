// Package matching provides project-level build readiness aggregation.
package matching

import (
	"fmt"
	"time"
)

// AggregatorConfig configures the readiness aggregator thresholds.
type AggregatorConfig struct {
	// ReadyThreshold and PartialThreshold map the 0-100 score onto a status.
	ReadyThreshold   float64
	PartialThreshold float64
	// CriticalPathClearRatio is the ready fraction at which the critical path
	// counts as clear.
	CriticalPathClearRatio float64
	// AtRiskBufferDays pads the estimated start when any component is at
	// risk; StandardBufferDays pads it otherwise.
	AtRiskBufferDays   int
	StandardBufferDays int
}

// DefaultAggregatorConfig returns the default aggregator thresholds.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		ReadyThreshold:         90,
		PartialThreshold:       60,
		CriticalPathClearRatio: 0.7,
		AtRiskBufferDays:       7,
		StandardBufferDays:     3,
	}
}

// Aggregator rolls per-component availability verdicts into a project-level
// readiness assessment. Status thresholds are pure functions of the score.
type Aggregator struct {
	config AggregatorConfig
	now    func() time.Time
}

// NewAggregator creates an aggregator with the given thresholds.
func NewAggregator(config AggregatorConfig) *Aggregator {
	def := DefaultAggregatorConfig()
	if config.ReadyThreshold <= 0 {
		config.ReadyThreshold = def.ReadyThreshold
	}
	if config.PartialThreshold <= 0 {
		config.PartialThreshold = def.PartialThreshold
	}
	if config.CriticalPathClearRatio <= 0 {
		config.CriticalPathClearRatio = def.CriticalPathClearRatio
	}
	if config.AtRiskBufferDays <= 0 {
		config.AtRiskBufferDays = def.AtRiskBufferDays
	}
	if config.StandardBufferDays <= 0 {
		config.StandardBufferDays = def.StandardBufferDays
	}
	return &Aggregator{config: config, now: time.Now}
}

// WithClock overrides the aggregator clock. Intended for tests.
func (g *Aggregator) WithClock(now func() time.Time) *Aggregator {
	g.now = now
	return g
}

// ClassifyComponent maps one availability verdict onto a component state:
// ready when available, at risk when procurement is immediate and stock is
// short, pending otherwise.
func ClassifyComponent(analysis AvailabilityAnalysis) ComponentState {
	if analysis.IsAvailable {
		return ComponentStateReady
	}
	if analysis.Urgency == UrgencyImmediate {
		return ComponentStateAtRisk
	}
	return ComponentStatePending
}

// Assess rolls the per-component analyses into a project assessment.
func (g *Aggregator) Assess(projectID string, analyses []AvailabilityAnalysis) BuildReadinessAssessment {
	now := g.now()
	assessment := BuildReadinessAssessment{
		ProjectID:  projectID,
		Status:     ReadinessStatusNotReady,
		AssessedAt: now,
	}

	maxLeadDays := 0
	for _, analysis := range analyses {
		switch ClassifyComponent(analysis) {
		case ComponentStateReady:
			assessment.ReadyCount++
		case ComponentStateAtRisk:
			assessment.AtRiskCount++
			assessment.RiskFactors = append(assessment.RiskFactors,
				fmt.Sprintf("%s: required immediately but short by %d units",
					analysis.ComponentName, analysis.RequiredQuantity-analysis.AvailableQuantity))
		default:
			assessment.PendingCount++
		}

		if lead := daysUntilDate(analysis.AnalyzedAt, analysis.EstimatedDelivery); lead > maxLeadDays {
			maxLeadDays = lead
		}
		assessment.Cost.Total = assessment.Cost.Total.Add(analysis.Cost.Average)
		assessment.Cost.Optimal = assessment.Cost.Optimal.Add(analysis.Cost.Optimal)
	}

	total := len(analyses)
	if total == 0 {
		assessment.CriticalPathStatus = CriticalPathBlocked
		assessment.EstimatedStartDate = now.AddDate(0, 0, g.config.StandardBufferDays)
		return assessment
	}

	assessment.Score = float64(100*assessment.ReadyCount+50*assessment.PendingCount) / float64(total)
	if assessment.Score < 0 {
		assessment.Score = 0
	}
	if assessment.Score > 100 {
		assessment.Score = 100
	}
	assessment.Status = g.status(assessment.Score)

	if float64(assessment.ReadyCount) >= g.config.CriticalPathClearRatio*float64(total) {
		assessment.CriticalPathStatus = CriticalPathClear
	} else {
		assessment.CriticalPathStatus = CriticalPathBlocked
	}

	startBuffer := g.config.StandardBufferDays
	if assessment.AtRiskCount > 0 {
		startBuffer = g.config.AtRiskBufferDays
	}
	assessment.EstimatedStartDate = now.AddDate(0, 0, maxLeadDays+startBuffer)

	assessment.Recommendations = g.recommendations(assessment)
	return assessment
}

// status maps a 0-100 score onto a readiness status.
func (g *Aggregator) status(score float64) ReadinessStatus {
	switch {
	case score >= g.config.ReadyThreshold:
		return ReadinessStatusReady
	case score >= g.config.PartialThreshold:
		return ReadinessStatusPartial
	default:
		return ReadinessStatusNotReady
	}
}

// recommendations applies the independent, non-exclusive recommendation
// rules; several can fire for the same assessment.
func (g *Aggregator) recommendations(assessment BuildReadinessAssessment) []string {
	var recs []string
	if assessment.AtRiskCount > 0 {
		recs = append(recs, fmt.Sprintf("expedite procurement for %d at-risk component(s)", assessment.AtRiskCount))
	}
	if assessment.Score < g.config.ReadyThreshold {
		recs = append(recs, "begin procurement now to avoid schedule slip")
	}
	if assessment.CriticalPathStatus == CriticalPathBlocked {
		recs = append(recs, "focus on critical path components first")
	}
	if assessment.PendingCount > 0 {
		recs = append(recs, fmt.Sprintf("confirm supplier lead times for %d pending component(s)", assessment.PendingCount))
	}
	return recs
}
