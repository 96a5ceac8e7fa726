// Package matching provides availability analysis over ranked match results.
package matching

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalyzerConfig configures the availability analyzer thresholds.
type AnalyzerConfig struct {
	// MinConfidence is the minimum match score kept during analysis.
	MinConfidence float64
	// AlternativeConfidence is the minimum score for the alternatives list.
	AlternativeConfidence float64
	// MaxAlternatives caps the alternatives list.
	MaxAlternatives int
	// DefaultLeadTimeDays is the lead time assumed in the procurement pipeline
	// when no candidate carries one.
	DefaultLeadTimeDays int
	// NoMatchLeadTimeDays is the delivery fallback when no match exists at all.
	NoMatchLeadTimeDays int
	// ImmediateDays and NormalDays bound the urgency classes:
	// days-until-required < ImmediateDays is immediate, < NormalDays is
	// normal, anything else is advance planning.
	ImmediateDays int
	NormalDays    int
	// MinMatchesForLowCostRisk is the distinct-match count at which cost risk
	// drops from medium to low.
	MinMatchesForLowCostRisk int
}

// DefaultAnalyzerConfig returns the default analyzer thresholds.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinConfidence:            0.7,
		AlternativeConfidence:    0.6,
		MaxAlternatives:          5,
		DefaultLeadTimeDays:      30,
		NoMatchLeadTimeDays:      60,
		ImmediateDays:            7,
		NormalDays:               30,
		MinMatchesForLowCostRisk: 3,
	}
}

// Analyzer aggregates match results into an availability verdict and urgency
// class for one component request.
type Analyzer struct {
	matcher *BatchMatcher
	config  AnalyzerConfig
	now     func() time.Time
}

// NewAnalyzer creates an analyzer over the given batch matcher.
func NewAnalyzer(matcher *BatchMatcher, config AnalyzerConfig) *Analyzer {
	if config.MinConfidence <= 0 {
		config.MinConfidence = 0.7
	}
	if config.AlternativeConfidence <= 0 {
		config.AlternativeConfidence = 0.6
	}
	if config.MaxAlternatives <= 0 {
		config.MaxAlternatives = 5
	}
	if config.DefaultLeadTimeDays <= 0 {
		config.DefaultLeadTimeDays = 30
	}
	if config.NoMatchLeadTimeDays <= 0 {
		config.NoMatchLeadTimeDays = 60
	}
	if config.ImmediateDays <= 0 {
		config.ImmediateDays = 7
	}
	if config.NormalDays <= 0 {
		config.NormalDays = 30
	}
	if config.MinMatchesForLowCostRisk <= 0 {
		config.MinMatchesForLowCostRisk = 3
	}
	return &Analyzer{
		matcher: matcher,
		config:  config,
		now:     time.Now,
	}
}

// WithClock overrides the analyzer clock. Intended for tests.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze scores the requirement against the catalog items and aggregates the
// kept matches into an AvailabilityAnalysis. A catalog with no candidate at
// minimum confidence yields requiresProcurement=true with fallback lead time,
// never an error.
func (a *Analyzer) Analyze(ctx context.Context, required RequiredComponent, items []InventoryItem) (AvailabilityAnalysis, error) {
	now := a.now()
	analysis := AvailabilityAnalysis{
		ID:               uuid.New(),
		ComponentName:    required.Name,
		RequiredQuantity: required.Quantity,
		AnalyzedAt:       now,
	}

	matches, err := a.matcher.Match(ctx, required, items, a.config.MinConfidence)
	if err != nil {
		return AvailabilityAnalysis{}, err
	}
	analysis.Matches = matches

	byID := make(map[string]InventoryItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	daysUntil := daysUntilDate(now, required.RequiredDate)
	analysis.Urgency = a.classifyUrgency(daysUntil)

	if len(matches) == 0 {
		analysis.RequiresProcurement = true
		analysis.EstimatedDelivery = now.AddDate(0, 0, a.config.NoMatchLeadTimeDays)
		analysis.Locations = []string{}
		analysis.Alternatives = []ComponentMatch{}
		analysis.Risk = RiskFlags{
			Availability: RiskLevelHigh,
			LeadTime:     leadTimeRisk(a.config.NoMatchLeadTimeDays, daysUntil),
			Cost:         RiskLevelMedium,
		}
		return analysis, nil
	}

	minLead := math.MaxInt
	locationSet := make(map[string]struct{})
	costs := make([]decimal.Decimal, 0, len(matches))
	qty := decimal.NewFromInt(int64(required.Quantity))

	for _, match := range matches {
		item, ok := byID[match.ItemID]
		if !ok {
			continue
		}
		analysis.AvailableQuantity += item.QuantityAvailable
		if item.QuantityAvailable > 0 && item.Location != "" {
			locationSet[item.Location] = struct{}{}
		}
		if item.LeadTimeDays < minLead {
			minLead = item.LeadTimeDays
		}
		costs = append(costs, decimal.NewFromFloat(item.UnitCost).Mul(qty))
	}
	if minLead == math.MaxInt {
		minLead = a.config.DefaultLeadTimeDays
	}

	analysis.IsAvailable = analysis.AvailableQuantity >= required.Quantity
	analysis.EstimatedDelivery = now.AddDate(0, 0, minLead)

	analysis.Locations = make([]string, 0, len(locationSet))
	for loc := range locationSet {
		analysis.Locations = append(analysis.Locations, loc)
	}
	sort.Strings(analysis.Locations)

	analysis.Alternatives = topAlternatives(matches, a.config.AlternativeConfidence, a.config.MaxAlternatives)
	analysis.Cost = costStats(costs)

	analysis.Risk = RiskFlags{
		Availability: availabilityRisk(analysis.IsAvailable),
		LeadTime:     leadTimeRisk(minLead, daysUntil),
		Cost:         costRisk(len(matches), a.config.MinMatchesForLowCostRisk),
	}

	return analysis, nil
}

// classifyUrgency maps days-until-required onto an urgency class.
func (a *Analyzer) classifyUrgency(daysUntil int) Urgency {
	switch {
	case daysUntil < a.config.ImmediateDays:
		return UrgencyImmediate
	case daysUntil < a.config.NormalDays:
		return UrgencyNormal
	default:
		return UrgencyAdvancePlanning
	}
}

// daysUntilDate counts whole days from now to the given date.
func daysUntilDate(now, date time.Time) int {
	return int(math.Floor(date.Sub(now).Hours() / 24))
}

// topAlternatives keeps matches at or above minScore, capped at limit.
// Matches arrive ranked, so the cap keeps the best candidates.
func topAlternatives(matches []ComponentMatch, minScore float64, limit int) []ComponentMatch {
	alternatives := make([]ComponentMatch, 0, limit)
	for _, match := range matches {
		if match.Score < minScore {
			continue
		}
		alternatives = append(alternatives, match)
		if len(alternatives) == limit {
			break
		}
	}
	return alternatives
}

// costStats computes min/max/average over per-candidate total costs; optimal
// is the minimum cost.
func costStats(costs []decimal.Decimal) CostStats {
	if len(costs) == 0 {
		return CostStats{}
	}

	stats := CostStats{Min: costs[0], Max: costs[0]}
	sum := decimal.Zero
	for _, cost := range costs {
		if cost.LessThan(stats.Min) {
			stats.Min = cost
		}
		if cost.GreaterThan(stats.Max) {
			stats.Max = cost
		}
		sum = sum.Add(cost)
	}
	stats.Average = sum.Div(decimal.NewFromInt(int64(len(costs))))
	stats.Optimal = stats.Min
	return stats
}

func availabilityRisk(isAvailable bool) RiskLevel {
	if !isAvailable {
		return RiskLevelHigh
	}
	return RiskLevelLow
}

// leadTimeRisk is high when the minimum lead time meets or exceeds the days
// remaining before the component is required.
func leadTimeRisk(minLeadDays, daysUntil int) RiskLevel {
	if minLeadDays >= daysUntil {
		return RiskLevelHigh
	}
	return RiskLevelLow
}

func costRisk(matchCount, minForLow int) RiskLevel {
	if matchCount < minForLow {
		return RiskLevelMedium
	}
	return RiskLevelLow
}
