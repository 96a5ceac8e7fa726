// Package matching provides procurement criticality, priority, ordering
// windows and batch sequencing.
package matching

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrioritizerConfig configures the procurement prioritizer thresholds.
type PrioritizerConfig struct {
	// BlockingDependencyCount is the dependency count above which a component
	// is blocking.
	BlockingDependencyCount int
	// CriticalBufferDays and HighBufferDays bound the blocking/critical-path
	// priority rule; HighBufferDays and MediumBufferDays bound the important
	// rule.
	CriticalBufferDays int
	HighBufferDays     int
	MediumBufferDays   int
	// CriticalOrderBufferDays pads the order window for blocking and
	// critical-path components; StandardOrderBufferDays pads the rest.
	CriticalOrderBufferDays int
	StandardOrderBufferDays int
	// WindowDays is the span between earliest and latest order date.
	WindowDays int
	// DefaultLeadTimeDays is assumed when an analysis produced no candidate.
	DefaultLeadTimeDays int
}

// DefaultPrioritizerConfig returns the default prioritizer thresholds.
func DefaultPrioritizerConfig() PrioritizerConfig {
	return PrioritizerConfig{
		BlockingDependencyCount: 3,
		CriticalBufferDays:      7,
		HighBufferDays:          14,
		MediumBufferDays:        30,
		CriticalOrderBufferDays: 7,
		StandardOrderBufferDays: 3,
		WindowDays:              14,
		DefaultLeadTimeDays:     30,
	}
}

// Prioritizer maps criticality, timeline buffer and availability risk onto
// procurement priority and ordering windows.
type Prioritizer struct {
	config PrioritizerConfig
	now    func() time.Time
}

// NewPrioritizer creates a prioritizer with the given thresholds.
func NewPrioritizer(config PrioritizerConfig) *Prioritizer {
	def := DefaultPrioritizerConfig()
	if config.BlockingDependencyCount <= 0 {
		config.BlockingDependencyCount = def.BlockingDependencyCount
	}
	if config.CriticalBufferDays <= 0 {
		config.CriticalBufferDays = def.CriticalBufferDays
	}
	if config.HighBufferDays <= 0 {
		config.HighBufferDays = def.HighBufferDays
	}
	if config.MediumBufferDays <= 0 {
		config.MediumBufferDays = def.MediumBufferDays
	}
	if config.CriticalOrderBufferDays <= 0 {
		config.CriticalOrderBufferDays = def.CriticalOrderBufferDays
	}
	if config.StandardOrderBufferDays <= 0 {
		config.StandardOrderBufferDays = def.StandardOrderBufferDays
	}
	if config.WindowDays <= 0 {
		config.WindowDays = def.WindowDays
	}
	if config.DefaultLeadTimeDays <= 0 {
		config.DefaultLeadTimeDays = def.DefaultLeadTimeDays
	}
	return &Prioritizer{config: config, now: time.Now}
}

// WithClock overrides the prioritizer clock. Intended for tests.
func (p *Prioritizer) WithClock(now func() time.Time) *Prioritizer {
	p.now = now
	return p
}

// AssessCriticality classifies a component by dependency fan-out and
// critical-path membership.
func (p *Prioritizer) AssessCriticality(dependencyCount int, onCriticalPath bool) Criticality {
	switch {
	case dependencyCount > p.config.BlockingDependencyCount:
		return CriticalityBlocking
	case onCriticalPath:
		return CriticalityCriticalPath
	case dependencyCount > 0:
		return CriticalityImportant
	default:
		return CriticalityOptional
	}
}

// CalculatePriority derives the procurement priority from criticality, the
// timeline buffer (days until required minus lead time) and availability risk.
// A blocking or critical-path component with a comfortable buffer falls
// through to the important rule rather than staying elevated.
func (p *Prioritizer) CalculatePriority(criticality Criticality, requiredDate time.Time, leadTimeDays int, availabilityRisk RiskLevel) Priority {
	buffer := daysUntilDate(p.now(), requiredDate) - leadTimeDays

	if criticality == CriticalityBlocking || criticality == CriticalityCriticalPath {
		if buffer < p.config.CriticalBufferDays || availabilityRisk == RiskLevelHigh {
			return PriorityCritical
		}
		if buffer < p.config.HighBufferDays {
			return PriorityHigh
		}
		return p.importantPriority(buffer)
	}

	if criticality == CriticalityImportant {
		return p.importantPriority(buffer)
	}

	return PriorityLow
}

func (p *Prioritizer) importantPriority(buffer int) Priority {
	if buffer < p.config.HighBufferDays {
		return PriorityHigh
	}
	if buffer < p.config.MediumBufferDays {
		return PriorityMedium
	}
	return PriorityLow
}

// Window derives the procurement ordering window. The latest order date backs
// off from the required date by lead time plus a criticality-dependent pad.
func (p *Prioritizer) Window(criticality Criticality, requiredDate time.Time, leadTimeDays int) ProcurementWindow {
	pad := p.config.StandardOrderBufferDays
	if criticality == CriticalityBlocking || criticality == CriticalityCriticalPath {
		pad = p.config.CriticalOrderBufferDays
	}
	latest := requiredDate.AddDate(0, 0, -(leadTimeDays + pad))
	return ProcurementWindow{
		LatestOrderDate:   latest,
		EarliestOrderDate: latest.AddDate(0, 0, -p.config.WindowDays),
	}
}

// BuildItem derives a full ProcurementItem from a requirement and its
// availability analysis.
func (p *Prioritizer) BuildItem(component RequiredComponent, analysis AvailabilityAnalysis) ProcurementItem {
	leadDays := p.config.DefaultLeadTimeDays
	if !analysis.RequiresProcurement {
		leadDays = daysUntilDate(analysis.AnalyzedAt, analysis.EstimatedDelivery)
	}

	criticality := p.AssessCriticality(component.DependencyCount, component.OnCriticalPath)
	return ProcurementItem{
		Component:     component,
		Analysis:      analysis,
		Criticality:   criticality,
		Priority:      p.CalculatePriority(criticality, component.RequiredDate, leadDays, analysis.Risk.Availability),
		LeadTimeDays:  leadDays,
		EstimatedCost: analysis.Cost.Optimal,
		Window:        p.Window(criticality, component.RequiredDate, leadDays),
	}
}

// Sequence orders a batch of procurement items by priority severity, then
// required date ascending, then estimated cost descending. The tuple fully
// determines the order; insertion order never does.
func Sequence(items []ProcurementItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority.severityRank() < items[j].Priority.severityRank()
		}
		if !items[i].Component.RequiredDate.Equal(items[j].Component.RequiredDate) {
			return items[i].Component.RequiredDate.Before(items[j].Component.RequiredDate)
		}
		if !items[i].EstimatedCost.Equal(items[j].EstimatedCost) {
			return items[i].EstimatedCost.GreaterThan(items[j].EstimatedCost)
		}
		return items[i].Component.Name < items[j].Component.Name
	})
}

// BuildPurchaseOrder derives a purchase-order document from a procurement item
// and a chosen supplier. It is a pure function and carries no core state.
func BuildPurchaseOrder(item ProcurementItem, supplierID string) PurchaseOrder {
	unitCost := decimal.Zero
	if item.Component.Quantity > 0 {
		unitCost = item.EstimatedCost.Div(decimal.NewFromInt(int64(item.Component.Quantity)))
	}

	line := PurchaseOrderLine{
		ComponentName: item.Component.Name,
		Quantity:      item.Component.Quantity,
		UnitCost:      unitCost,
		LineTotal:     item.EstimatedCost,
	}

	return PurchaseOrder{
		ID:               uuid.New(),
		SupplierID:       supplierID,
		Lines:            []PurchaseOrderLine{line},
		Total:            item.EstimatedCost,
		RequiredDelivery: item.Component.RequiredDate,
		Priority:         item.Priority,
		CreatedAt:        time.Now(),
	}
}
