// Package matching provides the component matching and scoring core:
// fuzzy catalog matching, tolerance-based compatibility validation,
// alternative discovery, availability analysis, procurement prioritization,
// and build readiness aggregation.
package matching

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchType classifies how a candidate matched a requirement.
type MatchType string

const (
	MatchTypeExact       MatchType = "exact"
	MatchTypeFuzzy       MatchType = "fuzzy"
	MatchTypeAlternative MatchType = "alternative"
	MatchTypeNone        MatchType = "none"
)

// Urgency classifies the time pressure for procuring a component.
type Urgency string

const (
	UrgencyImmediate       Urgency = "immediate"
	UrgencyNormal          Urgency = "normal"
	UrgencyAdvancePlanning Urgency = "advance_planning"
)

// Criticality ranks how essential a component is to the project timeline.
type Criticality string

const (
	CriticalityBlocking     Criticality = "blocking"
	CriticalityCriticalPath Criticality = "critical_path"
	CriticalityImportant    Criticality = "important"
	CriticalityOptional     Criticality = "optional"
)

// Priority is the procurement priority level.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// severityRank orders priorities from most to least severe for sequencing.
func (p Priority) severityRank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// RiskLevel grades a derived risk flag.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// ReadinessStatus summarizes project-level build readiness.
type ReadinessStatus string

const (
	ReadinessStatusReady    ReadinessStatus = "ready"
	ReadinessStatusPartial  ReadinessStatus = "partial"
	ReadinessStatusNotReady ReadinessStatus = "not_ready"
)

// ComponentState classifies a single component within a readiness assessment.
type ComponentState string

const (
	ComponentStateReady   ComponentState = "ready"
	ComponentStatePending ComponentState = "pending"
	ComponentStateAtRisk  ComponentState = "at_risk"
)

// CriticalPathStatus reports whether the critical path is clear or blocked.
type CriticalPathStatus string

const (
	CriticalPathClear   CriticalPathStatus = "clear"
	CriticalPathBlocked CriticalPathStatus = "blocked"
)

// DimensionStatus is the per-key outcome of a dimensional comparison.
type DimensionStatus string

const (
	DimensionStatusCompatible   DimensionStatus = "compatible"
	DimensionStatusIncompatible DimensionStatus = "incompatible"
	DimensionStatusMissing      DimensionStatus = "missing"
)

// SpecValueKind tags the variant held by a SpecValue.
type SpecValueKind string

const (
	SpecValueKindNumber SpecValueKind = "number"
	SpecValueKindText   SpecValueKind = "text"
)

// SpecValue is a tagged numeric/text specification value. Specification maps
// are validated into this union at ingestion rather than matched as untyped
// values.
type SpecValue struct {
	Kind   SpecValueKind
	Number float64
	Text   string
}

// NumberValue builds a numeric SpecValue.
func NumberValue(v float64) SpecValue {
	return SpecValue{Kind: SpecValueKindNumber, Number: v}
}

// TextValue builds a text SpecValue.
func TextValue(v string) SpecValue {
	return SpecValue{Kind: SpecValueKindText, Text: v}
}

// MarshalJSON encodes the value as a bare number or string.
func (v SpecValue) MarshalJSON() ([]byte, error) {
	if v.Kind == SpecValueKindNumber {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a bare JSON number or string.
func (v *SpecValue) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = NumberValue(num)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = TextValue(text)
		return nil
	}
	return fmt.Errorf("spec value must be a number or string: %s", string(data))
}

// UnmarshalYAML accepts a bare YAML number or string.
func (v *SpecValue) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var num float64
	if err := unmarshal(&num); err == nil {
		*v = NumberValue(num)
		return nil
	}
	var text string
	if err := unmarshal(&text); err == nil {
		*v = TextValue(text)
		return nil
	}
	return fmt.Errorf("spec value must be a number or string")
}

// Specifications maps attribute names to typed spec values.
type Specifications map[string]SpecValue

// NumericOnly returns the numeric subset of the specification map.
func (s Specifications) NumericOnly() map[string]float64 {
	out := make(map[string]float64)
	for key, val := range s {
		if val.Kind == SpecValueKindNumber {
			out[key] = val.Number
		}
	}
	return out
}

// RequiredComponent is a structured component requirement produced by the
// external extraction layer. Immutable once submitted for matching.
type RequiredComponent struct {
	Name            string         `json:"name" yaml:"name"`
	ComponentType   string         `json:"component_type,omitempty" yaml:"component_type"`
	Manufacturer    string         `json:"manufacturer,omitempty" yaml:"manufacturer"`
	Specifications  Specifications `json:"specifications" yaml:"specifications"`
	Quantity        int            `json:"quantity" yaml:"quantity"`
	RequiredDate    time.Time      `json:"required_date" yaml:"required_date"`
	DependencyCount int            `json:"dependency_count" yaml:"dependency_count"`
	OnCriticalPath  bool           `json:"on_critical_path" yaml:"on_critical_path"`
}

// InventoryItem is a catalog record owned by the inventory index. Items are
// replaced wholesale on sync, never partially mutated while in use.
type InventoryItem struct {
	ID                string         `json:"id" db:"id"`
	Name              string         `json:"name" db:"name"`
	Manufacturer      string         `json:"manufacturer" db:"manufacturer"`
	Model             string         `json:"model" db:"model"`
	Category          string         `json:"category" db:"category"`
	Specifications    Specifications `json:"specifications" db:"specifications"`
	QuantityAvailable int            `json:"quantity_available" db:"quantity_available"`
	Location          string         `json:"location" db:"location"`
	UnitCost          float64        `json:"unit_cost" db:"unit_cost"`
	LeadTimeDays      int            `json:"lead_time_days" db:"lead_time_days"`
	Supplier          string         `json:"supplier" db:"supplier"`
	Standards         []string       `json:"standards" db:"standards"`
}

// Validate checks the invariants the index requires before publishing an item.
func (it InventoryItem) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("inventory item missing id")
	}
	if it.QuantityAvailable < 0 {
		return fmt.Errorf("item %s: quantity_available must be >= 0", it.ID)
	}
	if it.UnitCost < 0 {
		return fmt.Errorf("item %s: unit_cost must be >= 0", it.ID)
	}
	if it.LeadTimeDays < 0 {
		return fmt.Errorf("item %s: lead_time_days must be >= 0", it.ID)
	}
	return nil
}

// CompatibilityFlags records per-axis compatibility outcomes for a match.
type CompatibilityFlags struct {
	Dimensions  bool `json:"dimensions"`
	Performance bool `json:"performance"`
	Standards   bool `json:"standards"`
}

// ComponentMatch is the immutable result of one match attempt.
type ComponentMatch struct {
	ItemID          string             `json:"item_id"`
	Score           float64            `json:"score"`
	MatchType       MatchType          `json:"match_type"`
	Compatibility   CompatibilityFlags `json:"compatibility"`
	Differences     []string           `json:"differences,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// DimensionCheck reports a single dimensional comparison.
type DimensionCheck struct {
	Key          string          `json:"key"`
	Required     float64         `json:"required"`
	Available    float64         `json:"available,omitempty"`
	DeviationPct float64         `json:"deviation_pct"`
	Status       DimensionStatus `json:"status"`
}

// DimensionReport is the full output of a dimensional validation.
type DimensionReport struct {
	Compatible bool             `json:"compatible"`
	Checks     []DimensionCheck `json:"checks"`
}

// CostStats summarizes procurement cost across candidate matches.
// Amounts are total cost for the required quantity.
type CostStats struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Average decimal.Decimal `json:"average"`
	Optimal decimal.Decimal `json:"optimal"`
}

// RiskFlags carries the derived risk booleans of an availability analysis.
type RiskFlags struct {
	Availability RiskLevel `json:"availability"`
	LeadTime     RiskLevel `json:"lead_time"`
	Cost         RiskLevel `json:"cost"`
}

// AvailabilityAnalysis is the verdict for one analyzed component request.
type AvailabilityAnalysis struct {
	ID                  uuid.UUID        `json:"id"`
	ComponentName       string           `json:"component_name"`
	RequiredQuantity    int              `json:"required_quantity"`
	AvailableQuantity   int              `json:"available_quantity"`
	IsAvailable         bool             `json:"is_available"`
	Locations           []string         `json:"locations"`
	EstimatedDelivery   time.Time        `json:"estimated_delivery"`
	Urgency             Urgency          `json:"urgency"`
	Matches             []ComponentMatch `json:"matches"`
	Alternatives        []ComponentMatch `json:"alternatives"`
	Cost                CostStats        `json:"cost"`
	Risk                RiskFlags        `json:"risk"`
	RequiresProcurement bool             `json:"requires_procurement"`
	AnalyzedAt          time.Time        `json:"analyzed_at"`
}

// ProcurementWindow is the derived ordering window for a procurement item.
type ProcurementWindow struct {
	EarliestOrderDate time.Time `json:"earliest_order_date"`
	LatestOrderDate   time.Time `json:"latest_order_date"`
}

// ProcurementItem couples a requirement with its availability verdict and the
// derived criticality, priority and ordering window.
type ProcurementItem struct {
	Component     RequiredComponent    `json:"component"`
	Analysis      AvailabilityAnalysis `json:"analysis"`
	Criticality   Criticality          `json:"criticality"`
	Priority      Priority             `json:"priority"`
	LeadTimeDays  int                  `json:"lead_time_days"`
	EstimatedCost decimal.Decimal      `json:"estimated_cost"`
	Window        ProcurementWindow    `json:"window"`
}

// PurchaseOrderLine is a single line item on a purchase order.
type PurchaseOrderLine struct {
	ComponentName string          `json:"component_name"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// PurchaseOrder is a pure function of a ProcurementItem plus a supplier id.
// It carries no scoring-core state.
type PurchaseOrder struct {
	ID               uuid.UUID           `json:"id"`
	SupplierID       string              `json:"supplier_id"`
	Lines            []PurchaseOrderLine `json:"lines"`
	Total            decimal.Decimal     `json:"total"`
	RequiredDelivery time.Time           `json:"required_delivery"`
	Priority         Priority            `json:"priority"`
	CreatedAt        time.Time           `json:"created_at"`
}

// CostSummary aggregates component cost over a readiness assessment.
type CostSummary struct {
	Total   decimal.Decimal `json:"total"`
	Optimal decimal.Decimal `json:"optimal"`
}

// BuildReadinessAssessment rolls per-component states into a project verdict.
type BuildReadinessAssessment struct {
	ProjectID          string             `json:"project_id"`
	Score              float64            `json:"score"`
	Status             ReadinessStatus    `json:"status"`
	ReadyCount         int                `json:"ready_count"`
	PendingCount       int                `json:"pending_count"`
	AtRiskCount        int                `json:"at_risk_count"`
	CriticalPathStatus CriticalPathStatus `json:"critical_path_status"`
	RiskFactors        []string           `json:"risk_factors,omitempty"`
	Recommendations    []string           `json:"recommendations,omitempty"`
	EstimatedStartDate time.Time          `json:"estimated_start_date"`
	Cost               CostSummary        `json:"cost"`
	AssessedAt         time.Time          `json:"assessed_at"`
}

// clamp01 clamps a score or confidence to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
