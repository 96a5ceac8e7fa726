package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultScorerConfig(), nil)
}

func TestScorer_Score_ExactFullMatch(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{
		Name:         "Wide Flange Beam W12x26",
		Manufacturer: "Nucor",
		Specifications: Specifications{
			"depth_in": NumberValue(12.22),
			"grade":    TextValue("A992"),
		},
	}
	candidate := InventoryItem{
		ID:           "inv-001",
		Name:         "Wide Flange Beam W12x26",
		Manufacturer: "Nucor Steel",
		Specifications: Specifications{
			"depth_in": NumberValue(12.22),
			"grade":    TextValue("A992"),
		},
	}

	score, matchType := s.Score(required, candidate)

	// exact name 0.4 + manufacturer via alias 0.2 + specs 0.4*2/2 = 1.0
	assert.Equal(t, MatchTypeExact, matchType)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScorer_Score_FuzzyContainment(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{Name: "Steel Beam"}
	candidate := InventoryItem{ID: "inv-002", Name: "Steel Beam W12x26"}

	score, matchType := s.Score(required, candidate)

	// fuzzy name 0.3, no manufacturer, no specs
	assert.Equal(t, MatchTypeFuzzy, matchType)
	assert.InDelta(t, 0.3, score, 1e-9)
}

func TestScorer_Score_FuzzyWordOverlap(t *testing.T) {
	s := newTestScorer()

	// word sets {rooftop, hvac, unit} vs {rooftop, unit, hvac}: Jaccard 1.0
	required := RequiredComponent{Name: "Rooftop HVAC Unit"}
	candidate := InventoryItem{ID: "inv-003", Name: "Rooftop Unit HVAC"}

	_, matchType := s.Score(required, candidate)
	assert.Equal(t, MatchTypeFuzzy, matchType)

	// {w12x26, beam} vs {wide, flange, beam, w12x26}: 2/4 = 0.5 below threshold,
	// and neither name contains the other
	required = RequiredComponent{Name: "W12x26 Beam"}
	candidate = InventoryItem{ID: "inv-004", Name: "Wide Flange Beam W12x26"}

	score, matchType := s.Score(required, candidate)
	assert.Equal(t, MatchTypeNone, matchType)
	assert.Zero(t, score)
}

func TestScorer_Score_NameFailureRejectsOutright(t *testing.T) {
	s := newTestScorer()

	// Manufacturer and specs match perfectly, but the name stage fails.
	required := RequiredComponent{
		Name:           "Concrete Mix 4000 PSI",
		Manufacturer:   "CEMEX",
		Specifications: Specifications{"psi": NumberValue(4000)},
	}
	candidate := InventoryItem{
		ID:             "inv-005",
		Name:           "Rebar #5 Grade 60",
		Manufacturer:   "CEMEX",
		Specifications: Specifications{"psi": NumberValue(4000)},
	}

	score, matchType := s.Score(required, candidate)
	assert.Equal(t, MatchTypeNone, matchType)
	assert.Zero(t, score)
}

func TestScorer_Score_SpecToleranceBoundary(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{
		Name:           "Ready Mix",
		Specifications: Specifications{"psi": NumberValue(5000)},
	}

	tests := []struct {
		name      string
		candidate float64
		want      float64
	}{
		// exact name 0.4 plus specs 0.4 * ratio
		{"identical value", 5000, 0.8},
		{"within 10 percent", 5400, 0.8},
		{"exactly at tolerance", 5500, 0.8},
		{"beyond tolerance", 4000, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := InventoryItem{
				ID:             "inv-006",
				Name:           "Ready Mix",
				Specifications: Specifications{"psi": NumberValue(tt.candidate)},
			}
			score, _ := s.Score(required, candidate)
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestScorer_Score_ZeroRequiredValueGuard(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{
		Name:           "Gasket",
		Specifications: Specifications{"clearance_mm": NumberValue(0)},
	}

	// Required 0 matches only a candidate value of exactly 0.
	zero := InventoryItem{ID: "a", Name: "Gasket", Specifications: Specifications{"clearance_mm": NumberValue(0)}}
	score, _ := s.Score(required, zero)
	assert.InDelta(t, 0.8, score, 1e-9)

	nonZero := InventoryItem{ID: "b", Name: "Gasket", Specifications: Specifications{"clearance_mm": NumberValue(0.5)}}
	score, _ = s.Score(required, nonZero)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestScorer_Score_TextSpecsCaseInsensitive(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{
		Name:           "Rebar #5",
		Specifications: Specifications{"grade": TextValue("A615")},
	}
	candidate := InventoryItem{
		ID:             "inv-007",
		Name:           "Rebar #5",
		Specifications: Specifications{"grade": TextValue(" a615 ")},
	}

	score, _ := s.Score(required, candidate)
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestScorer_Score_KindMismatchDoesNotMatch(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{
		Name:           "Pump",
		Specifications: Specifications{"flow_gpm": NumberValue(50)},
	}
	candidate := InventoryItem{
		ID:             "inv-008",
		Name:           "Pump",
		Specifications: Specifications{"flow_gpm": TextValue("50")},
	}

	score, _ := s.Score(required, candidate)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestScorer_Score_BoundedToOne(t *testing.T) {
	s := newTestScorer()

	required := RequiredComponent{
		Name:         "Item",
		Manufacturer: "Trane",
		Specifications: Specifications{
			"a": NumberValue(1),
			"b": NumberValue(2),
			"c": NumberValue(3),
		},
	}
	candidate := InventoryItem{
		ID:           "inv-009",
		Name:         "Item",
		Manufacturer: "Trane Technologies",
		Specifications: Specifications{
			"a": NumberValue(1),
			"b": NumberValue(2),
			"c": NumberValue(3),
		},
	}

	score, _ := s.Score(required, candidate)
	assert.LessOrEqual(t, score, 1.0)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestRelativeDeviation_ZeroGuard(t *testing.T) {
	dev, ok := relativeDeviation(100, 90)
	assert.True(t, ok)
	assert.InDelta(t, 0.1, dev, 1e-9)

	_, ok = relativeDeviation(0, 5)
	assert.False(t, ok)
}

func TestRankMatches_Deterministic(t *testing.T) {
	matches := []ComponentMatch{
		{ItemID: "c", Score: 0.8},
		{ItemID: "a", Score: 0.9},
		{ItemID: "b", Score: 0.8},
	}

	RankMatches(matches)

	assert.Equal(t, "a", matches[0].ItemID)
	assert.Equal(t, "b", matches[1].ItemID)
	assert.Equal(t, "c", matches[2].ItemID)
}
