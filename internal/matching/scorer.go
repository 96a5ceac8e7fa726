// Package matching provides weighted match scoring between required
// components and catalog items.
package matching

import (
	"math"
	"sort"
	"strings"
)

// Stage weights. They sum to 1.0; each stage only contributes when matched.
const (
	weightNameExact    = 0.4
	weightNameFuzzy    = 0.3
	weightManufacturer = 0.2
	weightSpecs        = 0.4
)

// ScorerConfig configures the match scorer thresholds.
type ScorerConfig struct {
	// Tolerance is the maximum relative deviation for numeric spec fields.
	Tolerance float64
	// FuzzyOverlapThreshold is the minimum Jaccard word overlap for a fuzzy
	// name match.
	FuzzyOverlapThreshold float64
}

// DefaultScorerConfig returns the default scorer thresholds.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		Tolerance:             0.1,
		FuzzyOverlapThreshold: 0.6,
	}
}

// Scorer computes match scores and classifications between a required
// component and candidate inventory items. Scoring is pure computation: a
// scorer call never mutates its inputs or the catalog.
type Scorer struct {
	config  ScorerConfig
	aliases ManufacturerAliases
}

// NewScorer creates a scorer with the given thresholds and alias table.
func NewScorer(config ScorerConfig, aliases ManufacturerAliases) *Scorer {
	if config.Tolerance <= 0 {
		config.Tolerance = 0.1
	}
	if config.FuzzyOverlapThreshold <= 0 {
		config.FuzzyOverlapThreshold = 0.6
	}
	if aliases == nil {
		aliases = buildManufacturerAliases()
	}
	return &Scorer{config: config, aliases: aliases}
}

// Score computes a [0,1] match score and match type for one candidate.
// A failed name stage rejects the pair outright: no further stages run.
func (s *Scorer) Score(required RequiredComponent, candidate InventoryItem) (float64, MatchType) {
	score, matchType := s.scoreName(required.Name, candidate.Name)
	if matchType == MatchTypeNone {
		return 0, MatchTypeNone
	}

	if s.manufacturerMatches(required.Manufacturer, candidate.Manufacturer) {
		score += weightManufacturer
	}

	score += weightSpecs * s.specMatchRatio(required.Specifications, candidate.Specifications)

	return clamp01(math.Min(1.0, score)), matchType
}

// scoreName runs the required name stage.
func (s *Scorer) scoreName(required, candidate string) (float64, MatchType) {
	reqLower := strings.ToLower(strings.TrimSpace(required))
	candLower := strings.ToLower(strings.TrimSpace(candidate))

	if reqLower == candLower {
		return weightNameExact, MatchTypeExact
	}
	if s.fuzzyNameMatch(reqLower, candLower) {
		return weightNameFuzzy, MatchTypeFuzzy
	}
	return 0, MatchTypeNone
}

// fuzzyNameMatch accepts containment of one name in the other, or a Jaccard
// word overlap at or above the configured threshold.
func (s *Scorer) fuzzyNameMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return jaccardWordOverlap(a, b) >= s.config.FuzzyOverlapThreshold
}

// jaccardWordOverlap computes |A ∩ B| / |A ∪ B| over the word sets of both names.
func jaccardWordOverlap(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}

// manufacturerMatches compares manufacturers through the alias table.
func (s *Scorer) manufacturerMatches(required, candidate string) bool {
	if strings.TrimSpace(required) == "" || strings.TrimSpace(candidate) == "" {
		return false
	}
	return s.aliases.Canonical(required) == s.aliases.Canonical(candidate)
}

// specMatchRatio returns matched/total over the required spec fields.
// Zero required fields contribute nothing.
func (s *Scorer) specMatchRatio(required, candidate Specifications) float64 {
	if len(required) == 0 {
		return 0
	}

	matched := 0
	for key, reqVal := range required {
		candVal, ok := candidate[key]
		if !ok {
			continue
		}
		if specValuesMatch(reqVal, candVal, s.config.Tolerance) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// specValuesMatch compares one required spec field against a candidate field.
func specValuesMatch(required, candidate SpecValue, tolerance float64) bool {
	if required.Kind != candidate.Kind {
		return false
	}
	if required.Kind == SpecValueKindText {
		return strings.EqualFold(strings.TrimSpace(required.Text), strings.TrimSpace(candidate.Text))
	}
	dev, ok := relativeDeviation(required.Number, candidate.Number)
	if !ok {
		// Required value 0: matches only a candidate value of exactly 0.
		return candidate.Number == 0
	}
	return dev <= tolerance
}

// relativeDeviation computes |candidate − required| / required.
// ok is false when required is 0, the division-by-zero guard.
func relativeDeviation(required, candidate float64) (float64, bool) {
	if required == 0 {
		return 0, false
	}
	return math.Abs(candidate-required) / math.Abs(required), true
}

// RankMatches stably orders matches by score descending, item id ascending.
// The tie-break makes ranking deterministic regardless of input order.
func RankMatches(matches []ComponentMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ItemID < matches[j].ItemID
	})
}
