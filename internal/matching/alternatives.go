// Package matching provides substitute component discovery through the
// equivalence table.
package matching

import (
	"fmt"
	"sort"
	"strings"
)

// Similarity stage weights for alternative candidates.
const (
	weightAltName     = 0.3
	weightAltCategory = 0.3
	weightAltSpecs    = 0.4
)

// AlternativeCandidate is one substitute suggestion with its similarity score.
type AlternativeCandidate struct {
	Descriptor AlternativeDescriptor `json:"descriptor"`
	Similarity float64               `json:"similarity"`
	Notes      []string              `json:"notes,omitempty"`
}

// AlternativeResult is the outcome of an alternative lookup. An unknown
// component type yields KnownType=false and no candidates, never an error.
type AlternativeResult struct {
	ComponentType string                 `json:"component_type"`
	KnownType     bool                   `json:"known_type"`
	Candidates    []AlternativeCandidate `json:"candidates"`
}

// AlternativeFinder looks up substitutes via the equivalence table and scores
// their similarity to the requirement.
type AlternativeFinder struct {
	equivalence EquivalenceTable
	tolerance   float64
}

// NewAlternativeFinder creates a finder over the given equivalence table.
func NewAlternativeFinder(equivalence EquivalenceTable, tolerance float64) *AlternativeFinder {
	if equivalence == nil {
		equivalence = buildEquivalenceTable()
	}
	if tolerance <= 0 {
		tolerance = 0.1
	}
	return &AlternativeFinder{equivalence: equivalence, tolerance: tolerance}
}

// FindAlternatives returns substitutes for the component's type, filtered by
// minimum similarity and ordered by similarity descending. Ties order by
// candidate name ascending so output is deterministic.
func (f *AlternativeFinder) FindAlternatives(required RequiredComponent, minSimilarity float64) AlternativeResult {
	result := AlternativeResult{ComponentType: required.ComponentType}

	descriptors, ok := f.equivalence[strings.ToLower(strings.TrimSpace(required.ComponentType))]
	if !ok {
		return result
	}
	result.KnownType = true

	for _, desc := range descriptors {
		similarity := f.similarity(required, desc)
		if similarity < minSimilarity {
			continue
		}

		candidate := AlternativeCandidate{
			Descriptor: desc,
			Similarity: clamp01(similarity),
		}
		if !strings.EqualFold(desc.Manufacturer, required.Manufacturer) && required.Manufacturer != "" {
			candidate.Notes = append(candidate.Notes,
				fmt.Sprintf("different manufacturer: %s", desc.Manufacturer))
		}
		candidate.Notes = append(candidate.Notes,
			fmt.Sprintf("%.0f%% similar to requirement", candidate.Similarity*100))

		result.Candidates = append(result.Candidates, candidate)
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		if result.Candidates[i].Similarity != result.Candidates[j].Similarity {
			return result.Candidates[i].Similarity > result.Candidates[j].Similarity
		}
		return result.Candidates[i].Descriptor.Name < result.Candidates[j].Descriptor.Name
	})

	return result
}

// similarity scores one descriptor: name equality, category equality, and the
// ratio of matching spec keys over the union of spec keys across both.
func (f *AlternativeFinder) similarity(required RequiredComponent, desc AlternativeDescriptor) float64 {
	score := 0.0

	if strings.EqualFold(strings.TrimSpace(required.Name), strings.TrimSpace(desc.Name)) {
		score += weightAltName
	}
	if required.ComponentType != "" &&
		strings.EqualFold(strings.TrimSpace(required.ComponentType), strings.TrimSpace(desc.Category)) {
		score += weightAltCategory
	}

	union := make(map[string]struct{})
	for key := range required.Specifications {
		union[key] = struct{}{}
	}
	for key := range desc.Specifications {
		union[key] = struct{}{}
	}
	if len(union) > 0 {
		matching := 0
		for key, reqVal := range required.Specifications {
			descVal, ok := desc.Specifications[key]
			if ok && specValuesMatch(reqVal, descVal, f.tolerance) {
				matching++
			}
		}
		score += weightAltSpecs * float64(matching) / float64(len(union))
	}

	return score
}
