package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEquivalenceTable() EquivalenceTable {
	return EquivalenceTable{
		"widget": {
			{
				Name:           "Widget A",
				Category:       "widget",
				Manufacturer:   "Acme",
				Specifications: Specifications{"size": NumberValue(10)},
			},
			{
				Name:           "Widget B",
				Category:       "widget",
				Manufacturer:   "Globex",
				Specifications: Specifications{"size": NumberValue(20)},
			},
		},
	}
}

func TestAlternativeFinder_FindAlternatives_UnknownType(t *testing.T) {
	f := NewAlternativeFinder(testEquivalenceTable(), 0.1)

	result := f.FindAlternatives(RequiredComponent{
		Name:          "Mystery Part",
		ComponentType: "flux_capacitor",
	}, 0)

	assert.False(t, result.KnownType)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, "flux_capacitor", result.ComponentType)
}

func TestAlternativeFinder_FindAlternatives_ScoresAndFilters(t *testing.T) {
	f := NewAlternativeFinder(testEquivalenceTable(), 0.1)

	required := RequiredComponent{
		Name:           "Widget A",
		ComponentType:  "widget",
		Manufacturer:   "Acme",
		Specifications: Specifications{"size": NumberValue(10)},
	}

	result := f.FindAlternatives(required, 0.5)

	require.True(t, result.KnownType)
	// Widget A: name 0.3 + category 0.3 + specs 0.4*1/1 = 1.0
	// Widget B: category 0.3 + specs 0 = 0.3, filtered by minSimilarity 0.5
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Widget A", result.Candidates[0].Descriptor.Name)
	assert.InDelta(t, 1.0, result.Candidates[0].Similarity, 1e-9)
}

func TestAlternativeFinder_FindAlternatives_OrderingDeterministic(t *testing.T) {
	f := NewAlternativeFinder(testEquivalenceTable(), 0.1)

	required := RequiredComponent{
		Name:          "Some Other Widget",
		ComponentType: "widget",
	}

	// Both candidates score category 0.3 only; ties break by name ascending.
	result := f.FindAlternatives(required, 0)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "Widget A", result.Candidates[0].Descriptor.Name)
	assert.Equal(t, "Widget B", result.Candidates[1].Descriptor.Name)
}

func TestAlternativeFinder_FindAlternatives_ManufacturerNote(t *testing.T) {
	f := NewAlternativeFinder(testEquivalenceTable(), 0.1)

	required := RequiredComponent{
		Name:           "Widget B",
		ComponentType:  "widget",
		Manufacturer:   "Acme",
		Specifications: Specifications{"size": NumberValue(20)},
	}

	result := f.FindAlternatives(required, 0.5)

	require.NotEmpty(t, result.Candidates)
	top := result.Candidates[0]
	assert.Equal(t, "Widget B", top.Descriptor.Name)
	assert.Contains(t, top.Notes[0], "different manufacturer: Globex")
}

func TestAlternativeFinder_FindAlternatives_SpecKeyUnion(t *testing.T) {
	table := EquivalenceTable{
		"pump": {
			{
				Name:     "End Suction Pump",
				Category: "pump",
				Specifications: Specifications{
					"flow_gpm": NumberValue(50),
					"head_ft":  NumberValue(80),
				},
			},
		},
	}
	f := NewAlternativeFinder(table, 0.1)

	required := RequiredComponent{
		Name:          "Inline Pump",
		ComponentType: "pump",
		Specifications: Specifications{
			"flow_gpm": NumberValue(50),
			"voltage":  NumberValue(460),
		},
	}

	result := f.FindAlternatives(required, 0)

	// Union of spec keys = {flow_gpm, head_ft, voltage}, one matching.
	// category 0.3 + specs 0.4*1/3 = 0.4333
	require.Len(t, result.Candidates, 1)
	assert.InDelta(t, 0.4333, result.Candidates[0].Similarity, 0.001)
}

func TestAlternativeFinder_FindAlternatives_CaseInsensitiveType(t *testing.T) {
	f := NewAlternativeFinder(testEquivalenceTable(), 0.1)

	result := f.FindAlternatives(RequiredComponent{
		Name:          "anything",
		ComponentType: " Widget ",
	}, 0)

	assert.True(t, result.KnownType)
}
