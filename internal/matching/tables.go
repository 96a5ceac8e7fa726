// Package matching provides the static lookup tables used by the scorer and
// alternative finder. Tables are injectable configuration data: they load from
// YAML and fall back to compiled-in construction defaults.
package matching

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManufacturerAliases maps a canonical manufacturer name to its known aliases.
type ManufacturerAliases map[string][]string

// Canonical resolves a manufacturer name to its canonical form,
// case-insensitively. Unknown names are returned lowercased.
func (a ManufacturerAliases) Canonical(name string) string {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	for canonical, aliases := range a {
		if strings.ToLower(canonical) == nameLower {
			return strings.ToLower(canonical)
		}
		for _, alias := range aliases {
			if strings.ToLower(alias) == nameLower {
				return strings.ToLower(canonical)
			}
		}
	}
	return nameLower
}

// AlternativeDescriptor describes a known substitute component.
type AlternativeDescriptor struct {
	Name           string         `yaml:"name" json:"name"`
	Category       string         `yaml:"category" json:"category"`
	Manufacturer   string         `yaml:"manufacturer" json:"manufacturer"`
	Specifications Specifications `yaml:"specifications" json:"specifications"`
}

// EquivalenceTable maps a component type to its known substitutes.
type EquivalenceTable map[string][]AlternativeDescriptor

// LookupTables bundles the injectable static tables.
type LookupTables struct {
	ManufacturerAliases ManufacturerAliases `yaml:"manufacturer_aliases"`
	Equivalence         EquivalenceTable    `yaml:"equivalence"`
}

// LoadLookupTables reads tables from a YAML file. An empty path returns the
// compiled-in defaults.
func LoadLookupTables(path string) (*LookupTables, error) {
	tables := DefaultLookupTables()

	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup tables: %w", err)
	}
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("parse lookup tables: %w", err)
	}
	if tables.ManufacturerAliases == nil {
		tables.ManufacturerAliases = buildManufacturerAliases()
	}
	if tables.Equivalence == nil {
		tables.Equivalence = buildEquivalenceTable()
	}
	return tables, nil
}

// DefaultLookupTables returns the compiled-in construction tables.
func DefaultLookupTables() *LookupTables {
	return &LookupTables{
		ManufacturerAliases: buildManufacturerAliases(),
		Equivalence:         buildEquivalenceTable(),
	}
}

// buildManufacturerAliases builds the default manufacturer alias map.
func buildManufacturerAliases() ManufacturerAliases {
	return ManufacturerAliases{
		"Nucor": {
			"Nucor Corporation",
			"Nucor Steel",
		},
		"ArcelorMittal": {
			"Arcelor Mittal",
			"Arcelor-Mittal",
			"AM",
		},
		"Gerdau": {
			"Gerdau Ameristeel",
			"Gerdau Long Steel",
		},
		"Carrier": {
			"Carrier Corporation",
			"Carrier HVAC",
		},
		"Trane": {
			"Trane Technologies",
			"Trane Inc",
		},
		"Grundfos": {
			"Grundfos Pumps",
			"Grundfos A/S",
		},
		"Caterpillar": {
			"CAT",
			"Caterpillar Inc",
		},
		"Simpson Strong-Tie": {
			"Simpson",
			"Simpson StrongTie",
		},
		"CEMEX": {
			"Cemex USA",
			"Cemex Construction Materials",
		},
		"Vulcan Materials": {
			"Vulcan",
			"Vulcan Materials Company",
		},
	}
}

// buildEquivalenceTable builds the default component-type equivalence table.
func buildEquivalenceTable() EquivalenceTable {
	return EquivalenceTable{
		"steel_beam": {
			{
				Name:         "Wide Flange Beam W12x26",
				Category:     "structural_steel",
				Manufacturer: "Nucor",
				Specifications: Specifications{
					"depth_in":     NumberValue(12.22),
					"weight_lb_ft": NumberValue(26),
					"grade":        TextValue("A992"),
				},
			},
			{
				Name:         "Wide Flange Beam W12x30",
				Category:     "structural_steel",
				Manufacturer: "Gerdau",
				Specifications: Specifications{
					"depth_in":     NumberValue(12.34),
					"weight_lb_ft": NumberValue(30),
					"grade":        TextValue("A992"),
				},
			},
			{
				Name:         "HSS Rectangular Tube 12x8x1/2",
				Category:     "structural_steel",
				Manufacturer: "ArcelorMittal",
				Specifications: Specifications{
					"depth_in": NumberValue(12),
					"grade":    TextValue("A500"),
				},
			},
		},
		"rebar": {
			{
				Name:         "Rebar #5 Grade 60",
				Category:     "reinforcement",
				Manufacturer: "Nucor",
				Specifications: Specifications{
					"diameter_in": NumberValue(0.625),
					"grade":       TextValue("60"),
				},
			},
			{
				Name:         "Rebar #6 Grade 60",
				Category:     "reinforcement",
				Manufacturer: "Gerdau",
				Specifications: Specifications{
					"diameter_in": NumberValue(0.75),
					"grade":       TextValue("60"),
				},
			},
		},
		"hvac_unit": {
			{
				Name:         "Rooftop Unit 10 Ton",
				Category:     "hvac",
				Manufacturer: "Carrier",
				Specifications: Specifications{
					"cooling_tons": NumberValue(10),
					"voltage":      NumberValue(460),
				},
			},
			{
				Name:         "Rooftop Unit 12.5 Ton",
				Category:     "hvac",
				Manufacturer: "Trane",
				Specifications: Specifications{
					"cooling_tons": NumberValue(12.5),
					"voltage":      NumberValue(460),
				},
			},
		},
		"pump": {
			{
				Name:         "End Suction Pump 50 GPM",
				Category:     "plumbing",
				Manufacturer: "Grundfos",
				Specifications: Specifications{
					"flow_gpm": NumberValue(50),
					"head_ft":  NumberValue(80),
				},
			},
		},
		"concrete_mix": {
			{
				Name:         "Ready Mix 4000 PSI",
				Category:     "concrete",
				Manufacturer: "CEMEX",
				Specifications: Specifications{
					"psi":        NumberValue(4000),
					"slump_in":   NumberValue(4),
					"aggregate":  TextValue("3/4 in"),
				},
			},
			{
				Name:         "Ready Mix 5000 PSI",
				Category:     "concrete",
				Manufacturer: "Vulcan Materials",
				Specifications: Specifications{
					"psi":      NumberValue(5000),
					"slump_in": NumberValue(4),
				},
			},
		},
	}
}
