package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManufacturerAliases_Canonical(t *testing.T) {
	aliases := buildManufacturerAliases()

	tests := []struct {
		name string
		want string
	}{
		{"Nucor", "nucor"},
		{"nucor steel", "nucor"},
		{"NUCOR CORPORATION", "nucor"},
		{"Arcelor-Mittal", "arcelormittal"},
		{"AM", "arcelormittal"},
		{"CAT", "caterpillar"},
		{"Unknown Vendor", "unknown vendor"},
		{"  Trane Inc  ", "trane"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, aliases.Canonical(tt.name), "input %q", tt.name)
	}
}

func TestLoadLookupTables_EmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadLookupTables("")
	require.NoError(t, err)

	assert.NotEmpty(t, tables.ManufacturerAliases)
	assert.Contains(t, tables.Equivalence, "steel_beam")
	assert.Contains(t, tables.Equivalence, "concrete_mix")
}

func TestLoadLookupTables_FromYAML(t *testing.T) {
	content := `
manufacturer_aliases:
  Initech:
    - Initech Corp
    - Initech LLC
equivalence:
  fastener:
    - name: Hex Bolt 1/2"
      category: fasteners
      manufacturer: Initech
      specifications:
        diameter_in: 0.5
        grade: "8"
`
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadLookupTables(path)
	require.NoError(t, err)

	assert.Equal(t, "initech", tables.ManufacturerAliases.Canonical("Initech LLC"))

	descs, ok := tables.Equivalence["fastener"]
	require.True(t, ok)
	require.Len(t, descs, 1)
	assert.Equal(t, `Hex Bolt 1/2"`, descs[0].Name)

	// YAML numbers and quoted strings land in the right SpecValue variants.
	assert.Equal(t, NumberValue(0.5), descs[0].Specifications["diameter_in"])
	assert.Equal(t, TextValue("8"), descs[0].Specifications["grade"])
}

func TestLoadLookupTables_MissingFile(t *testing.T) {
	_, err := LoadLookupTables("/nonexistent/tables.yaml")
	assert.Error(t, err)
}

func TestLoadLookupTables_PartialFileKeepsDefaults(t *testing.T) {
	content := `
manufacturer_aliases:
  Initech:
    - Initech Corp
`
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadLookupTables(path)
	require.NoError(t, err)

	// The equivalence section was absent, so defaults fill in.
	assert.Contains(t, tables.Equivalence, "steel_beam")
	assert.Equal(t, "initech", tables.ManufacturerAliases.Canonical("Initech Corp"))
}
