// Package matching provides dimension string normalization into canonical units.
package matching

import (
	"regexp"
	"strconv"
)

// Canonical unit keys produced by the normalizer.
const (
	UnitFeet        = "feet"
	UnitInches      = "inches"
	UnitMeters      = "meters"
	UnitCentimeters = "centimeters"
)

// Unit conversion constants.
const (
	MetersPerFoot     = 0.3048
	CentimetersPerInch = 2.54
)

// DimensionNormalizer parses free-form dimension strings into canonical
// numeric units. Unrecognized text is omitted from the result, never an error.
type DimensionNormalizer struct {
	feetPattern   *regexp.Regexp
	inchesPattern *regexp.Regexp
	metersPattern *regexp.Regexp
	cmPattern     *regexp.Regexp
}

// NewDimensionNormalizer creates a normalizer with the standard unit patterns.
func NewDimensionNormalizer() *DimensionNormalizer {
	return &DimensionNormalizer{
		feetPattern:   regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:feet|foot|ft\b|')`),
		inchesPattern: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:inches|inch|in\b|")`),
		metersPattern: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:meters|metres|meter|metre|m\b)`),
		cmPattern:     regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:centimeters|centimetres|centimeter|centimetre|cm\b)`),
	}
}

// Normalize parses a dimension string into a map of canonical unit keys.
// Recognized imperial values are also emitted in metric and vice versa;
// explicitly stated values win over derived ones.
func (n *DimensionNormalizer) Normalize(text string) map[string]float64 {
	result := make(map[string]float64)

	if v, ok := n.extract(n.feetPattern, text); ok {
		result[UnitFeet] = v
		result[UnitMeters] = v * MetersPerFoot
	}
	if v, ok := n.extract(n.inchesPattern, text); ok {
		result[UnitInches] = v
		result[UnitCentimeters] = v * CentimetersPerInch
	}
	if v, ok := n.extract(n.cmPattern, text); ok {
		result[UnitCentimeters] = v
		if _, has := result[UnitInches]; !has {
			result[UnitInches] = v / CentimetersPerInch
		}
	}
	if v, ok := n.extract(n.metersPattern, text); ok {
		result[UnitMeters] = v
		if _, has := result[UnitFeet]; !has {
			result[UnitFeet] = v / MetersPerFoot
		}
	}

	return result
}

// NormalizeSpecifications expands recognized dimension text values into
// derived numeric keys ("<key>_feet", "<key>_meters", ...) so the scorer can
// compare them numerically. Existing keys always win over derived ones; the
// original text value is kept.
func (n *DimensionNormalizer) NormalizeSpecifications(specs Specifications) Specifications {
	out := make(Specifications, len(specs))
	for key, val := range specs {
		out[key] = val
	}
	for key, val := range specs {
		if val.Kind != SpecValueKindText {
			continue
		}
		for unit, v := range n.Normalize(val.Text) {
			derived := key + "_" + unit
			if _, ok := out[derived]; !ok {
				out[derived] = NumberValue(v)
			}
		}
	}
	return out
}

// extract returns the first numeric capture of the pattern.
func (n *DimensionNormalizer) extract(pattern *regexp.Regexp, text string) (float64, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
