// Package matching provides tolerance-based compatibility validation.
package matching

import (
	"fmt"
	"sort"
	"strings"
)

// Validator checks dimensional, performance, and standards compatibility
// between a requirement and an available item.
type Validator struct {
	tolerance float64
}

// NewValidator creates a validator with the given default tolerance.
func NewValidator(tolerance float64) *Validator {
	if tolerance <= 0 {
		tolerance = 0.1
	}
	return &Validator{tolerance: tolerance}
}

// ValidateDimensions checks every required dimension against the available
// map. A key absent from available is "missing"; a deviation above tolerance
// is "incompatible"; either makes the overall result incompatible.
func (v *Validator) ValidateDimensions(required, available map[string]float64, tolerance float64) (bool, DimensionReport) {
	if tolerance <= 0 {
		tolerance = v.tolerance
	}

	report := DimensionReport{Compatible: true}

	keys := make([]string, 0, len(required))
	for key := range required {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		reqVal := required[key]
		availVal, ok := available[key]
		if !ok {
			report.Compatible = false
			report.Checks = append(report.Checks, DimensionCheck{
				Key:      key,
				Required: reqVal,
				Status:   DimensionStatusMissing,
			})
			continue
		}

		check := DimensionCheck{
			Key:       key,
			Required:  reqVal,
			Available: availVal,
		}

		dev, divisible := relativeDeviation(reqVal, availVal)
		if !divisible {
			// Required 0 matches only an available value of exactly 0.
			if availVal == 0 {
				check.Status = DimensionStatusCompatible
			} else {
				check.Status = DimensionStatusIncompatible
				report.Compatible = false
			}
			report.Checks = append(report.Checks, check)
			continue
		}

		check.DeviationPct = dev * 100
		if dev <= tolerance {
			check.Status = DimensionStatusCompatible
		} else {
			check.Status = DimensionStatusIncompatible
			report.Compatible = false
		}
		report.Checks = append(report.Checks, check)
	}

	return report.Compatible, report
}

// CheckCompatibility composes the three sub-checks into per-axis flags and a
// human-readable difference list.
func (v *Validator) CheckCompatibility(required RequiredComponent, candidate InventoryItem, requiredStandards []string, tolerance float64) (CompatibilityFlags, []string) {
	flags := CompatibilityFlags{}
	var differences []string

	flags.Standards = standardsCompatible(requiredStandards, candidate.Standards)
	if !flags.Standards {
		differences = append(differences, fmt.Sprintf("missing required standards: %s",
			strings.Join(missingStandards(requiredStandards, candidate.Standards), ", ")))
	}

	dimOK, report := v.ValidateDimensions(required.Specifications.NumericOnly(), candidate.Specifications.NumericOnly(), tolerance)
	flags.Dimensions = dimOK
	for _, check := range report.Checks {
		switch check.Status {
		case DimensionStatusMissing:
			differences = append(differences, fmt.Sprintf("%s: not specified on candidate", check.Key))
		case DimensionStatusIncompatible:
			differences = append(differences, fmt.Sprintf("%s: %.4g required vs %.4g available (%.1f%% deviation)",
				check.Key, check.Required, check.Available, check.DeviationPct))
		}
	}

	perfOK, perfDiffs := performanceCompatible(required.Specifications, candidate.Specifications)
	flags.Performance = perfOK
	differences = append(differences, perfDiffs...)

	return flags, differences
}

// standardsCompatible requires the required standards to be a subset of the
// available ones; an empty required set is vacuously compatible.
func standardsCompatible(required, available []string) bool {
	return len(missingStandards(required, available)) == 0
}

func missingStandards(required, available []string) []string {
	availSet := make(map[string]struct{}, len(available))
	for _, s := range available {
		availSet[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	var missing []string
	for _, s := range required {
		if _, ok := availSet[strings.ToLower(strings.TrimSpace(s))]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// performanceCompatible is asymmetric: every required performance key must be
// present on the candidate, and numeric values must meet or exceed the
// requirement rather than merely fall within tolerance.
func performanceCompatible(required, available Specifications) (bool, []string) {
	compatible := true
	var differences []string

	keys := make([]string, 0, len(required))
	for key := range required {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		reqVal := required[key]
		availVal, ok := available[key]
		if !ok {
			compatible = false
			differences = append(differences, fmt.Sprintf("%s: missing on candidate", key))
			continue
		}
		if reqVal.Kind == SpecValueKindNumber {
			if availVal.Kind != SpecValueKindNumber || availVal.Number < reqVal.Number {
				compatible = false
				differences = append(differences, fmt.Sprintf("%s: candidate does not meet required %.4g", key, reqVal.Number))
			}
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(reqVal.Text), strings.TrimSpace(availVal.Text)) {
			compatible = false
			differences = append(differences, fmt.Sprintf("%s: %q required vs %q available", key, reqVal.Text, availVal.Text))
		}
	}

	return compatible, differences
}
