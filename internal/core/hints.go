package core

import "github.com/agnivade/levenshtein"

// maxHintDistance is the largest edit distance still offered as a hint.
const maxHintDistance = 3

// HeaderHint describes an import column that matches no field.
type HeaderHint struct {
	Column  string
	Closest string // Nearest field name, empty when nothing is close
}

// UnmatchedHeaders returns a hint for every non-blank header that is not a
// field name.
func UnmatchedHeaders(header []string, fields []FieldSpec) []HeaderHint {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Name] = struct{}{}
	}

	var hints []HeaderHint
	for _, col := range header {
		if col == "" {
			continue
		}
		if _, ok := known[col]; ok {
			continue
		}
		hints = append(hints, HeaderHint{Column: col, Closest: closestField(col, fields)})
	}
	return hints
}

func closestField(col string, fields []FieldSpec) string {
	best := ""
	bestDist := maxHintDistance + 1
	for _, f := range fields {
		d := levenshtein.ComputeDistance(col, f.Name)
		if d < bestDist {
			best, bestDist = f.Name, d
		}
	}
	return best
}
