// Package cuts implements the declarative threshold-cut engine: ordered
// sets of (column, threshold, comparison) predicates applied to a trigger
// or template table, combined by logical AND.
package cuts

import (
	"fmt"
	"strings"

	"github.com/okian/bgfit/internal/domain/table"
)

// Kind selects the comparison a cut applies.
type Kind string

// Comparison kinds. "lower" keeps rows strictly above the threshold,
// "upper" strictly below; the _inclusive variants keep equality.
const (
	Lower          Kind = "lower"
	LowerInclusive Kind = "lower_inclusive"
	Upper          Kind = "upper"
	UpperInclusive Kind = "upper_inclusive"
)

// ParseKind validates a comparison-kind string from configuration.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Lower, LowerInclusive, Upper, UpperInclusive:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (k Kind) keep(value, threshold float64) bool {
	switch k {
	case Lower:
		return value > threshold
	case LowerInclusive:
		return value >= threshold
	case Upper:
		return value < threshold
	case UpperInclusive:
		return value <= threshold
	}
	return false
}

// symbol returns the comparison operator for human-readable cut listings.
func (k Kind) symbol() string {
	switch k {
	case Lower:
		return ">"
	case LowerInclusive:
		return ">="
	case Upper:
		return "<"
	case UpperInclusive:
		return "<="
	}
	return "?"
}

// Spec is a single threshold predicate: keep a row iff the named column's
// value compares to the threshold as Kind says.
type Spec struct {
	Column    string
	Threshold float64
	Kind      Kind
}

// String renders the cut in the form recorded in result metadata,
// e.g. "snr >= 5.5".
func (s Spec) String() string {
	return fmt.Sprintf("%s %s %g", s.Column, s.Kind.symbol(), s.Threshold)
}

// Set holds the ordered trigger-level and template-level cuts for one
// run. Cuts within each list are combined by logical AND.
type Set struct {
	Trigger  []Spec
	Template []Spec
}

// Strings returns every cut in the set, trigger cuts first, rendered for
// the run metadata.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s.Trigger)+len(s.Template))
	for _, c := range s.Trigger {
		out = append(out, c.String())
	}
	for _, c := range s.Template {
		out = append(out, c.String())
	}
	return out
}

// Apply evaluates specs against t and returns the surviving row indices
// in order, without duplicates. candidates restricts evaluation to a
// pre-filtered index subset so trigger-level and template-level cuts can
// be chained without materializing intermediate tables; nil means all
// rows. A spec naming a column absent from t fails fast with
// ErrUnknownColumn: silently dropping every row would make a typo look
// like a quiet observing period.
func Apply(t *table.Table, specs []Spec, candidates []int) ([]int, error) {
	if candidates == nil {
		candidates = make([]int, t.Rows())
		for i := range candidates {
			candidates[i] = i
		}
	}
	if len(specs) == 0 {
		return candidates, nil
	}

	cols := make([][]float64, len(specs))
	for i, spec := range specs {
		col, ok := t.Column(spec.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, spec.Column)
		}
		cols[i] = col
	}

	surviving := make([]int, 0, len(candidates))
	for _, row := range candidates {
		keep := true
		for i, spec := range specs {
			if !spec.Kind.keep(cols[i][row], spec.Threshold) {
				keep = false
				break
			}
		}
		if keep {
			surviving = append(surviving, row)
		}
	}
	return surviving, nil
}
