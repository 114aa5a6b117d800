// Package ranking derives the single-detector ranking statistic from raw
// trigger columns. The statistic is a real-valued score, larger meaning
// more significant; the same values are used both for threshold cuts and
// as the tail-fit input.
package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/bgfit/internal/domain/table"
)

// EffectiveChisqDOF is the fixed effective chi-squared degrees of freedom
// applied to every trigger. Raw files store a reduced chi-squared value;
// with dof = 1.5 the standard relation
//
//	non_reduced = reduced * (2*dof - 2)
//
// reconstructs the non-reduced value exactly. This constant is
// domain-fixed, not configurable.
const EffectiveChisqDOF = 1.5

// Name selects a ranking formula.
type Name string

// Known ranking statistics.
const (
	// SNR passes the matched-filter signal-to-noise ratio through
	// unchanged.
	SNR Name = "snr"
	// NewSNR penalizes triggers whose reduced chi-squared exceeds unity:
	// snr / ((1 + rchisq^3)/2)^(1/6), and equals snr otherwise.
	NewSNR Name = "newsnr"
)

// Parse validates a ranking name from configuration.
func Parse(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case SNR, NewSNR:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRanking, s)
	}
}

// NonReducedChisq reconstructs the non-reduced chi-squared from the
// reduced value stored in trigger files, using EffectiveChisqDOF.
func NonReducedChisq(reduced float64) float64 {
	return reduced * (2*EffectiveChisqDOF - 2)
}

// Derive computes one ranking value per row of t using the named
// formula. The result never exceeds the snr column value, which is why
// the driver can order an SNR floor cut ahead of the ranking floor as a
// cheap pre-filter.
func Derive(t *table.Table, name Name) ([]float64, error) {
	snr, ok := t.Column(table.ColSNR)
	if !ok {
		return nil, fmt.Errorf("%w: %q", table.ErrMissingColumn, table.ColSNR)
	}

	switch name {
	case SNR:
		return append([]float64(nil), snr...), nil
	case NewSNR:
		reduced, ok := t.Column(table.ColChisq)
		if !ok {
			return nil, fmt.Errorf("%w: %q", table.ErrMissingColumn, table.ColChisq)
		}
		out := make([]float64, len(snr))
		for i := range snr {
			chisq := NonReducedChisq(reduced[i])
			rchisq := chisq / (2*EffectiveChisqDOF - 2)
			out[i] = newSNR(snr[i], rchisq)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRanking, name)
	}
}

func newSNR(snr, rchisq float64) float64 {
	if rchisq <= 1 {
		return snr
	}
	return snr / math.Pow((1+rchisq*rchisq*rchisq)/2, 1.0/6.0)
}
