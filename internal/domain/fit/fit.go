// Package fit estimates the parameter of an analytic tail distribution
// from ranking-statistic values above a fixed threshold, using the
// closed-form maximum-likelihood estimator of the selected model.
package fit

import (
	"fmt"
	"math"
	"strings"
)

// Model selects a one-parameter tail distribution.
type Model string

// Supported tail models.
const (
	// Exponential fits a shifted exponential tail:
	// alpha = 1 / mean(values - threshold).
	Exponential Model = "exponential"
	// Rayleigh fits a shifted Rayleigh tail:
	// alpha = 2n / sum((values - threshold)^2).
	Rayleigh Model = "rayleigh"
	// Power fits a Pareto-style tail over values normalized by the
	// threshold, the classic Hill estimator:
	// alpha = n / sum(log(values / threshold)).
	Power Model = "power"
)

// ParseModel validates a fit-model name from configuration.
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case Exponential, Rayleigh, Power:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
}

// AboveThreshold returns the maximum-likelihood parameter for the chosen
// model together with the number of fitted values. Precondition: every
// value lies at or above threshold; callers handle the empty case with
// the count/alpha sentinel and never pass an empty slice.
//
// When every value equals the threshold exactly the estimators degrade
// to a division by zero and return +Inf (or 0 for a power fit with a
// zero threshold) rather than failing; such a fit is well defined but
// carries no information.
func AboveThreshold(model Model, values []float64, threshold float64) (alpha float64, count int, err error) {
	n := len(values)
	if n == 0 {
		return 0, 0, ErrNoValues
	}

	switch model {
	case Exponential:
		var sum float64
		for _, v := range values {
			sum += v - threshold
		}
		return float64(n) / sum, n, nil
	case Rayleigh:
		var sumsq float64
		for _, v := range values {
			d := v - threshold
			sumsq += d * d
		}
		return 2 * float64(n) / sumsq, n, nil
	case Power:
		var sumlog float64
		for _, v := range values {
			sumlog += math.Log(v / threshold)
		}
		return float64(n) / sumlog, n, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
}
