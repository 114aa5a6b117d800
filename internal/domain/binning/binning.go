// Package binning maps template durations onto an ordered sequence of
// contiguous, non-overlapping bins defined by an ascending edge sequence.
// Bin i covers [edge[i], edge[i+1]); the last bin is closed at both ends.
package binning

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spacing selects how FromRange distributes edges between the endpoints.
type Spacing string

// Edge spacings.
const (
	Linear Spacing = "linear"
	Log    Spacing = "log"
)

// ParseSpacing validates a spacing string from configuration.
func ParseSpacing(s string) (Spacing, error) {
	switch sp := Spacing(strings.ToLower(strings.TrimSpace(s))); sp {
	case Linear, Log:
		return sp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSpacing, s)
	}
}

// Binning is an immutable ascending edge sequence defining NumBins bins.
type Binning struct {
	edges []float64
}

// New builds a Binning from explicit edges. At least two strictly
// ascending edges are required.
func New(edges []float64) (*Binning, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 edges, got %d", ErrBadEdges, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("%w: edges not strictly ascending at index %d", ErrBadEdges, i)
		}
	}
	return &Binning{edges: append([]float64(nil), edges...)}, nil
}

// FromRange builds n bins between start and end with the given spacing.
// Log spacing requires start > 0.
func FromRange(start, end float64, n int, spacing Spacing) (*Binning, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: bin count %d", ErrBadEdges, n)
	}
	if end <= start {
		return nil, fmt.Errorf("%w: end %g not greater than start %g", ErrBadEdges, end, start)
	}
	edges := make([]float64, n+1)
	switch spacing {
	case Linear:
		step := (end - start) / float64(n)
		for i := 0; i <= n; i++ {
			edges[i] = start + float64(i)*step
		}
	case Log:
		if start <= 0 {
			return nil, fmt.Errorf("%w: log spacing requires start > 0, got %g", ErrBadEdges, start)
		}
		lstart, lend := math.Log(start), math.Log(end)
		step := (lend - lstart) / float64(n)
		for i := 0; i <= n; i++ {
			edges[i] = math.Exp(lstart + float64(i)*step)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpacing, spacing)
	}
	// Pin the endpoints so boundary cuts built from Min/Max match exactly.
	edges[0], edges[n] = start, end
	return &Binning{edges: edges}, nil
}

// NumBins returns the number of bins.
func (b *Binning) NumBins() int { return len(b.edges) - 1 }

// Min returns the lowest edge.
func (b *Binning) Min() float64 { return b.edges[0] }

// Max returns the highest edge.
func (b *Binning) Max() float64 { return b.edges[len(b.edges)-1] }

// Lower returns the lower edge of bin i.
func (b *Binning) Lower(i int) float64 { return b.edges[i] }

// Upper returns the upper edge of bin i.
func (b *Binning) Upper(i int) float64 { return b.edges[i+1] }

// Edges returns a copy of the edge sequence.
func (b *Binning) Edges() []float64 {
	return append([]float64(nil), b.edges...)
}

// IndexOf maps a value to its bin index. The edges are irregular, so
// this is a search, not arithmetic. A value outside [Min, Max] is a
// precondition violation — the driver's boundary cuts must have excluded
// it — and returns ErrOutOfRange rather than silently misbinning.
func (b *Binning) IndexOf(v float64) (int, error) {
	n := len(b.edges)
	if v < b.edges[0] || v > b.edges[n-1] {
		return 0, fmt.Errorf("%w: %g outside [%g, %g]", ErrOutOfRange, v, b.edges[0], b.edges[n-1])
	}
	if v == b.edges[n-1] {
		// Last bin is closed at the maximum edge.
		return n - 2, nil
	}
	i := sort.SearchFloat64s(b.edges, v)
	if i < n && b.edges[i] == v {
		return i, nil
	}
	return i - 1, nil
}
