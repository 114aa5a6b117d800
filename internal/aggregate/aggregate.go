// Package aggregate accumulates filtered, ranked trigger tables across
// input files into one growing table per detector, with live-time
// bookkeeping and optional per-file clustering. Accumulation is
// append-only and commutative: file order affects row order only, which
// nothing downstream depends on.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/bgfit/internal/domain/table"
	"github.com/okian/bgfit/pkg/metrics"
)

// Accumulator holds the growing state for one detector: the accumulated
// trigger table and the running live-time total in seconds. It is
// created lazily on the detector's first data and finalized read-only
// once all files are processed.
type Accumulator struct {
	Detector string
	Table    *table.Table
	LiveTime int64
}

// Set owns the per-detector accumulators for one run. It is not safe for
// concurrent use; the pipeline is strictly sequential over files.
type Set struct {
	accs    map[string]*Accumulator
	cluster bool
}

// Option applies a configuration option to the Set.
type Option func(*Set)

// WithClustering keeps only the single highest-ranked row per appended
// batch. The scope is per-file-per-detector: rows accumulated from
// earlier files are never revisited.
func WithClustering(enabled bool) Option {
	return func(s *Set) {
		s.cluster = enabled
	}
}

// NewSet creates an empty accumulator set.
func NewSet(opts ...Option) *Set {
	s := &Set{accs: make(map[string]*Accumulator)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Set) acc(detector string) *Accumulator {
	a, ok := s.accs[detector]
	if !ok {
		a = &Accumulator{Detector: detector, Table: table.New()}
		s.accs[detector] = a
	}
	return a
}

// AddLiveTime credits analyzed seconds to the detector. Live time
// reflects analyzed duration, not trigger yield, so it is added even
// when a file contributes no surviving triggers.
func (s *Set) AddLiveTime(detector string, seconds int64) {
	s.acc(detector).LiveTime += seconds
	metrics.AddLiveTime(detector, seconds)
}

// Append accumulates a filtered trigger table that already carries the
// ranking column. With clustering enabled the batch is first reduced to
// its single highest-ranked row, ties broken by first occurrence.
// Appending has no implicit deduplication: accumulating the same table
// twice doubles the row count.
func (s *Set) Append(detector string, t *table.Table) error {
	if t.Rows() == 0 {
		return nil
	}
	if s.cluster {
		stat, ok := t.Column(table.ColStat)
		if !ok {
			return fmt.Errorf("%w: %q", table.ErrMissingColumn, table.ColStat)
		}
		best := 0
		for i, v := range stat {
			if v > stat[best] {
				best = i
			}
		}
		t = t.Select([]int{best})
	}
	if err := s.acc(detector).Table.Append(t); err != nil {
		return fmt.Errorf("accumulate %s: %w", detector, err)
	}
	metrics.RecordTriggersAccumulated(detector, t.Rows())
	return nil
}

// Detectors returns the detectors with any accumulated state, sorted.
func (s *Set) Detectors() []string {
	names := make([]string, 0, len(s.accs))
	for name := range s.accs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the accumulator for a detector, or false if the detector
// never contributed data.
func (s *Set) Get(detector string) (*Accumulator, bool) {
	a, ok := s.accs[detector]
	return a, ok
}
