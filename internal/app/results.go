package app

import (
	"github.com/okian/bgfit/internal/domain/binning"
	"github.com/okian/bgfit/internal/domain/table"
)

// Sentinel values marking a duration bin with zero surviving triggers,
// distinguishing "no fit attempted" from a valid fit on data.
const (
	EmptyBinCount int64   = -1
	EmptyBinCoeff float64 = -1
)

// DetectorResult holds one detector's finalized output: the accumulated
// trigger table, live time, and one (count, fit coefficient) pair per
// duration bin.
type DetectorResult struct {
	Detector  string
	LiveTime  int64
	Counts    []int64
	FitCoeffs []float64
	Triggers  *table.Table
}

// Results is the terminal state of one pipeline run, ready for
// serialization.
type Results struct {
	RunID     string
	Binning   *binning.Binning
	Cuts      []string
	Model     string
	Threshold float64
	Ranking   string
	// Order preserves the configured detector order; Detectors is keyed
	// by detector identifier.
	Order     []string
	Detectors map[string]*DetectorResult
}
