// Package config defines the pipeline configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment sources over the defaults in Load.
// - Fatal validation happens once, before any trigger file is opened.
package config

import "fmt"

// Cut describes one threshold predicate from the configuration surface:
// keep a row iff the column compares to the threshold per Kind
// (lower, lower_inclusive, upper, upper_inclusive).
type Cut struct {
	Column    string  `koanf:"column"`
	Threshold float64 `koanf:"threshold"`
	Kind      string  `koanf:"kind"`
}

// Config contains one run's configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// InputDir is the analysis-period directory of trigger files.
	InputDir string `koanf:"input_dir"`

	// FileFilter keeps only files whose name contains this substring.
	FileFilter string `koanf:"file_filter"`

	// Output is the result-file path.
	Output string `koanf:"output"`

	// Detectors lists the detector identifiers to process.
	Detectors []string `koanf:"detectors"`

	// Ranking names the statistic derived per trigger: snr or newsnr.
	Ranking string `koanf:"ranking"`

	// FitModel names the tail model: exponential, rayleigh, or power.
	FitModel string `koanf:"fit_model"`

	// FitThreshold is the ranking value above which the tail is fit. It
	// also sets the mandatory SNR and ranking floor cuts.
	FitThreshold float64 `koanf:"fit_threshold"`

	// Cluster keeps only the single highest-ranked row per file per
	// detector before accumulation.
	Cluster bool `koanf:"cluster"`

	// BinEdges gives explicit duration bin edges. Mutually exclusive
	// with the BinStart/BinEnd/BinCount/BinSpacing group.
	BinEdges []float64 `koanf:"bin_edges"`

	// BinStart/BinEnd/BinCount/BinSpacing derive the edges instead:
	// BinCount bins between BinStart and BinEnd, spaced linear or log.
	BinStart   float64 `koanf:"bin_start"`
	BinEnd     float64 `koanf:"bin_end"`
	BinCount   int     `koanf:"bin_count"`
	BinSpacing string  `koanf:"bin_spacing"`

	// TriggerCuts and TemplateCuts are user-level cuts applied before
	// the mandatory floor cuts the driver appends.
	TriggerCuts  []Cut `koanf:"trigger_cuts"`
	TemplateCuts []Cut `koanf:"template_cuts"`

	// MetricsAddr optionally serves Prometheus metrics during the run,
	// e.g. ":9090". Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		FileFilter:   "TRIGGERS",
		Output:       "bgfit-results.sqlite",
		Detectors:    []string{"H1", "L1"},
		Ranking:      "newsnr",
		FitModel:     "exponential",
		FitThreshold: 6.0,
		BinStart:     0.07,
		BinEnd:       256.0,
		BinCount:     6,
		BinSpacing:   "log",
	}
}

// ExplicitEdges reports whether the run uses explicit bin edges rather
// than the derived start/end/count group.
func (c *Config) ExplicitEdges() bool {
	return len(c.BinEdges) > 0
}

// Validate checks the configuration surface. It covers everything that
// must fail before any file is opened: binning parameter exclusivity and
// ordering, known model/ranking/kind names, and a non-empty detector
// list. The input directory is checked separately at scan time.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%w: input_dir is required", ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", ErrInvalidConfig)
	}
	if len(c.Detectors) == 0 {
		return fmt.Errorf("%w: detectors must not be empty", ErrInvalidConfig)
	}

	rangeGiven := c.BinStart != 0 || c.BinEnd != 0 || c.BinCount != 0
	if c.ExplicitEdges() && c.explicitRange() {
		return fmt.Errorf("%w: bin_edges and bin_start/bin_end/bin_count are mutually exclusive", ErrInvalidConfig)
	}
	if !c.ExplicitEdges() {
		if !rangeGiven {
			return fmt.Errorf("%w: either bin_edges or bin_start/bin_end/bin_count is required", ErrInvalidConfig)
		}
		if c.BinEnd <= c.BinStart {
			return fmt.Errorf("%w: bin_end %g must be greater than bin_start %g", ErrInvalidConfig, c.BinEnd, c.BinStart)
		}
		if c.BinCount < 1 {
			return fmt.Errorf("%w: bin_count %d must be at least 1", ErrInvalidConfig, c.BinCount)
		}
	}
	return nil
}

// explicitRange reports whether the user overrode any of the derived
// binning parameters away from the defaults.
func (c *Config) explicitRange() bool {
	d := New()
	return c.BinStart != d.BinStart || c.BinEnd != d.BinEnd ||
		c.BinCount != d.BinCount || c.BinSpacing != d.BinSpacing
}
