// Package app drives the background-fit pipeline: per-file filtering and
// ranking, cross-file accumulation per detector, and the final
// per-detector, per-bin tail fits.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bgfit/internal/adapters/triggerio"
	"github.com/okian/bgfit/internal/aggregate"
	"github.com/okian/bgfit/internal/config"
	"github.com/okian/bgfit/internal/domain/binning"
	"github.com/okian/bgfit/internal/domain/cuts"
	"github.com/okian/bgfit/internal/domain/fit"
	"github.com/okian/bgfit/internal/domain/ranking"
	"github.com/okian/bgfit/internal/domain/table"
	"github.com/okian/bgfit/pkg/logger"
	"github.com/okian/bgfit/pkg/metrics"
)

// Pipeline is the single-pass batch driver. It is constructed from a
// validated configuration and run once; there is no shared mutable state
// beyond the per-detector accumulators it owns.
type Pipeline struct {
	inputDir   string
	fileFilter string
	detectors  []string
	cluster    bool

	binning   *binning.Binning
	cutSet    cuts.Set
	ranking   ranking.Name
	model     fit.Model
	threshold float64

	reader triggerio.Reader
	log    logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithReader replaces the trigger-file reader. Used as a test seam.
func WithReader(r triggerio.Reader) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.reader = r
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New builds a Pipeline from a validated configuration: the duration
// binning, the resolved cut set, and the ranking and fit selections.
// Every error it returns is a configuration error, reported before any
// trigger file is opened.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	rank, err := ranking.Parse(cfg.Ranking)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	model, err := fit.ParseModel(cfg.FitModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	bins, err := buildBinning(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cutSet, err := buildCutSet(cfg, bins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	p := &Pipeline{
		inputDir:   cfg.InputDir,
		fileFilter: cfg.FileFilter,
		detectors:  append([]string(nil), cfg.Detectors...),
		cluster:    cfg.Cluster,
		binning:    bins,
		cutSet:     cutSet,
		ranking:    rank,
		model:      model,
		threshold:  cfg.FitThreshold,
		reader:     triggerio.NewJSONReader(),
		log:        logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func buildBinning(cfg *config.Config) (*binning.Binning, error) {
	if cfg.ExplicitEdges() {
		return binning.New(cfg.BinEdges)
	}
	spacing, err := binning.ParseSpacing(cfg.BinSpacing)
	if err != nil {
		return nil, err
	}
	return binning.FromRange(cfg.BinStart, cfg.BinEnd, cfg.BinCount, spacing)
}

// buildCutSet composes the run's cuts: the mandatory SNR floor ordered
// first as a cheap pre-filter (the ranking value never exceeds snr),
// user trigger cuts, the mandatory ranking floor at the fit threshold,
// and template-level duration boundary cuts against the extreme bin
// edges so the binner can never see an out-of-range value.
func buildCutSet(cfg *config.Config, bins *binning.Binning) (cuts.Set, error) {
	var set cuts.Set

	set.Trigger = append(set.Trigger, cuts.Spec{
		Column:    table.ColSNR,
		Threshold: cfg.FitThreshold,
		Kind:      cuts.LowerInclusive,
	})
	for _, c := range cfg.TriggerCuts {
		spec, err := parseCut(c)
		if err != nil {
			return cuts.Set{}, err
		}
		set.Trigger = append(set.Trigger, spec)
	}
	set.Trigger = append(set.Trigger, cuts.Spec{
		Column:    table.ColStat,
		Threshold: cfg.FitThreshold,
		Kind:      cuts.LowerInclusive,
	})

	for _, c := range cfg.TemplateCuts {
		spec, err := parseCut(c)
		if err != nil {
			return cuts.Set{}, err
		}
		set.Template = append(set.Template, spec)
	}
	set.Template = append(set.Template,
		cuts.Spec{Column: table.ColTemplateDuration, Threshold: bins.Min(), Kind: cuts.Lower},
		cuts.Spec{Column: table.ColTemplateDuration, Threshold: bins.Max(), Kind: cuts.UpperInclusive},
	)
	return set, nil
}

func parseCut(c config.Cut) (cuts.Spec, error) {
	kind, err := cuts.ParseKind(c.Kind)
	if err != nil {
		return cuts.Spec{}, err
	}
	if c.Column == "" {
		return cuts.Spec{}, fmt.Errorf("cut has empty column name")
	}
	return cuts.Spec{Column: c.Column, Threshold: c.Threshold, Kind: kind}, nil
}

// Binning returns the run's duration binning.
func (p *Pipeline) Binning() *binning.Binning { return p.binning }

// CutStrings returns the resolved cut list for the run metadata.
func (p *Pipeline) CutStrings() []string { return p.cutSet.Strings() }

// Run processes every matching file in order, then fits each detector's
// accumulated triggers per duration bin. A file that cannot be read is
// logged and skipped; the errors Run returns are fatal (unreadable input
// directory, misconfigured cuts, out-of-range binning).
func (p *Pipeline) Run(ctx context.Context) (*Results, error) {
	paths, err := p.reader.Scan(ctx, p.inputDir, p.fileFilter)
	if err != nil {
		return nil, err
	}
	p.log.Info(ctx, "scanning complete",
		logger.String("dir", p.inputDir),
		logger.Int("files", len(paths)))

	accs := aggregate.NewSet(aggregate.WithClustering(p.cluster))
	for _, path := range paths {
		if err := p.processFile(ctx, path, accs); err != nil {
			return nil, err
		}
	}

	return p.fitAll(ctx, accs)
}

// processFile runs one file through the per-detector state machine. Only
// configuration-class failures propagate; a read failure is recoverable.
func (p *Pipeline) processFile(ctx context.Context, path string, accs *aggregate.Set) error {
	f, err := p.reader.Read(ctx, path)
	if err != nil {
		p.log.Warn(ctx, "skipping file",
			logger.String("path", path),
			logger.String("state", stateUnreadable.String()),
			logger.Error(err))
		metrics.RecordFileSkipped(stateUnreadable.String())
		return nil
	}

	accumulated := false
	for _, det := range p.detectors {
		state, err := p.processGroup(ctx, f, det, accs)
		if err != nil {
			return err
		}
		if state == stateAccumulated {
			accumulated = true
		} else {
			metrics.RecordFileSkipped(state.String())
		}
	}
	if accumulated {
		metrics.RecordFileProcessed()
	}
	return nil
}

func (p *Pipeline) processGroup(ctx context.Context, f *triggerio.File, detector string, accs *aggregate.Set) (groupState, error) {
	group, ok := f.Groups[detector]
	if !ok {
		p.logSkip(ctx, f.Path, detector, stateNoRelevantGroup, 0)
		return stateNoRelevantGroup, nil
	}

	// The detector group was analyzed, so its duration counts toward
	// live time regardless of trigger yield.
	accs.AddLiveTime(detector, f.LiveTime)

	if group.Rows() == 0 {
		p.logSkip(ctx, f.Path, detector, stateEmpty, 0)
		return stateEmpty, nil
	}
	metrics.RecordTriggersRead(group.Rows())

	if err := table.TriggerSchema.Validate(group); err != nil {
		p.log.Debug(ctx, "skipping detector group",
			logger.String("path", f.Path),
			logger.String("detector", detector),
			logger.String("state", stateNoRelevantGroup.String()),
			logger.Error(err))
		return stateNoRelevantGroup, nil
	}

	stat, err := ranking.Derive(group, p.ranking)
	if err != nil {
		return stateNoRelevantGroup, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := group.SetColumn(table.ColStat, stat); err != nil {
		return stateNoRelevantGroup, err
	}

	surviving, err := cuts.Apply(group, p.cutSet.Trigger, nil)
	if err != nil {
		// A cut naming an unknown column is a configuration error, not
		// a file problem; fail the run.
		return stateNoRelevantGroup, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	surviving, err = cuts.Apply(group, p.cutSet.Template, surviving)
	if err != nil {
		return stateNoRelevantGroup, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if len(surviving) == 0 {
		p.logSkip(ctx, f.Path, detector, stateFilteredEmpty, group.Rows())
		return stateFilteredEmpty, nil
	}

	if err := accs.Append(detector, group.Select(surviving)); err != nil {
		return stateAccumulated, err
	}
	p.log.Debug(ctx, "accumulated",
		logger.String("path", f.Path),
		logger.String("detector", detector),
		logger.Int("rows", len(surviving)))
	return stateAccumulated, nil
}

func (p *Pipeline) logSkip(ctx context.Context, path, detector string, state groupState, rows int) {
	p.log.Debug(ctx, "skipping detector group",
		logger.String("path", path),
		logger.String("detector", detector),
		logger.String("state", state.String()),
		logger.Int("rows", rows))
}

// fitAll produces the per-detector, per-bin results from the finalized
// accumulators. Detectors with no accumulated state are still emitted,
// with zero live time and every bin carrying the empty sentinel.
func (p *Pipeline) fitAll(ctx context.Context, accs *aggregate.Set) (*Results, error) {
	res := &Results{
		RunID:     uuid.NewString(),
		Binning:   p.binning,
		Cuts:      p.cutSet.Strings(),
		Model:     string(p.model),
		Threshold: p.threshold,
		Ranking:   string(p.ranking),
		Detectors: make(map[string]*DetectorResult, len(p.detectors)),
		Order:     append([]string(nil), p.detectors...),
	}

	for _, det := range p.detectors {
		dr, err := p.fitDetector(ctx, det, accs)
		if err != nil {
			return nil, err
		}
		res.Detectors[det] = dr
	}

	p.log.Info(ctx, "results ready",
		logger.String("run_id", res.RunID),
		logger.Int("detectors", len(res.Detectors)),
		logger.Int("bins", p.binning.NumBins()))
	return res, nil
}

func (p *Pipeline) fitDetector(ctx context.Context, detector string, accs *aggregate.Set) (*DetectorResult, error) {
	n := p.binning.NumBins()
	dr := &DetectorResult{
		Detector:  detector,
		Counts:    make([]int64, n),
		FitCoeffs: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		dr.Counts[i] = EmptyBinCount
		dr.FitCoeffs[i] = EmptyBinCoeff
	}

	acc, ok := accs.Get(detector)
	if !ok {
		p.log.Info(ctx, "no data for detector", logger.String("detector", detector))
		dr.Triggers = table.New()
		for i := 0; i < n; i++ {
			metrics.RecordBinEmpty()
		}
		return dr, nil
	}
	dr.LiveTime = acc.LiveTime
	dr.Triggers = acc.Table

	binned, err := p.splitByBin(acc.Table)
	if err != nil {
		return nil, err
	}

	for i, values := range binned {
		if len(values) == 0 {
			metrics.RecordBinEmpty()
			continue
		}
		start := time.Now()
		alpha, count, err := fit.AboveThreshold(p.model, values, p.threshold)
		if err != nil {
			// Unreachable for non-empty input unless the model name is
			// corrupt; treat as fatal.
			return nil, err
		}
		metrics.ObserveFitDuration(time.Since(start).Seconds())
		metrics.RecordBinFitted()
		dr.FitCoeffs[i] = alpha
		dr.Counts[i] = int64(count)
	}

	p.log.Info(ctx, "detector fit complete",
		logger.String("detector", detector),
		logger.Int("rows", acc.Table.Rows()),
		logger.Int64("live_time", acc.LiveTime))
	return dr, nil
}

// splitByBin groups the accumulated ranking values by duration bin. An
// out-of-range duration means the boundary cuts were not applied, which
// is a configuration error, never a silent misbin.
func (p *Pipeline) splitByBin(t *table.Table) ([][]float64, error) {
	values := make([][]float64, p.binning.NumBins())
	if t.Rows() == 0 {
		return values, nil
	}
	stat, ok := t.Column(table.ColStat)
	if !ok {
		return nil, fmt.Errorf("%w: %q", table.ErrMissingColumn, table.ColStat)
	}
	durations, ok := t.Column(table.ColTemplateDuration)
	if !ok {
		return nil, fmt.Errorf("%w: %q", table.ErrMissingColumn, table.ColTemplateDuration)
	}
	for row, d := range durations {
		bin, err := p.binning.IndexOf(d)
		if err != nil {
			if errors.Is(err, binning.ErrOutOfRange) {
				return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
			}
			return nil, err
		}
		values[bin] = append(values[bin], stat[row])
	}
	return values, nil
}
