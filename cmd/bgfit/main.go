// Command bgfit estimates the background noise-rate model for a
// detector's trigger stream: it filters one analysis period's trigger
// files, accumulates the survivors per detector, and fits an analytic
// tail distribution per template-duration bin.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/okian/bgfit/internal/adapters/results"
	"github.com/okian/bgfit/internal/app"
	"github.com/okian/bgfit/internal/config"
	"github.com/okian/bgfit/pkg/logger"
	"github.com/okian/bgfit/pkg/metrics"
)

var (
	flagConfig   string
	flagInputDir string
	flagOutput   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "bgfit",
	Short:         "Fit the tail of a trigger ranking-statistic distribution per duration bin",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML config (default $BGFIT_CONFIG)")
	rootCmd.Flags().StringVar(&flagInputDir, "input-dir", "", "analysis-period directory of trigger files")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "result file path")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, or error")
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		log := logger.Get()
		log.Error(context.Background(), "run failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Get()

	// Load configuration (defaults -> optional file -> env), then apply
	// flag overrides.
	cfg, err := config.Load(ctx, flagConfig)
	if err != nil {
		return err
	}
	if flagInputDir != "" {
		cfg.InputDir = flagInputDir
	}
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// All fatal configuration problems surface here, before any trigger
	// file is opened and before the result file exists.
	if err := cfg.Validate(); err != nil {
		return err
	}
	pipeline, err := app.New(cfg, app.WithLogger(log.Named("pipeline")))
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	analysisDate := time.Now().UTC()
	res, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	info := results.RunInfo{AnalysisDate: analysisDate, Args: os.Args}
	if err := results.Write(ctx, cfg.Output, info, res); err != nil {
		return err
	}
	log.Info(ctx, "results written",
		logger.String("output", cfg.Output),
		logger.String("run_id", res.RunID))
	return nil
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}
