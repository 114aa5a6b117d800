// Package results serializes a finished pipeline run into a SQLite
// result file: per-detector trigger tables written back column-by-column,
// fit coefficients and counts per duration bin, live time, the bin
// edges, and the run-level metadata.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/bgfit/internal/app"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_info (
	run_id        TEXT NOT NULL,
	analysis_date DATETIME NOT NULL,
	args          TEXT NOT NULL,
	cuts          TEXT NOT NULL,
	fit_model     TEXT NOT NULL,
	fit_threshold REAL NOT NULL,
	ranking       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bins (
	bin   INTEGER PRIMARY KEY,
	lower REAL NOT NULL,
	upper REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS detectors (
	detector  TEXT PRIMARY KEY,
	live_time INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fits (
	detector  TEXT NOT NULL,
	bin       INTEGER NOT NULL,
	count     INTEGER NOT NULL,
	fit_coeff REAL NOT NULL,
	PRIMARY KEY (detector, bin)
);

CREATE TABLE IF NOT EXISTS triggers (
	detector TEXT NOT NULL,
	col      TEXT NOT NULL,
	idx      INTEGER NOT NULL,
	value    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_triggers_detector_col ON triggers(detector, col);
`

// RunInfo is the run-level metadata recorded alongside the results.
type RunInfo struct {
	AnalysisDate time.Time
	Args         []string
}

// Write creates the result file at path and writes the full run in one
// transaction. It must only be called once the pipeline has reached its
// terminal state; fatal errors upstream mean this function never runs,
// so no partial output file is produced.
func Write(ctx context.Context, path string, info RunInfo, res *app.Results) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open result file: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create result schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin result transaction: %w", err)
	}
	if err := writeAll(ctx, tx, info, res); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

func writeAll(ctx context.Context, tx *sql.Tx, info RunInfo, res *app.Results) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO run_info (run_id, analysis_date, args, cuts, fit_model, fit_threshold, ranking)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, info.AnalysisDate, strings.Join(info.Args, " "),
		strings.Join(res.Cuts, "; "), res.Model, res.Threshold, res.Ranking,
	)
	if err != nil {
		return fmt.Errorf("write run info: %w", err)
	}

	for i := 0; i < res.Binning.NumBins(); i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bins (bin, lower, upper) VALUES (?, ?, ?)`,
			i, res.Binning.Lower(i), res.Binning.Upper(i),
		); err != nil {
			return fmt.Errorf("write bin %d: %w", i, err)
		}
	}

	for _, det := range res.Order {
		if err := writeDetector(ctx, tx, res.Detectors[det]); err != nil {
			return err
		}
	}
	return nil
}

func writeDetector(ctx context.Context, tx *sql.Tx, dr *app.DetectorResult) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO detectors (detector, live_time) VALUES (?, ?)`,
		dr.Detector, dr.LiveTime,
	); err != nil {
		return fmt.Errorf("write detector %s: %w", dr.Detector, err)
	}

	for bin := range dr.Counts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fits (detector, bin, count, fit_coeff) VALUES (?, ?, ?, ?)`,
			dr.Detector, bin, dr.Counts[bin], dr.FitCoeffs[bin],
		); err != nil {
			return fmt.Errorf("write fit %s/%d: %w", dr.Detector, bin, err)
		}
	}

	if dr.Triggers == nil {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO triggers (detector, col, idx, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trigger insert: %w", err)
	}
	defer stmt.Close()
	for _, col := range dr.Triggers.ColumnNames() {
		vals, _ := dr.Triggers.Column(col)
		for i, v := range vals {
			if _, err := stmt.ExecContext(ctx, dr.Detector, col, i, v); err != nil {
				return fmt.Errorf("write triggers %s/%s: %w", dr.Detector, col, err)
			}
		}
	}
	return nil
}
