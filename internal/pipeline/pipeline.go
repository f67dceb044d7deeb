// Package pipeline runs the two ETL stages: prepare (normalize, merge,
// write the flat file) and load (replace the table, verify).
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/EmpoweredVote/county-health-etl/internal/config"
	"github.com/EmpoweredVote/county-health-etl/internal/db"
	"github.com/EmpoweredVote/county-health-etl/internal/flatfile"
	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/merge"
	"github.com/EmpoweredVote/county-health-etl/internal/normalize"
	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/sink"
)

// PrepareResult describes a finished prepare run.
type PrepareResult struct {
	RunID      string
	HealthRows int
	IncomeRows int
	MergedRows int
	Stats      merge.Stats
	OutputPath string
	Digest     string
	Head       []records.EnrichedRecord
	Duration   time.Duration
}

// LoadResult describes a finished load run.
type LoadResult struct {
	RunID    string
	Rows     int64
	Table    string
	Database string
	Summary  []records.QuartileSummary
	Duration time.Duration
}

const headRows = 5

// Prepare normalizes both sources, merges them and writes the flat file.
func Prepare(ctx context.Context, cfg config.Config, log *logging.Logger) (PrepareResult, error) {
	start := time.Now()
	res := PrepareResult{RunID: uuid.NewString(), OutputPath: cfg.Output.FlatFile}
	log = log.With("prepare").With(res.RunID[:8])

	if err := requireFile("life expectancy source", cfg.Health.Path, "see data/README.md"); err != nil {
		return res, err
	}
	if err := requireFile("income source", cfg.Income.Path, "see data/README.md"); err != nil {
		return res, err
	}

	n := normalize.New(log)
	health, err := n.Health(HealthSource(cfg))
	if err != nil {
		return res, fmt.Errorf("normalize health: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	income, err := n.Income(IncomeSource(cfg))
	if err != nil {
		return res, fmt.Errorf("normalize income: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	rows, stats, err := merge.New(log).Run(health, income)
	if err != nil {
		return res, fmt.Errorf("merge: %w", err)
	}

	writeStart := time.Now()
	digest, err := flatfile.Write(cfg.Output.FlatFile, rows)
	if err != nil {
		return res, fmt.Errorf("write flat file: %w", err)
	}
	log.LogWrite(cfg.Output.FlatFile, len(rows), time.Since(writeStart))
	log.Debugf("flat file digest %s", digest)

	res.HealthRows = len(health)
	res.IncomeRows = len(income)
	res.MergedRows = len(rows)
	res.Stats = stats
	res.Digest = digest
	res.Head = rows[:min(headRows, len(rows))]
	res.Duration = time.Since(start)
	return res, nil
}

// Load reads the flat file into the configured table and runs the
// verification query. Preconditions are checked before any connection is
// opened, so a missing input never creates or touches the database.
func Load(ctx context.Context, cfg config.Config, log *logging.Logger) (res LoadResult, err error) {
	start := time.Now()
	res = LoadResult{RunID: uuid.NewString(), Table: cfg.Database.Table, Database: cfg.Database.DSN}
	log = log.With("load").With(res.RunID[:8])

	if err := requireFile("cleaned data", cfg.Output.FlatFile, "run prepare first"); err != nil {
		return res, err
	}
	if cfg.Database.Schema != "" {
		if err := requireFile("schema script", cfg.Database.Schema, ""); err != nil {
			return res, err
		}
	}

	_, tbl, err := flatfile.Read(cfg.Output.FlatFile)
	if err != nil {
		return res, fmt.Errorf("read flat file: %w", err)
	}
	log.Infof("read %d rows from %s", tbl.Len(), cfg.Output.FlatFile)

	conn, err := db.Open(ctx, db.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		LogSQL: cfg.Database.LogSQL || log.Level() == logging.LevelDebug,
	}, log.Writer())
	if err != nil {
		return res, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(conn); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	store := sink.NewStore(conn, cfg.Database.Table, cfg.Database.BatchSize, log)
	if cfg.Database.Schema != "" {
		if err := store.ApplySchema(ctx, cfg.Database.Schema); err != nil {
			return res, err
		}
	}

	rows, err := store.Replace(ctx, tbl)
	if err != nil {
		return res, err
	}
	summary, err := store.Verify(ctx)
	if err != nil {
		return res, err
	}

	res.Rows = rows
	res.Summary = summary
	res.Duration = time.Since(start)
	return res, nil
}

// HealthSource builds the normalizer input for the life-expectancy file.
func HealthSource(cfg config.Config) normalize.Source {
	return normalize.Source{
		Name:     "cdc",
		Path:     cfg.Health.Path,
		Encoding: cfg.Health.Encoding,
		Renames:  mergeRenames(normalize.DefaultHealthRenames(), cfg.Health.Columns),
	}
}

// IncomeSource builds the normalizer input for the income file.
func IncomeSource(cfg config.Config) normalize.Source {
	return normalize.Source{
		Name:     "census",
		Path:     cfg.Income.Path,
		Encoding: cfg.Income.Encoding,
		Renames:  mergeRenames(normalize.DefaultIncomeRenames(), cfg.Income.Columns),
	}
}

func mergeRenames(base, override map[string]string) map[string]string {
	for k, v := range override {
		base[k] = v
	}
	return base
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
