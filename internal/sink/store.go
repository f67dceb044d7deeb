// Package sink loads the enriched table into a relational store and reads
// it back for verification and reporting.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EmpoweredVote/county-health-etl/internal/db"
	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/tabular"
)

// DefaultTable is the destination table name.
const DefaultTable = "health_income"

const defaultBatchSize = 500

var ErrCountyNotFound = errors.New("county not found")

// Store wraps one connection and one destination table.
type Store struct {
	db        *gorm.DB
	table     string
	batchSize int
	log       *logging.Logger
}

// NewStore binds d to table. Zero batchSize uses the default.
func NewStore(d *gorm.DB, table string, batchSize int, log *logging.Logger) *Store {
	if table == "" {
		table = DefaultTable
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{db: d, table: table, batchSize: batchSize, log: log}
}

// Table returns the destination table name.
func (s *Store) Table() string { return s.table }

// ApplySchema executes the DDL script at path.
func (s *Store) ApplySchema(ctx context.Context, path string) error {
	s.log.Infof("creating database schema from %s", path)
	if err := db.ExecScript(ctx, s.db, path); err != nil {
		return err
	}
	s.log.Infof("schema created")
	return nil
}

// Replace swaps the table contents for tbl in one transaction: the table is
// dropped, recreated with the types from ColumnTypes, and filled.
func (s *Store) Replace(ctx context.Context, tbl *tabular.Table) (int64, error) {
	start := time.Now()
	types := ColumnTypes(tbl)
	for i, name := range tbl.Header {
		s.log.Debugf("column %s: %s", name, types[i])
	}

	rows := make([]map[string]any, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		m := make(map[string]any, len(tbl.Header))
		for i, name := range tbl.Header {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			m[name] = convert(v, types[i])
		}
		rows = append(rows, m)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(s.table); err != nil {
			return fmt.Errorf("drop %s: %w", s.table, err)
		}

		dialect := tx.Dialector.Name()
		defs := make([]string, len(tbl.Header))
		vars := make([]any, 0, len(tbl.Header)+1)
		vars = append(vars, clause.Table{Name: s.table})
		for i, name := range tbl.Header {
			defs[i] = "? " + types[i].SQLType(dialect)
			vars = append(vars, clause.Column{Name: name})
		}
		ddl := "CREATE TABLE ? (" + strings.Join(defs, ", ") + ")"
		if err := tx.Exec(ddl, vars...).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.table, err)
		}

		if len(rows) == 0 {
			return nil
		}
		if err := tx.Table(s.table).CreateInBatches(rows, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert %s: %w", s.table, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	s.log.LogLoad(s.table, n, time.Since(start))
	return n, nil
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(s.table).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// Verify groups the table by income quartile, returning the row count and
// average life expectancy rounded to two places, ordered by quartile label.
func (s *Store) Verify(ctx context.Context) ([]records.QuartileSummary, error) {
	avg := "ROUND(AVG(life_expectancy), 2)"
	if s.db.Dialector.Name() == "postgres" {
		avg = "ROUND(CAST(AVG(life_expectancy) AS NUMERIC), 2)"
	}
	q := "SELECT income_quartile, " + avg + " AS avg_life_expectancy, COUNT(*) AS county_count " +
		"FROM ? GROUP BY income_quartile ORDER BY income_quartile"

	var out []records.QuartileSummary
	if err := s.db.WithContext(ctx).Raw(q, clause.Table{Name: s.table}).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("verify %s: %w", s.table, err)
	}
	return out, nil
}

// CountyFilter narrows Counties. Zero values match everything.
type CountyFilter struct {
	Quartile string
	Group    string
	State    string
	Limit    int
	Offset   int
}

// Counties lists loaded rows ordered by fips.
func (s *Store) Counties(ctx context.Context, f CountyFilter) ([]records.EnrichedRecord, error) {
	q := s.db.WithContext(ctx).Table(s.table)
	if f.Quartile != "" {
		q = q.Where("income_quartile = ?", f.Quartile)
	}
	if f.Group != "" {
		q = q.Where("income_group = ?", f.Group)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []records.EnrichedRecord
	if err := q.Order("fips").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	return out, nil
}

// County fetches one row by GeoKey.
func (s *Store) County(ctx context.Context, fips string) (records.EnrichedRecord, error) {
	var out records.EnrichedRecord
	err := s.db.WithContext(ctx).Table(s.table).Where("fips = ?", fips).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, ErrCountyNotFound
	}
	if err != nil {
		return out, fmt.Errorf("get county %s: %w", fips, err)
	}
	return out, nil
}
